package narrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/advsearch/internal/ir"
	"github.com/roach88/advsearch/internal/operators"
	"github.com/roach88/advsearch/internal/querytree"
)

func testConfig() Config {
	return Config{
		Graphs: []GraphSummary{
			{Slug: "person", Name: "Person"},
			{Slug: "dog", Name: "Dog", Label: "Dogs"},
			{Slug: "place"},
		},
		OperatorLabels: operators.BuildLabelMap(operators.FacetsByDatatype{
			"number": {
				{Operator: "GREATER_THAN", Label: operators.PlainLabel(">")},
				{Operator: "LESS_THAN_OR_EQUAL", Label: operators.PlainLabel("<=")},
				{Operator: "EQUALS", Label: operators.PlainLabel("=")},
			},
			"string": {
				{Operator: "LIKE", Label: operators.LocalizedLabel(operators.Translation{Language: "en", Text: "contains"})},
				{Operator: "HAS_ANY_VALUE", Label: operators.PlainLabel("has any value")},
			},
		}),
		Nodes: NodeMetadataMap{
			querytree.Seg("person", "age"):     {Label: "Age", Datatype: "number"},
			querytree.Seg("person", "name"):    {Label: "Name", Datatype: "string"},
			querytree.Seg("person", "friends"): {Label: "Friends", Datatype: "resource-instance-list"},
			querytree.Seg("dog", "owner"):      {Label: "Owner", Datatype: "resource-instance"},
			querytree.Seg("dog", "breed"):      {Label: "  ", Datatype: "concept"},
		},
		NodeLabel: func(graph, node string) string {
			if graph == "dog" && node == "breed" {
				return "Breed"
			}
			return ""
		},
	}
}

func group(slug string) querytree.Group {
	return querytree.Group{
		GraphSlug: slug,
		Scope:     querytree.ScopeResource,
		Logic:     querytree.LogicAnd,
		Clauses:   []querytree.Clause{},
		Groups:    []querytree.Group{},
	}
}

func clause(graph, node, op string, operands ...querytree.Operand) querytree.Clause {
	return querytree.Clause{
		Type:       querytree.ClauseLiteral,
		Quantifier: querytree.QuantifierAny,
		Subject:    querytree.Path{querytree.Seg(graph, node)},
		Operator:   op,
		Operands:   operands,
	}
}

func lit(v ir.Value) querytree.Operand {
	return querytree.Literal(v)
}

func TestDescribeQuery_EndToEnd(t *testing.T) {
	n := New(testConfig())

	t.Run("no conditions", func(t *testing.T) {
		assert.Equal(t, "Find all Dogs instances.", n.DescribeQuery(group("dog")))
		assert.Equal(t, "Find all cat instances.", n.DescribeQuery(group("cat")))
	})

	t.Run("single literal clause", func(t *testing.T) {
		g := group("person")
		g.Clauses = []querytree.Clause{clause("person", "age", "GREATER_THAN", lit(ir.NewInt(18)))}

		assert.Equal(t, "the value of the Age node is greater than 18", n.DescribeClause(g.Clauses[0]))
		assert.Equal(t, "Find all Person instances where the value of the Age node is greater than 18.", n.DescribeQuery(g))
	})

	t.Run("relationship without nested conditions", func(t *testing.T) {
		g := group("person")
		g.Groups = []querytree.Group{group("person")}
		g.Relationship = &querytree.Relationship{
			Path:                 querytree.Path{querytree.Seg("person", "friends")},
			TraversalQuantifiers: []querytree.Quantifier{querytree.QuantifierAny},
		}

		assert.Equal(t, "have at least one Friends", n.DescribeGroupConditions(g))
		assert.Equal(t, "Find all Person instances that have at least one Friends.", n.DescribeQuery(g))
	})

	t.Run("empty graph slug", func(t *testing.T) {
		g := group("")
		g.Clauses = []querytree.Clause{clause("person", "age", "GREATER_THAN", lit(ir.NewInt(18)))}
		assert.Equal(t, "", n.DescribeQuery(g))
	})
}

func TestDescribeQuery_NestedGroupsAndLogic(t *testing.T) {
	n := New(testConfig())

	inner := group("person")
	inner.Logic = querytree.LogicOr
	inner.Clauses = []querytree.Clause{
		clause("person", "age", "LESS_THAN_OR_EQUAL", lit(ir.NewInt(10))),
		clause("person", "age", "GREATER_THAN", lit(ir.NewInt(65))),
	}

	root := group("person")
	root.Clauses = []querytree.Clause{clause("person", "name", "HAS_ANY_VALUE")}
	root.Groups = []querytree.Group{inner, group("person")}

	assert.Equal(t,
		"Find all Person instances where the Name node has any value, and "+
			"the value of the Age node is less than or equal to 10, or the value of the Age node is greater than 65.",
		n.DescribeQuery(root))
}

func TestDescribeQuery_RelationshipWithSiblings(t *testing.T) {
	n := New(testConfig())

	related := group("dog")
	related.Clauses = []querytree.Clause{clause("dog", "breed", "EQUALS", lit(ir.String("Collie")))}

	sibling := group("person")
	sibling.Clauses = []querytree.Clause{clause("person", "age", "GREATER_THAN", lit(ir.NewInt(30)))}

	root := group("person")
	root.Logic = querytree.LogicOr
	root.Groups = []querytree.Group{related, sibling}
	root.Relationship = &querytree.Relationship{
		Path:                 querytree.Path{querytree.Seg("dog", "owner")},
		IsInverse:            true,
		TraversalQuantifiers: []querytree.Quantifier{querytree.QuantifierAll},
	}

	assert.Equal(t,
		"Find all Person instances that are the Owner of all Dogs instances where "+
			"the value of the Breed node is equal to Collie, or the value of the Age node is greater than 30.",
		n.DescribeQuery(root))
}

func TestDescribeRelationshipCondition_Table(t *testing.T) {
	n := New(testConfig())

	related := group("dog")
	related.Clauses = []querytree.Clause{clause("dog", "breed", "HAS_ANY_VALUE")}
	nested := "the Breed node has any value"

	tests := []struct {
		inverse bool
		q       []querytree.Quantifier
		with    string
		without string
	}{
		{true, []querytree.Quantifier{querytree.QuantifierAll},
			"are the Owner of all Dogs instances where " + nested, "are the Owner of all Dogs instances"},
		{true, []querytree.Quantifier{querytree.QuantifierNone},
			"are the Owner of no Dogs instances where " + nested, "are the Owner of no Dogs instances"},
		{true, []querytree.Quantifier{querytree.QuantifierAny},
			"are the Owner of any Dogs instances where " + nested, "are the Owner of any Dogs instances"},
		{false, []querytree.Quantifier{querytree.QuantifierAll},
			"have only Owner where " + nested, "have only Owner"},
		{false, []querytree.Quantifier{querytree.QuantifierNone},
			"have no Owner where " + nested, "have no Owner"},
		{false, []querytree.Quantifier{querytree.QuantifierAny},
			"have at least one Owner where " + nested, "have at least one Owner"},
		{false, nil, "have at least one Owner where " + nested, "have at least one Owner"},
		{true, []querytree.Quantifier{"AT_LEAST"},
			"are the Owner of any Dogs instances where " + nested, "are the Owner of any Dogs instances"},
	}

	for _, tt := range tests {
		rel := &querytree.Relationship{
			Path:                 querytree.Path{querytree.Seg("dog", "owner")},
			IsInverse:            tt.inverse,
			TraversalQuantifiers: tt.q,
		}
		name := strings.ReplaceAll(tt.without, " ", "_")
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.with, n.DescribeRelationshipCondition(rel, &related))

			empty := group("dog")
			assert.Equal(t, tt.without, n.DescribeRelationshipCondition(rel, &empty))
			assert.Equal(t, tt.without, n.DescribeRelationshipCondition(rel, nil))
		})
	}
}

func TestDescribeRelationshipCondition_UnsupportedPaths(t *testing.T) {
	n := New(testConfig())

	assert.Equal(t, "", n.DescribeRelationshipCondition(nil, nil))
	assert.Equal(t, "", n.DescribeRelationshipCondition(&querytree.Relationship{}, nil))
	assert.Equal(t, "", n.DescribeRelationshipCondition(&querytree.Relationship{
		Path: querytree.Path{querytree.Seg("person", "pets"), querytree.Seg("dog", "owner")},
	}, nil))
}

func TestDescribeQuery_MultiSegmentRelationshipIsSkipped(t *testing.T) {
	n := New(testConfig())

	root := group("person")
	root.Clauses = []querytree.Clause{clause("person", "age", "GREATER_THAN", lit(ir.NewInt(1)))}
	root.Groups = []querytree.Group{group("dog")}
	root.Relationship = &querytree.Relationship{
		Path: querytree.Path{querytree.Seg("person", "pets"), querytree.Seg("dog", "owner")},
	}

	assert.Equal(t, "Find all Person instances where the value of the Age node is greater than 1.", n.DescribeQuery(root))
}

func TestDescribeClause(t *testing.T) {
	n := New(testConfig())

	tests := []struct {
		name   string
		clause querytree.Clause
		want   string
	}{
		{
			name:   "no operands",
			clause: clause("person", "name", "HAS_ANY_VALUE"),
			want:   "the Name node has any value",
		},
		{
			name:   "unknown operator falls back to token",
			clause: clause("person", "age", "BETWEEN", lit(ir.NewInt(1)), lit(ir.NewInt(5))),
			want:   "the value of the Age node BETWEEN 1 and 5",
		},
		{
			name: "three operands",
			clause: clause("person", "age", "EQUALS",
				lit(ir.NewInt(1)), lit(ir.NewInt(2)), lit(ir.NewInt(3))),
			want: "the value of the Age node is equal to 1, 2, and 3",
		},
		{
			name:   "empty and null operands are dropped",
			clause: clause("person", "age", "EQUALS", lit(ir.String("  ")), lit(ir.Null{}), lit(ir.NewInt(4))),
			want:   "the value of the Age node is equal to 4",
		},
		{
			name:   "unlabelled node uses alias",
			clause: clause("person", "height", "GREATER_THAN", lit(ir.NewFloat(1.8))),
			want:   "the value of the height node is greater than 1.8",
		},
		{
			name:   "blank metadata label defers to resolver",
			clause: clause("dog", "breed", "HAS_ANY_VALUE"),
			want:   "the Breed node has any value",
		},
		{
			name: "last subject segment names the node",
			clause: querytree.Clause{
				Subject:  querytree.Path{querytree.Seg("dog", "owner"), querytree.Seg("person", "age")},
				Operator: "GREATER_THAN",
				Operands: []querytree.Operand{lit(ir.NewInt(3))},
			},
			want: "the value of the Age node is greater than 3",
		},
		{
			name:   "empty subject",
			clause: querytree.Clause{Operator: "EQUALS"},
			want:   "",
		},
		{
			name:   "empty operator",
			clause: clause("person", "age", ""),
			want:   "",
		},
		{
			name:   "blank alias",
			clause: clause("person", " ", "EQUALS"),
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.DescribeClause(tt.clause))
		})
	}
}

func TestDescribeOperand(t *testing.T) {
	n := New(testConfig())

	tests := []struct {
		name     string
		operand  querytree.Operand
		datatype string
		want     string
	}{
		{"string", lit(ir.String(" Rex ")), "string", "Rex"},
		{"number keeps spelling", lit(ir.Number("18.50")), "number", "18.50"},
		{"bool", lit(ir.Bool(true)), "boolean", "true"},
		{"null", lit(ir.Null{}), "number", ""},
		{"nil value", querytree.LiteralOperand{}, "number", ""},
		{"array", lit(ir.Array{ir.String("a"), ir.String("b")}), "concept-list", "a,b"},
		{
			"display value wins",
			querytree.LiteralOperand{Value: ir.String("6b0e..."), DisplayValue: ir.String("Collie")},
			"concept", "Collie",
		},
		{
			"null display value hides value",
			querytree.LiteralOperand{Value: ir.String("6b0e..."), DisplayValue: ir.Null{}},
			"concept", "",
		},
		{"localized value", lit(ir.Object{"en": ir.String("Rex")}), "string", "Rex (en)"},
		{"localized blank language", lit(ir.Object{" ": ir.String("Rex")}), "string", "Rex"},
		{
			"multi language map renders as JSON",
			lit(ir.Object{"en": ir.String("Rex"), "de": ir.String("Rex")}), "string",
			`{"de":"Rex","en":"Rex"}`,
		},
		{"language map on other datatype", lit(ir.Object{"en": ir.String("Rex")}), "number", `{"en":"Rex"}`},
		{"path with graph and node", querytree.PathOperand{Path: querytree.Path{querytree.Seg("dog", "owner")}}, "", "the Dogs Owner node"},
		{"path to unknown graph", querytree.PathOperand{Path: querytree.Path{querytree.Seg("cat", "lives")}}, "", "the cat lives node"},
		{"path with blank node", querytree.PathOperand{Path: querytree.Path{querytree.Seg("dog", "")}}, "", "Dogs"},
		{"path with blank graph", querytree.PathOperand{Path: querytree.Path{querytree.Seg("", "age")}}, "", "the age node"},
		{"empty path", querytree.PathOperand{}, "", ""},
		{"nil operand", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.DescribeOperand(tt.operand, tt.datatype))
		})
	}
}

func TestJoinManyWithLogic(t *testing.T) {
	n := New(Config{})

	assert.Equal(t, "", n.JoinManyWithLogic(nil, querytree.LogicAnd))
	assert.Equal(t, "A", n.JoinManyWithLogic([]string{"A"}, querytree.LogicAnd))
	assert.Equal(t, "A, or B", n.JoinManyWithLogic([]string{"A", "B"}, querytree.LogicOr))
	assert.Equal(t, "A, and B", n.JoinManyWithLogic([]string{"A", "B"}, querytree.LogicAnd))
	assert.Equal(t, "A, B, and C", n.JoinManyWithLogic([]string{"A", "B", "C"}, querytree.LogicAnd))
	assert.Equal(t, "A, B, or C", n.JoinManyWithLogic([]string{"A", "B", "C"}, querytree.LogicOr))
	assert.Equal(t, "A, and C", n.JoinManyWithLogic([]string{" A ", "", "  ", "C"}, querytree.LogicAnd))
}

func TestFormatValueList(t *testing.T) {
	n := New(Config{})

	assert.Equal(t, "", n.FormatValueList(nil))
	assert.Equal(t, "A", n.FormatValueList([]string{"A"}))
	assert.Equal(t, "A and B", n.FormatValueList([]string{"A", "B"}))
	assert.Equal(t, "A, B, and C", n.FormatValueList([]string{"A", "B", "C"}))
	assert.Equal(t, "A and C", n.FormatValueList([]string{"A", " ", "C"}))
}

func TestStartsWithPredicateFragment(t *testing.T) {
	withClause := group("person")
	withClause.Clauses = []querytree.Clause{clause("person", "age", "EQUALS")}

	withRel := group("person")
	withRel.Groups = []querytree.Group{group("dog")}
	withRel.Relationship = &querytree.Relationship{Path: querytree.Path{querytree.Seg("person", "pets")}}

	emptyRel := group("person")
	emptyRel.Groups = []querytree.Group{withClause}
	emptyRel.Relationship = &querytree.Relationship{}

	nestedRel := group("person")
	nestedRel.Groups = []querytree.Group{withRel, withClause}

	nestedClause := group("person")
	nestedClause.Groups = []querytree.Group{withClause, withRel}

	assert.False(t, StartsWithPredicateFragment(withClause))
	assert.True(t, StartsWithPredicateFragment(withRel))
	assert.True(t, StartsWithPredicateFragment(group("person")))
	assert.False(t, StartsWithPredicateFragment(emptyRel))
	assert.True(t, StartsWithPredicateFragment(nestedRel))
	assert.False(t, StartsWithPredicateFragment(nestedClause))
}

func TestNarrator_UsesPhraseFunc(t *testing.T) {
	cfg := testConfig()
	cfg.Phrase = Catalog(map[string]string{
		MsgFindAllWhere: "Finde alle %{graph}-Instanzen, bei denen %{conditions}.",
		MsgClauseValue:  "der Wert des Knotens %{field} %{operator} %{value}",
	})
	n := New(cfg)

	g := group("person")
	g.Clauses = []querytree.Clause{clause("person", "age", "GREATER_THAN", lit(ir.NewInt(18)))}

	assert.Equal(t, "Finde alle Person-Instanzen, bei denen der Wert des Knotens Age is greater than 18.", n.DescribeQuery(g))
}

func TestNarrator_IsPure(t *testing.T) {
	n := New(testConfig())

	g := group("person")
	g.Clauses = []querytree.Clause{clause("person", "age", "GREATER_THAN", lit(ir.NewInt(18)))}
	g.Groups = []querytree.Group{group("dog")}
	g.Relationship = &querytree.Relationship{Path: querytree.Path{querytree.Seg("person", "friends")}}
	snapshot := g.Clone()

	first := n.DescribeQuery(g)
	for range 5 {
		require.Equal(t, first, n.DescribeQuery(g))
	}
	assert.Equal(t, snapshot, g.Clone())
}

func TestDescribeQuery_Shorthand(t *testing.T) {
	assert.Equal(t, "Find all dog instances.", DescribeQuery(group("dog"), Config{}))
}
