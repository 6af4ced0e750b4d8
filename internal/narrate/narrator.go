package narrate

import (
	"strings"

	"github.com/roach88/advsearch/internal/ir"
	"github.com/roach88/advsearch/internal/operators"
	"github.com/roach88/advsearch/internal/querytree"
)

// NodeLabelFunc resolves a node's display label when metadata has none.
// Returning "" defers to the node alias.
type NodeLabelFunc func(graph, node string) string

// Config supplies everything narration looks up.
type Config struct {
	Graphs         []GraphSummary
	OperatorLabels operators.LabelMap
	Nodes          NodeMetadataMap
	NodeLabel      NodeLabelFunc

	// Phrase translates message ids. Nil means Interpolate (English).
	Phrase PhraseFunc
}

// Narrator describes search trees. It is immutable after New and safe for
// concurrent use as long as the Config's functions are.
type Narrator struct {
	cfg    Config
	phrase PhraseFunc
}

// New returns a Narrator over cfg.
func New(cfg Config) *Narrator {
	phrase := cfg.Phrase
	if phrase == nil {
		phrase = Interpolate
	}
	return &Narrator{cfg: cfg, phrase: phrase}
}

// DescribeQuery is shorthand for New(cfg).DescribeQuery(g).
func DescribeQuery(g querytree.Group, cfg Config) string {
	return New(cfg).DescribeQuery(g)
}

// DescribeQuery renders the whole tree as a sentence:
//
//	Find all person instances.
//	Find all person instances where the value of the Age node is greater than 18.
//	Find all person instances that have at least one Friends.
//
// An empty root graph renders as "".
func (n *Narrator) DescribeQuery(g querytree.Group) string {
	if g.GraphSlug == "" {
		return ""
	}

	graph := n.graphLabel(g.GraphSlug)
	conditions := n.DescribeGroupConditions(g)
	if conditions == "" {
		return n.phrase(MsgFindAll, map[string]string{"graph": graph})
	}

	msg := MsgFindAllWhere
	if StartsWithPredicateFragment(g) {
		msg = MsgFindAllThat
	}
	return n.phrase(msg, map[string]string{"graph": graph, "conditions": conditions})
}

// StartsWithPredicateFragment reports whether the first condition of g
// reads as a verb phrase ("have at least one ...") rather than a clause
// ("the value of ..."), which decides between "that" and "where".
//
// It holds when g has no clauses and either a relationship path or no
// child groups. With no clauses, child groups and no relationship path the
// first condition comes from groups[0], so the question recurses there.
func StartsWithPredicateFragment(g querytree.Group) bool {
	if len(g.Clauses) > 0 {
		return false
	}
	if g.Relationship.HasPath() || len(g.Groups) == 0 {
		return true
	}
	return StartsWithPredicateFragment(g.Groups[0])
}

// DescribeGroupConditions describes a group's clauses, relationship and
// child groups joined with the group's logic. When a relationship path is
// set, groups[0] is described inside the relationship phrase and only the
// remaining children are described alongside it.
func (n *Narrator) DescribeGroupConditions(g querytree.Group) string {
	parts := make([]string, 0, len(g.Clauses)+len(g.Groups))

	for _, c := range g.Clauses {
		parts = append(parts, n.DescribeClause(c))
	}

	children := g.Groups
	if g.Relationship.HasPath() {
		var related *querytree.Group
		if len(g.Groups) > 0 {
			related = &g.Groups[0]
			children = g.Groups[1:]
		}
		parts = append(parts, n.DescribeRelationshipCondition(g.Relationship, related))
	}
	for _, child := range children {
		parts = append(parts, n.DescribeGroupConditions(child))
	}

	logic := querytree.LogicAnd
	if g.Logic == querytree.LogicOr {
		logic = querytree.LogicOr
	}
	return n.JoinManyWithLogic(parts, logic)
}

// DescribeClause describes one clause. The subject's last segment names
// the node; an empty subject, field label or operator label yields "".
func (n *Narrator) DescribeClause(c querytree.Clause) string {
	subject, ok := c.Subject.Last()
	if !ok {
		return ""
	}

	field := strings.TrimSpace(n.nodeLabel(subject.Graph, subject.Node))
	operator := strings.TrimSpace(n.cfg.OperatorLabels.Resolve(c.Operator))
	if field == "" || operator == "" {
		return ""
	}

	datatype := ""
	if md, ok := n.cfg.Nodes.Lookup(subject.Graph, subject.Node); ok {
		datatype = md.Datatype
	}

	values := make([]string, 0, len(c.Operands))
	for _, op := range c.Operands {
		values = append(values, n.DescribeOperand(op, datatype))
	}
	value := strings.TrimSpace(n.FormatValueList(values))

	if value == "" {
		return n.phrase(MsgClauseNoValue, map[string]string{
			"field":    field,
			"operator": operator,
		})
	}
	return n.phrase(MsgClauseValue, map[string]string{
		"field":    field,
		"operator": operator,
		"value":    value,
	})
}

// DescribeOperand describes one operand of a clause whose subject has the
// given datatype. Literal operands prefer their display value. A
// single-language value of a localised node reads "{value} ({language})".
func (n *Narrator) DescribeOperand(op querytree.Operand, subjectDatatype string) string {
	switch o := op.(type) {
	case querytree.PathOperand:
		return n.describePathOperand(o.Path)
	case querytree.LiteralOperand:
		preferred := o.Value
		if o.DisplayValue != nil {
			preferred = o.DisplayValue
		}
		return n.describeLiteral(preferred, subjectDatatype)
	default:
		return ""
	}
}

func (n *Narrator) describeLiteral(v ir.Value, subjectDatatype string) string {
	if v == nil {
		return ""
	}
	if _, isNull := v.(ir.Null); isNull {
		return ""
	}

	if obj, ok := v.(ir.Object); ok && subjectDatatype == LocalizedDatatype && len(obj) == 1 {
		for lang, raw := range obj {
			if text, ok := raw.(ir.String); ok {
				value := strings.TrimSpace(string(text))
				language := strings.TrimSpace(lang)
				switch {
				case value != "" && language != "":
					return strings.TrimSpace(n.phrase(MsgLocalizedValue, map[string]string{
						"value":    value,
						"language": language,
					}))
				case value != "":
					return value
				}
			}
		}
	}

	return strings.TrimSpace(ir.Display(v))
}

func (n *Narrator) describePathOperand(p querytree.Path) string {
	last, ok := p.Last()
	if !ok {
		return ""
	}

	graph := strings.TrimSpace(n.graphLabel(last.Graph))
	field := strings.TrimSpace(n.nodeLabel(last.Graph, last.Node))

	switch {
	case graph != "" && field != "":
		return n.phrase(MsgPathGraphField, map[string]string{"graph": graph, "field": field})
	case graph != "":
		return graph
	case field != "":
		return n.phrase(MsgPathField, map[string]string{"field": field})
	default:
		return ""
	}
}

// DescribeRelationshipCondition describes the traversal to related. Only
// single-segment paths are described; anything else yields "".
func (n *Narrator) DescribeRelationshipCondition(rel *querytree.Relationship, related *querytree.Group) string {
	if rel == nil || len(rel.Path) != 1 {
		return ""
	}

	leg := rel.Path[0]
	vars := map[string]string{
		"field": n.nodeLabel(leg.Graph, leg.Node),
		"graph": n.graphLabel(leg.Graph),
	}

	conditions := ""
	if related != nil {
		conditions = strings.TrimSpace(n.DescribeGroupConditions(*related))
	}
	if conditions != "" {
		vars["conditions"] = conditions
	}

	return n.phrase(relationshipMessage(rel.IsInverse, rel.TraversalQuantifier(), conditions != ""), vars)
}

func relationshipMessage(inverse bool, q querytree.Quantifier, nested bool) string {
	type row struct{ where, bare string }

	var r row
	switch {
	case inverse && q == querytree.QuantifierAll:
		r = row{MsgInverseAllWhere, MsgInverseAll}
	case inverse && q == querytree.QuantifierNone:
		r = row{MsgInverseNoneWhere, MsgInverseNone}
	case inverse:
		r = row{MsgInverseAnyWhere, MsgInverseAny}
	case q == querytree.QuantifierAll:
		r = row{MsgForwardAllWhere, MsgForwardAll}
	case q == querytree.QuantifierNone:
		r = row{MsgForwardNoneWhere, MsgForwardNone}
	default:
		r = row{MsgForwardAnyWhere, MsgForwardAny}
	}

	if nested {
		return r.where
	}
	return r.bare
}

// JoinManyWithLogic joins non-empty fragments: "A", "A, and B",
// "A, B, and C" (or "or" for OR logic).
func (n *Narrator) JoinManyWithLogic(parts []string, logic querytree.Logic) string {
	kept := trimNonEmpty(parts)
	or := logic == querytree.LogicOr

	switch len(kept) {
	case 0:
		return ""
	case 1:
		return kept[0]
	case 2:
		msg := MsgJoinAnd
		if or {
			msg = MsgJoinOr
		}
		return n.phrase(msg, map[string]string{"left": kept[0], "right": kept[1]})
	default:
		msg := MsgListAnd
		if or {
			msg = MsgListOr
		}
		return n.phrase(msg, map[string]string{
			"list": strings.Join(kept[:len(kept)-1], ", "),
			"last": kept[len(kept)-1],
		})
	}
}

// FormatValueList joins non-empty values: "A", "A and B", "A, B, and C".
func (n *Narrator) FormatValueList(values []string) string {
	kept := trimNonEmpty(values)

	switch len(kept) {
	case 0:
		return ""
	case 1:
		return kept[0]
	case 2:
		return n.phrase(MsgPair, map[string]string{"first": kept[0], "second": kept[1]})
	default:
		return n.phrase(MsgListAnd, map[string]string{
			"list": strings.Join(kept[:len(kept)-1], ", "),
			"last": kept[len(kept)-1],
		})
	}
}

// graphLabel returns the first matching graph's label, then name, then
// the slug itself.
func (n *Narrator) graphLabel(slug string) string {
	for _, g := range n.cfg.Graphs {
		if g.Slug != slug {
			continue
		}
		if g.Label != "" {
			return g.Label
		}
		if g.Name != "" {
			return g.Name
		}
		return slug
	}
	return slug
}

// nodeLabel resolves metadata widget label, then NodeLabel, then the alias.
func (n *Narrator) nodeLabel(graph, node string) string {
	if md, ok := n.cfg.Nodes.Lookup(graph, node); ok {
		if label := strings.TrimSpace(md.Label); label != "" {
			return label
		}
	}
	if n.cfg.NodeLabel != nil {
		if label := n.cfg.NodeLabel(graph, node); label != "" {
			return label
		}
	}
	return node
}

func trimNonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
