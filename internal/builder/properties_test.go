package builder

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/advsearch/internal/ir"
	"github.com/roach88/advsearch/internal/querytree"
)

// api is one way of applying builder operations to a root group. The same
// properties must hold for the pure functions and for Editor.
type api struct {
	name            string
	setGraphSlug    func(querytree.Group, string) querytree.Group
	toggleLogic     func(querytree.Group) querytree.Group
	removeChild     func(querytree.Group, int) querytree.Group
	setRelationship func(querytree.Group, *querytree.Relationship) querytree.Group
}

var apis = []api{
	{
		name:            "pure",
		setGraphSlug:    SetGraphSlugAndResetIfChanged,
		toggleLogic:     ToggleLogic,
		removeChild:     RemoveChildGroupAtIndexAndReconcile,
		setRelationship: SetRelationshipAndReconcileClauses,
	},
	{
		name: "editor",
		setGraphSlug: func(g querytree.Group, slug string) querytree.Group {
			e := NewEditor(g)
			e.SetGraphSlug(slug)
			return e.Root()
		},
		toggleLogic: func(g querytree.Group) querytree.Group {
			e := NewEditor(g)
			e.ToggleLogic()
			return e.Root()
		},
		removeChild: func(g querytree.Group, i int) querytree.Group {
			e := NewEditor(g)
			e.RemoveChildGroup(i)
			return e.Root()
		},
		setRelationship: func(g querytree.Group, r *querytree.Relationship) querytree.Group {
			e := NewEditor(g)
			e.SetRelationship(r)
			return e.Root()
		},
	},
}

var graphs = []string{"person", "dog", "place", "event"}

// randomTree builds a tree through builder operations only, so every
// generated tree satisfies the structural invariants.
func randomTree(r *rand.Rand, depth int) querytree.Group {
	g := NewGroup(graphs[r.IntN(len(graphs))])
	if r.IntN(2) == 0 {
		g = ToggleLogic(g)
	}
	if r.IntN(3) == 0 {
		g = SetScope(g, querytree.ScopeTile)
	}

	for range r.IntN(3) {
		g = AddEmptyLiteralClauseToGroup(g)
		c := NewEmptyLiteralClause()
		c.Subject = querytree.Path{querytree.Seg(g.GraphSlug, fmt.Sprintf("n%d", r.IntN(5)))}
		c.Operator = "EQUALS"
		c.Operands = []querytree.Operand{querytree.Literal(ir.NewInt(int64(r.IntN(100))))}
		g = SetClauseAtIndex(g, len(g.Clauses)-1, c)
	}

	if depth > 0 {
		for range r.IntN(3) {
			g = AddChildGroupLikeParent(g)
			g = ReplaceChildGroupAtIndexAndReconcile(g, len(g.Groups)-1, randomTree(r, depth-1))
		}
	}

	if len(g.Groups) > 0 && r.IntN(2) == 0 {
		rel := querytree.NewRelationship()
		rel.IsInverse = r.IntN(2) == 0
		if rel.IsInverse {
			rel.Path = querytree.Path{querytree.Seg(g.Groups[0].GraphSlug, "rel")}
		} else {
			rel.Path = querytree.Path{querytree.Seg(g.GraphSlug, "rel")}
		}
		g = SetRelationshipAndReconcileClauses(g, rel)

		related := AddEmptyLiteralClauseToGroup(g)
		c := related.Clauses[len(related.Clauses)-1]
		c.Type = querytree.ClauseRelated
		g = SetClauseAtIndex(related, len(related.Clauses)-1, c)
	}

	return g
}

func forEachTree(t *testing.T, fn func(t *testing.T, g querytree.Group)) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := range 200 {
		g := randomTree(r, 2)
		t.Run(fmt.Sprintf("tree-%03d", i), func(t *testing.T) {
			fn(t, g)
		})
	}
}

func TestProperty_GraphChangeReconciliation(t *testing.T) {
	for _, a := range apis {
		t.Run(a.name, func(t *testing.T) {
			forEachTree(t, func(t *testing.T, g querytree.Group) {
				other := "other-" + g.GraphSlug

				changed := a.setGraphSlug(g, other)
				assert.Equal(t, other, changed.GraphSlug)
				assert.Equal(t, []querytree.Clause{}, changed.Clauses)
				assert.Equal(t, []querytree.Group{}, changed.Groups)
				assert.Nil(t, changed.Relationship)

				same := a.setGraphSlug(g, g.GraphSlug)
				assert.Equal(t, g.Clauses, same.Clauses)
				assert.Equal(t, g.Groups, same.Groups)
				assert.Equal(t, g.Relationship, same.Relationship)
			})
		})
	}
}

func TestProperty_RelationshipRemoval(t *testing.T) {
	for _, a := range apis {
		t.Run(a.name, func(t *testing.T) {
			forEachTree(t, func(t *testing.T, g querytree.Group) {
				if g.Relationship == nil {
					return
				}
				for len(g.Groups) > 0 {
					g = a.removeChild(g, len(g.Groups)-1)
				}
				assert.Nil(t, g.Relationship)
				assert.False(t, g.HasRelatedClauses())
			})
		})
	}
}

func TestProperty_DirectionFlip(t *testing.T) {
	for _, a := range apis {
		t.Run(a.name, func(t *testing.T) {
			forEachTree(t, func(t *testing.T, g querytree.Group) {
				if g.Relationship == nil {
					return
				}
				require.True(t, g.HasRelatedClauses())

				flipped := g.Relationship.Clone()
				flipped.IsInverse = !flipped.IsInverse
				got := a.setRelationship(g, flipped)
				assert.False(t, got.HasRelatedClauses())
				assert.Equal(t, flipped, got.Relationship)

				kept := g.Relationship.Clone()
				kept.TraversalQuantifiers = []querytree.Quantifier{querytree.QuantifierAll}
				got = a.setRelationship(g, kept)
				assert.Equal(t, g.Clauses, got.Clauses)
			})
		})
	}
}

func TestProperty_ToggleLogicIsInvolution(t *testing.T) {
	for _, a := range apis {
		t.Run(a.name, func(t *testing.T) {
			forEachTree(t, func(t *testing.T, g querytree.Group) {
				once := a.toggleLogic(g)
				assert.NotEqual(t, g.Logic, once.Logic)
				assert.Equal(t, g.Logic, a.toggleLogic(once).Logic)
			})
		})
	}
}

func TestProperty_RoundTrip(t *testing.T) {
	forEachTree(t, func(t *testing.T, g querytree.Group) {
		data, err := querytree.Marshal(g)
		require.NoError(t, err)

		back, err := querytree.Unmarshal(data)
		require.NoError(t, err)
		assert.Equal(t, g, back)

		again, err := json.Marshal(back)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(again))
	})
}

func TestProperty_BuiltTreesLintClean(t *testing.T) {
	forEachTree(t, func(t *testing.T, g querytree.Group) {
		result := querytree.Validate(g, querytree.Options{})
		assert.True(t, result.Valid, "%v", result.Issues)
	})
}
