package builder

import (
	"slices"

	"github.com/roach88/advsearch/internal/ir"
	"github.com/roach88/advsearch/internal/querytree"
)

// DefaultOperator is the operator given to a freshly added clause. It
// matches any node that has a value, so an untouched clause is harmless.
const DefaultOperator = "HAS_ANY_VALUE"

// NewGroup returns an empty group for graphSlug with RESOURCE scope and
// AND logic.
func NewGroup(graphSlug string) querytree.Group {
	return querytree.Group{
		GraphSlug:    graphSlug,
		Scope:        querytree.ScopeResource,
		Logic:        querytree.LogicAnd,
		Clauses:      []querytree.Clause{},
		Groups:       []querytree.Group{},
		Aggregations: ir.Array{},
	}
}

// NewEmptyLiteralClause returns the clause added by "add condition".
func NewEmptyLiteralClause() querytree.Clause {
	return querytree.Clause{
		Type:       querytree.ClauseLiteral,
		Quantifier: querytree.QuantifierAny,
		Subject:    querytree.Path{},
		Operator:   DefaultOperator,
		Operands:   []querytree.Operand{},
	}
}

// SetGraphSlugAndResetIfChanged sets the group's graph. When the group
// already had a different, non-empty graph its clauses, child groups and
// relationship referred to that graph and are cleared.
func SetGraphSlugAndResetIfChanged(g querytree.Group, slug string) querytree.Group {
	previous := g.GraphSlug
	g.GraphSlug = slug
	if previous != "" && previous != slug {
		g.Clauses = []querytree.Clause{}
		g.Groups = []querytree.Group{}
		g.Relationship = nil
	}
	return g
}

// SetScope replaces the group's scope.
func SetScope(g querytree.Group, scope querytree.Scope) querytree.Group {
	g.Scope = scope
	return g
}

// ToggleLogic flips the group's logic between AND and OR.
func ToggleLogic(g querytree.Group) querytree.Group {
	g.Logic = g.Logic.Toggle()
	return g
}

// ComputeIsAnd reports whether the group combines its parts with AND.
func ComputeIsAnd(g querytree.Group) bool {
	return g.Logic == querytree.LogicAnd
}

// AddChildGroupLikeParent appends an empty child group that inherits the
// parent's graph, scope and logic.
func AddChildGroupLikeParent(g querytree.Group) querytree.Group {
	child := NewGroup(g.GraphSlug)
	child.Scope = g.Scope
	child.Logic = g.Logic

	g.Groups = append(slices.Clone(nonNilGroups(g.Groups)), child)
	return g
}

// ReplaceChildGroupAtIndexAndReconcile replaces groups[index]. Replacing
// the related child (index 0) with one for a different graph makes the
// relationship stale: it is cleared and RELATED clauses are dropped.
func ReplaceChildGroupAtIndexAndReconcile(g querytree.Group, index int, replacement querytree.Group) querytree.Group {
	if index < 0 || index >= len(g.Groups) {
		return g
	}

	previousSlug := g.Groups[index].GraphSlug
	g.Groups = slices.Clone(g.Groups)
	g.Groups[index] = replacement

	if index == 0 && graphChanged(previousSlug, replacement.GraphSlug) {
		g = dropRelationship(g)
	}
	return g
}

// RemoveChildGroupAtIndexAndReconcile removes groups[index]. A
// relationship left without a child to govern is cleared along with
// RELATED clauses. Removing groups[0] promotes groups[1] into the related
// slot; if it belongs to a different graph the relationship is dropped
// the same way as on replacement.
func RemoveChildGroupAtIndexAndReconcile(g querytree.Group, index int) querytree.Group {
	if index < 0 || index >= len(g.Groups) {
		return g
	}

	removedSlug := g.Groups[index].GraphSlug
	g.Groups = slices.Delete(slices.Clone(g.Groups), index, index+1)

	if g.Relationship == nil {
		return g
	}
	if len(g.Groups) == 0 {
		return dropRelationship(g)
	}
	if index == 0 && graphChanged(removedSlug, g.Groups[0].GraphSlug) {
		return dropRelationship(g)
	}
	return g
}

// AddEmptyLiteralClauseToGroup appends NewEmptyLiteralClause.
func AddEmptyLiteralClauseToGroup(g querytree.Group) querytree.Group {
	g.Clauses = append(slices.Clone(nonNilClauses(g.Clauses)), NewEmptyLiteralClause())
	return g
}

// RemoveClauseAtIndex removes clauses[index].
func RemoveClauseAtIndex(g querytree.Group, index int) querytree.Group {
	if index < 0 || index >= len(g.Clauses) {
		return g
	}
	g.Clauses = slices.Delete(slices.Clone(g.Clauses), index, index+1)
	return g
}

// SetClauseAtIndex replaces clauses[index].
func SetClauseAtIndex(g querytree.Group, index int, clause querytree.Clause) querytree.Group {
	if index < 0 || index >= len(g.Clauses) {
		return g
	}
	g.Clauses = slices.Clone(g.Clauses)
	g.Clauses[index] = clause
	return g
}

// AddRelationshipIfMissing installs an empty forward ANY relationship
// unless one is already present.
func AddRelationshipIfMissing(g querytree.Group) querytree.Group {
	if g.Relationship != nil {
		return g
	}
	g.Relationship = querytree.NewRelationship()
	return g
}

// ClearRelationshipIfPresent removes the relationship without touching
// clauses. Use SetRelationshipAndReconcileClauses(g, nil) to also drop
// RELATED clauses.
func ClearRelationshipIfPresent(g querytree.Group) querytree.Group {
	if g.Relationship == nil {
		return g
	}
	g.Relationship = nil
	return g
}

// SetRelationshipAndReconcileClauses installs next. A nil next clears the
// relationship and drops RELATED clauses; a next whose direction differs
// from the current relationship drops RELATED clauses, since their subject
// paths were written for the old direction.
func SetRelationshipAndReconcileClauses(g querytree.Group, next *querytree.Relationship) querytree.Group {
	if next == nil {
		return dropRelationship(g)
	}

	previous := g.Relationship
	if previous != nil && previous.IsInverse != next.IsInverse {
		g.Clauses = withoutRelatedClauses(g.Clauses)
	}
	g.Relationship = next.Clone()
	return g
}

func graphChanged(previous, next string) bool {
	return previous != "" && next != "" && previous != next
}

func dropRelationship(g querytree.Group) querytree.Group {
	g.Relationship = nil
	g.Clauses = withoutRelatedClauses(g.Clauses)
	return g
}

func withoutRelatedClauses(clauses []querytree.Clause) []querytree.Clause {
	out := make([]querytree.Clause, 0, len(clauses))
	for _, c := range clauses {
		if c.Type != querytree.ClauseRelated {
			out = append(out, c)
		}
	}
	return out
}

func nonNilClauses(c []querytree.Clause) []querytree.Clause {
	if c == nil {
		return []querytree.Clause{}
	}
	return c
}

func nonNilGroups(g []querytree.Group) []querytree.Group {
	if g == nil {
		return []querytree.Group{}
	}
	return g
}
