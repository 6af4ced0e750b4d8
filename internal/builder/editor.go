package builder

import "github.com/roach88/advsearch/internal/querytree"

// Editor applies builder operations in place on a tree.
//
// An Editor addresses one group of a shared root by its index path.
// Every edit computes the next group with the pure function of the same
// name, then commits it upward through each ancestor with
// ReplaceChildGroupAtIndexAndReconcile. Changing a nested group's graph
// therefore invalidates the parent's relationship exactly as replacing the
// child through the pure API would.
//
// Editors assume a single writer and do no locking.
type Editor struct {
	root *querytree.Group
	path []int
}

// NewEditor returns an editor over a private copy of root.
func NewEditor(root querytree.Group) *Editor {
	r := root.Clone()
	return &Editor{root: &r, path: []int{}}
}

// NewRootEditor returns an editor over NewGroup(graphSlug).
func NewRootEditor(graphSlug string) *Editor {
	return NewEditor(NewGroup(graphSlug))
}

// Child returns an editor for groups[index] of this editor's group. The
// child shares the root; if the index stops being valid its edits are
// ignored.
func (e *Editor) Child(index int) *Editor {
	path := make([]int, len(e.path), len(e.path)+1)
	copy(path, e.path)
	return &Editor{root: e.root, path: append(path, index)}
}

// Path returns the index path from the root to this editor's group.
func (e *Editor) Path() []int {
	return append([]int(nil), e.path...)
}

// Root returns a snapshot of the whole tree.
func (e *Editor) Root() querytree.Group {
	return e.root.Clone()
}

// Group returns a snapshot of the addressed group and whether the path
// still resolves.
func (e *Editor) Group() (querytree.Group, bool) {
	g, ok := e.lookup()
	if !ok {
		return querytree.Group{}, false
	}
	return g.Clone(), true
}

func (e *Editor) lookup() (querytree.Group, bool) {
	g := *e.root
	for _, i := range e.path {
		if i < 0 || i >= len(g.Groups) {
			return querytree.Group{}, false
		}
		g = g.Groups[i]
	}
	return g, true
}

// apply replaces the addressed group with fn(group) and reconciles each
// ancestor on the way back to the root.
func (e *Editor) apply(fn func(querytree.Group) querytree.Group) {
	chain := make([]querytree.Group, 0, len(e.path)+1)
	g := *e.root
	chain = append(chain, g)
	for _, i := range e.path {
		if i < 0 || i >= len(g.Groups) {
			return
		}
		g = g.Groups[i]
		chain = append(chain, g)
	}

	next := fn(chain[len(chain)-1])
	for depth := len(e.path) - 1; depth >= 0; depth-- {
		next = ReplaceChildGroupAtIndexAndReconcile(chain[depth], e.path[depth], next)
	}
	*e.root = next
}

// SetGraphSlug applies SetGraphSlugAndResetIfChanged.
func (e *Editor) SetGraphSlug(slug string) {
	e.apply(func(g querytree.Group) querytree.Group {
		return SetGraphSlugAndResetIfChanged(g, slug)
	})
}

// SetScope applies SetScope.
func (e *Editor) SetScope(scope querytree.Scope) {
	e.apply(func(g querytree.Group) querytree.Group {
		return SetScope(g, scope)
	})
}

// ToggleLogic applies ToggleLogic.
func (e *Editor) ToggleLogic() {
	e.apply(ToggleLogic)
}

// IsAnd applies ComputeIsAnd. An editor whose path no longer resolves
// reports false.
func (e *Editor) IsAnd() bool {
	g, ok := e.lookup()
	return ok && ComputeIsAnd(g)
}

// AddChildGroup applies AddChildGroupLikeParent and returns an editor for
// the new child.
func (e *Editor) AddChildGroup() *Editor {
	e.apply(AddChildGroupLikeParent)
	g, _ := e.lookup()
	return e.Child(len(g.Groups) - 1)
}

// ReplaceChildGroup applies ReplaceChildGroupAtIndexAndReconcile.
func (e *Editor) ReplaceChildGroup(index int, replacement querytree.Group) {
	replacement = replacement.Clone()
	e.apply(func(g querytree.Group) querytree.Group {
		return ReplaceChildGroupAtIndexAndReconcile(g, index, replacement)
	})
}

// RemoveChildGroup applies RemoveChildGroupAtIndexAndReconcile.
func (e *Editor) RemoveChildGroup(index int) {
	e.apply(func(g querytree.Group) querytree.Group {
		return RemoveChildGroupAtIndexAndReconcile(g, index)
	})
}

// AddEmptyLiteralClause applies AddEmptyLiteralClauseToGroup.
func (e *Editor) AddEmptyLiteralClause() {
	e.apply(AddEmptyLiteralClauseToGroup)
}

// RemoveClause applies RemoveClauseAtIndex.
func (e *Editor) RemoveClause(index int) {
	e.apply(func(g querytree.Group) querytree.Group {
		return RemoveClauseAtIndex(g, index)
	})
}

// SetClause applies SetClauseAtIndex.
func (e *Editor) SetClause(index int, clause querytree.Clause) {
	clause = clause.Clone()
	e.apply(func(g querytree.Group) querytree.Group {
		return SetClauseAtIndex(g, index, clause)
	})
}

// AddRelationshipIfMissing applies AddRelationshipIfMissing.
func (e *Editor) AddRelationshipIfMissing() {
	e.apply(AddRelationshipIfMissing)
}

// ClearRelationshipIfPresent applies ClearRelationshipIfPresent.
func (e *Editor) ClearRelationshipIfPresent() {
	e.apply(ClearRelationshipIfPresent)
}

// SetRelationship applies SetRelationshipAndReconcileClauses.
func (e *Editor) SetRelationship(next *querytree.Relationship) {
	e.apply(func(g querytree.Group) querytree.Group {
		return SetRelationshipAndReconcileClauses(g, next)
	})
}
