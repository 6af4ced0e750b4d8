// Package builder derives new search trees from old ones while keeping the
// tree's structural invariants.
//
// Every operation is total: out-of-range indices leave the group
// unchanged and nothing returns an error. Reconciliation happens as part
// of the operation that would otherwise leave stale state behind:
//
//   - changing a non-empty graph slug clears clauses, groups and
//     relationship
//   - replacing groups[0] with a different graph drops the relationship
//     and any RELATED clauses
//   - removing the last child group drops the relationship and any
//     RELATED clauses
//   - setting the relationship to nil, or flipping its direction, drops
//     RELATED clauses
//
// Two APIs share these rules. The package functions are pure: they never
// modify their argument and return the next tree. Editor wraps a root tree
// and applies the same functions in place, committing each change through
// the parent's ReplaceChildGroupAtIndexAndReconcile so that nested edits
// reconcile their ancestors exactly as the pure API would.
//
// Stable keys (CreateStableKeys, ReconcileStableKeys) give a presentation
// layer identities for sibling lists that survive edits.
package builder
