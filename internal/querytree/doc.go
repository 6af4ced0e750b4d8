// Package querytree defines the advanced search predicate tree.
//
// A search is a recursive Group. Each Group names the graph (entity type)
// its clauses apply to, combines its clauses, relationship condition and
// child groups with a single Logic, and may carry a Relationship describing
// how its first child group is reached from it.
//
// Types in this package are plain values. Structural invariants (a
// relationship governs groups[0], RELATED clauses need a relationship) are
// enforced by the builder package, which is the only sanctioned way to
// derive one tree from another. This package provides:
//
//   - the closed enumerations used on the wire (Scope, Logic, Quantifier,
//     ClauseType, OperandType), each rejecting unknown tags on decode
//   - the wire JSON codec (Marshal, Unmarshal) with field names matching
//     the execution endpoint
//   - Validate, a structural lint that reports issues without failing
//   - ReferencedNodes, which lists every (graph, node) pair a tree mentions
//   - Fingerprint, a content hash that ignores key order and number
//     spelling
package querytree
