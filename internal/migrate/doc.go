// Package migrate rewrites historical search payload shapes into the
// current wire shape.
//
// Older clients produced payloads that the strict decoder in querytree
// rejects: colon-joined "graph:node" paths, an "inverse" flag instead of
// "is_inverse", a scalar traversal quantifier, quantifier spellings such
// as AT_LEAST, and an earlier tree shape nesting clauses under "query".
// Normalize accepts any of these and returns the steady-state payload
// plus a Report listing every rewrite, so callers can tell a migrated
// payload from one that was already current.
package migrate
