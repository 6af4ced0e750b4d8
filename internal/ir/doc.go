// Package ir provides the literal value model shared by search payloads.
//
// Operands, facet labels and aggregations carry arbitrary JSON. ir gives
// that JSON a sealed Go shape so callers can switch exhaustively instead of
// asserting on interface{}. ir imports nothing internal; every other
// package may import it.
//
// Key design constraints:
//   - Numbers keep their wire text (Number) so payloads round-trip exactly
//   - null decodes to Null{}, never to a nil Value
//   - MarshalCanonical is the only encoding used for hashing
package ir
