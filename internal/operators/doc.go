// Package operators resolves backend operator tokens to display phrases.
//
// Facets are defined per datatype by the search backend. Each carries an
// operator token (GREATER_THAN, HAS_ANY_VALUE, ...) and a label that may be
// a symbol ("<=") or a language map. BuildLabelMap flattens every facet
// into a single token -> phrase table, normalising symbols into words so a
// narrated sentence reads "is less than or equal to" rather than "<=".
package operators
