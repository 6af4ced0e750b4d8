// Package catalog supplies the graph, node and facet metadata that
// narration and the operator resolver read.
//
// Two Sources are provided:
//
//   - Memory, built directly from a YAML Fixture, for tests and small
//     deployments.
//   - Store, a SQLite database populated with ImportFixture.
//
// On top of a Source, NodeMetadataForPayload collects the datatype and
// widget label of every node a payload references, resolving localised
// labels for the requested language with the default language and then
// the first translation as fallbacks. CachedLabels wraps a Source in an
// LRU cache for use as a narrate.NodeLabelFunc.
//
// Ordering is deterministic everywhere: graphs by slug, nodes by
// sortorder then name then alias, facets by datatype then sortorder then
// id. Empty results are empty slices, never nil.
package catalog
