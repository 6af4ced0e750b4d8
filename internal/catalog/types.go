package catalog

import (
	"context"
	"errors"

	"github.com/roach88/advsearch/internal/operators"
	"github.com/roach88/advsearch/internal/querytree"
)

// ErrNotFound is returned when a graph or node does not exist.
var ErrNotFound = errors.New("not found")

// Graph is a resource model that search payloads target.
type Graph struct {
	Slug        string          `json:"slug" yaml:"slug"`
	Name        operators.Label `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
}

// Node is an addressable field of a graph.
type Node struct {
	Graph       string          `json:"graph_slug" yaml:"-"`
	Alias       string          `json:"alias" yaml:"alias"`
	Name        string          `json:"name" yaml:"name"`
	Datatype    string          `json:"datatype" yaml:"datatype"`
	SortOrder   int             `json:"sortorder" yaml:"sortorder"`
	WidgetLabel operators.Label `json:"widget_label" yaml:"widget_label"`
}

// Segment returns the node's (graph, alias) pair.
func (n Node) Segment() querytree.Segment {
	return querytree.Seg(n.Graph, n.Alias)
}

// Label resolves the widget label for lang, then fallback, then the
// first translation. Returns "" when the node has no widget label.
func (n Node) Label(lang, fallback string) string {
	return n.WidgetLabel.For(lang, fallback)
}

// DisplayLabel is Label falling back to the node name, the way node
// pickers show fields that have no widget.
func (n Node) DisplayLabel(lang, fallback string) string {
	if label := n.Label(lang, fallback); label != "" {
		return label
	}
	return n.Name
}

// Source is read access to catalog metadata.
type Source interface {
	// Graphs returns every graph ordered by slug.
	Graphs(ctx context.Context) ([]Graph, error)
	// Graph returns one graph or ErrNotFound.
	Graph(ctx context.Context, slug string) (Graph, error)
	// Nodes returns the nodes of graph, or ErrNotFound for an unknown graph.
	Nodes(ctx context.Context, graph string) ([]Node, error)
	// LookupNodes returns the nodes that exist among segs. Missing
	// segments are absent from the map.
	LookupNodes(ctx context.Context, segs []querytree.Segment) (map[querytree.Segment]Node, error)
	// Facets returns every facet keyed by datatype, each list in sortorder.
	Facets(ctx context.Context) (operators.FacetsByDatatype, error)
}
