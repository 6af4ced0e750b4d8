package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/roach88/advsearch/internal/operators"
	"github.com/roach88/advsearch/internal/querytree"
)

// Memory is a read-only Source over a Fixture.
type Memory struct {
	graphs []Graph
	nodes  map[string][]Node
	index  map[querytree.Segment]Node
	facets operators.FacetsByDatatype
}

// NewMemory builds a Source from f. f is not retained.
func NewMemory(f *Fixture) *Memory {
	m := &Memory{
		graphs: []Graph{},
		nodes:  map[string][]Node{},
		index:  map[querytree.Segment]Node{},
		facets: operators.FacetsByDatatype{},
	}
	for _, g := range f.Graphs {
		m.graphs = append(m.graphs, g.Graph)
		nodes := slices.Clone(g.Nodes)
		if nodes == nil {
			nodes = []Node{}
		}
		slices.SortStableFunc(nodes, compareNodes)
		m.nodes[g.Slug] = nodes
		for _, n := range nodes {
			m.index[n.Segment()] = n
		}
	}
	slices.SortFunc(m.graphs, func(a, b Graph) int { return strings.Compare(a.Slug, b.Slug) })

	for datatype, facets := range f.Facets {
		m.facets[datatype] = slices.Clone(facets)
	}
	return m
}

// MemoryFromFile loads a fixture file into a Memory source.
func MemoryFromFile(path string) (*Memory, error) {
	f, err := LoadFixture(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(f), nil
}

func (m *Memory) Graphs(context.Context) ([]Graph, error) {
	return slices.Clone(m.graphs), nil
}

func (m *Memory) Graph(_ context.Context, slug string) (Graph, error) {
	for _, g := range m.graphs {
		if g.Slug == slug {
			return g, nil
		}
	}
	return Graph{}, ErrNotFound
}

func (m *Memory) Nodes(_ context.Context, graph string) ([]Node, error) {
	nodes, ok := m.nodes[graph]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(nodes), nil
}

func (m *Memory) LookupNodes(_ context.Context, segs []querytree.Segment) (map[querytree.Segment]Node, error) {
	out := make(map[querytree.Segment]Node, len(segs))
	for _, seg := range segs {
		if n, ok := m.index[seg]; ok {
			out[seg] = n
		}
	}
	return out, nil
}

func (m *Memory) Facets(context.Context) (operators.FacetsByDatatype, error) {
	out := make(operators.FacetsByDatatype, len(m.facets))
	for datatype, facets := range m.facets {
		out[datatype] = slices.Clone(facets)
	}
	return out, nil
}

func compareNodes(a, b Node) int {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder - b.SortOrder
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Alias, b.Alias)
}
