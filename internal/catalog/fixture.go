package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/advsearch/internal/operators"
)

// Fixture is the YAML form of a catalog:
//
//	graphs:
//	  - slug: person
//	    name: {en: Person, de: Person}
//	    nodes:
//	      - alias: age
//	        name: Age
//	        datatype: number
//	        widget_label: {en: Age, de: Alter}
//	facets:
//	  number:
//	    - operator: GREATER_THAN
//	      label: ">"
//	      arity: 1
type Fixture struct {
	Graphs []FixtureGraph              `yaml:"graphs"`
	Facets operators.FacetsByDatatype `yaml:"facets"`
}

// FixtureGraph is a graph with its nodes inline.
type FixtureGraph struct {
	Graph `yaml:",inline"`
	Nodes []Node `yaml:"nodes"`
}

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes a fixture, rejecting unknown fields, and fills in
// derived values: node graph slugs, facet datatypes, and ids for facets
// that have none.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixture) normalize() error {
	if f.Facets == nil {
		f.Facets = operators.FacetsByDatatype{}
	}

	var errs []error
	slugs := map[string]bool{}
	for gi := range f.Graphs {
		g := &f.Graphs[gi]
		if g.Slug == "" {
			errs = append(errs, fmt.Errorf("graphs[%d]: slug is required", gi))
			continue
		}
		if slugs[g.Slug] {
			errs = append(errs, fmt.Errorf("graphs[%d]: duplicate slug %q", gi, g.Slug))
		}
		slugs[g.Slug] = true

		aliases := map[string]bool{}
		for ni := range g.Nodes {
			n := &g.Nodes[ni]
			n.Graph = g.Slug
			if n.Alias == "" {
				errs = append(errs, fmt.Errorf("graph %q nodes[%d]: alias is required", g.Slug, ni))
				continue
			}
			if aliases[n.Alias] {
				errs = append(errs, fmt.Errorf("graph %q nodes[%d]: duplicate alias %q", g.Slug, ni, n.Alias))
			}
			aliases[n.Alias] = true
		}
	}

	nextID := 1
	ids := map[int]bool{}
	for _, facets := range f.Facets {
		for _, facet := range facets {
			if facet.ID != 0 {
				if ids[facet.ID] {
					errs = append(errs, fmt.Errorf("facet id %d used twice", facet.ID))
				}
				ids[facet.ID] = true
				nextID = max(nextID, facet.ID+1)
			}
		}
	}
	for _, datatype := range f.Facets.Datatypes() {
		facets := f.Facets[datatype]
		for i := range facets {
			facets[i].DatatypeID = datatype
			if facets[i].Operator == "" {
				errs = append(errs, fmt.Errorf("facets %q[%d]: operator is required", datatype, i))
			}
			if facets[i].ParamFormats == nil {
				facets[i].ParamFormats = []string{}
			}
			if facets[i].ID == 0 {
				facets[i].ID = nextID
				nextID++
			}
		}
		slices.SortStableFunc(facets, compareFacets)
	}

	return errors.Join(errs...)
}

func compareFacets(a, b operators.Facet) int {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder - b.SortOrder
	}
	return a.ID - b.ID
}
