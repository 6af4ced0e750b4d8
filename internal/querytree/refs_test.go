package querytree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/advsearch/internal/ir"
)

func TestReferencedNodes(t *testing.T) {
	g := Group{
		GraphSlug: "person",
		Clauses: []Clause{
			{
				Subject:  Path{Seg("person", "address"), Seg("place", "city")},
				Operands: []Operand{PathOperand{Path: Path{Seg("person", "birthplace")}}, Literal(ir.String("x"))},
			},
			{Subject: Path{Seg("person", "address")}},
		},
		Groups: []Group{
			{
				GraphSlug: "dog",
				Clauses:   []Clause{{Subject: Path{Seg("dog", "name")}}},
			},
			{
				GraphSlug: "person",
				Clauses:   []Clause{{Subject: Path{Seg("person", "age")}}},
			},
		},
		Relationship: &Relationship{Path: Path{Seg("person", "pets")}},
	}

	assert.Equal(t, []Segment{
		Seg("person", "address"),
		Seg("place", "city"),
		Seg("person", "birthplace"),
		Seg("person", "pets"),
		Seg("dog", "name"),
		Seg("person", "age"),
	}, ReferencedNodes(g))
}

func TestReferencedNodes_Empty(t *testing.T) {
	assert.Equal(t, []Segment{}, ReferencedNodes(Group{GraphSlug: "dog"}))
}

func TestGraphSlugs(t *testing.T) {
	g := Group{
		GraphSlug: "person",
		Groups: []Group{
			{GraphSlug: "dog", Groups: []Group{{GraphSlug: "person"}, {GraphSlug: "vet"}}},
			{GraphSlug: ""},
		},
	}
	assert.Equal(t, []string{"person", "dog", "vet"}, GraphSlugs(g))
}
