package querytree

import (
	"slices"

	"github.com/roach88/advsearch/internal/ir"
)

// Segment is one (graph, node alias) step of a traversal path.
// On the wire it is a two-element array: ["person", "age"].
type Segment struct {
	Graph string
	Node  string
}

// Seg is shorthand for building a Segment.
func Seg(graph, node string) Segment {
	return Segment{Graph: graph, Node: node}
}

// Path is an ordered traversal through graphs and node aliases.
type Path []Segment

// Last returns the final segment, which names the node being tested.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// Clone returns a copy of p. A nil path clones to an empty one.
func (p Path) Clone() Path {
	if p == nil {
		return Path{}
	}
	return slices.Clone(p)
}

// Operand is a sealed interface over clause operands.
// Only LiteralOperand and PathOperand implement it.
type Operand interface {
	operandNode() // Marker method - seals interface to this package

	// Type returns the wire tag of the operand.
	Type() OperandType
}

// LiteralOperand carries an inline value. DisplayValue, when non-nil, is
// what a reader should see instead of Value (a resolved label for a
// concept id, for example). A present-but-null display value is ir.Null.
type LiteralOperand struct {
	Value        ir.Value
	DisplayValue ir.Value
}

func (LiteralOperand) operandNode() {}

// Type implements Operand.
func (LiteralOperand) Type() OperandType { return OperandLiteral }

// Literal creates a LiteralOperand with no display value.
func Literal(v ir.Value) LiteralOperand {
	return LiteralOperand{Value: v}
}

// PathOperand compares against another node reached by Path.
type PathOperand struct {
	Path Path
}

func (PathOperand) operandNode() {}

// Type implements Operand.
func (PathOperand) Type() OperandType { return OperandPath }

// Clause is a single predicate test.
type Clause struct {
	Type       ClauseType
	Quantifier Quantifier
	Subject    Path
	Operator   string
	Operands   []Operand
}

// Clone returns a deep copy of c. Literal values are immutable once
// decoded and are shared.
func (c Clause) Clone() Clause {
	out := c
	out.Subject = c.Subject.Clone()
	out.Operands = make([]Operand, len(c.Operands))
	for i, op := range c.Operands {
		if p, ok := op.(PathOperand); ok {
			op = PathOperand{Path: p.Path.Clone()}
		}
		out.Operands[i] = op
	}
	return out
}

// Relationship describes how a group reaches its first child group.
type Relationship struct {
	Path                 Path
	IsInverse            bool
	TraversalQuantifiers []Quantifier
}

// NewRelationship returns the relationship installed by an "add
// relationship" action: empty path, forward, ANY.
func NewRelationship() *Relationship {
	return &Relationship{
		Path:                 Path{},
		TraversalQuantifiers: []Quantifier{QuantifierAny},
	}
}

// TraversalQuantifier returns the quantifier selecting how many related
// instances must match. Only the first entry counts. An empty list or an
// unknown first entry means ANY.
func (r *Relationship) TraversalQuantifier() Quantifier {
	if r == nil || len(r.TraversalQuantifiers) == 0 {
		return QuantifierAny
	}
	if q := r.TraversalQuantifiers[0]; q.Valid() {
		return q
	}
	return QuantifierAny
}

// HasPath reports whether r is set and names at least one segment.
func (r *Relationship) HasPath() bool {
	return r != nil && len(r.Path) > 0
}

// Clone returns a deep copy of r, or nil.
func (r *Relationship) Clone() *Relationship {
	if r == nil {
		return nil
	}
	quantifiers := []Quantifier{}
	if r.TraversalQuantifiers != nil {
		quantifiers = slices.Clone(r.TraversalQuantifiers)
	}
	return &Relationship{
		Path:                 r.Path.Clone(),
		IsInverse:            r.IsInverse,
		TraversalQuantifiers: quantifiers,
	}
}

// Group is a node of the predicate tree.
type Group struct {
	GraphSlug    string
	Scope        Scope
	Logic        Logic
	Clauses      []Clause
	Groups       []Group
	Aggregations ir.Array
	Relationship *Relationship
}

// Clone returns a deep copy of g. Every sequence in the copy is non-nil.
func (g Group) Clone() Group {
	out := Group{
		GraphSlug:    g.GraphSlug,
		Scope:        g.Scope,
		Logic:        g.Logic,
		Clauses:      make([]Clause, len(g.Clauses)),
		Groups:       make([]Group, len(g.Groups)),
		Aggregations: ir.Array{},
		Relationship: g.Relationship.Clone(),
	}
	for i, c := range g.Clauses {
		out.Clauses[i] = c.Clone()
	}
	for i, child := range g.Groups {
		out.Groups[i] = child.Clone()
	}
	if g.Aggregations != nil {
		out.Aggregations = slices.Clone(g.Aggregations)
	}
	return out
}

// HasRelatedClauses reports whether any clause depends on the relationship.
func (g Group) HasRelatedClauses() bool {
	return slices.ContainsFunc(g.Clauses, func(c Clause) bool {
		return c.Type == ClauseRelated
	})
}
