package querytree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/advsearch/internal/ir"
)

// Marshal serialises g in the wire shape expected by the execution
// endpoint. Sequences are always emitted as arrays, never null.
func Marshal(g Group) ([]byte, error) {
	return json.Marshal(g)
}

// Unmarshal decodes a steady-state wire payload. Unknown enum tags are
// errors; missing scope and logic default to RESOURCE and AND. Older
// payload shapes must go through migrate.Normalize first.
func Unmarshal(data []byte) (Group, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Group{}, errors.New("payload is empty")
	}
	var g Group
	if err := json.Unmarshal(data, &g); err != nil {
		return Group{}, err
	}
	return g, nil
}

// MarshalJSON writes a segment as a [graph, node] pair.
func (s Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{s.Graph, s.Node})
}

// UnmarshalJSON reads a [graph, node] pair.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("path segment must be a [graph, node] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("path segment must have 2 entries, got %d", len(pair))
	}
	*s = Segment{Graph: pair[0], Node: pair[1]}
	return nil
}

// MarshalJSON writes an empty array for a nil path.
func (p Path) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Segment(p))
}

// UnmarshalJSON reads a path, treating null as empty.
func (p *Path) UnmarshalJSON(data []byte) error {
	var segs []Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return err
	}
	if segs == nil {
		segs = []Segment{}
	}
	*p = segs
	return nil
}

type wireOperand struct {
	Type         OperandType     `json:"type"`
	Value        json.RawMessage `json:"value"`
	DisplayValue json.RawMessage `json:"display_value,omitempty"`
}

func marshalOperand(op Operand) (json.RawMessage, error) {
	switch o := op.(type) {
	case LiteralOperand:
		value, err := ir.MarshalValue(o.Value)
		if err != nil {
			return nil, err
		}
		w := wireOperand{Type: OperandLiteral, Value: value}
		if o.DisplayValue != nil {
			if w.DisplayValue, err = ir.MarshalValue(o.DisplayValue); err != nil {
				return nil, fmt.Errorf("display_value: %w", err)
			}
		}
		return json.Marshal(w)
	case PathOperand:
		value, err := json.Marshal(o.Path)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wireOperand{Type: OperandPath, Value: value})
	default:
		return nil, fmt.Errorf("unknown operand %T", op)
	}
}

func unmarshalOperand(data []byte) (Operand, error) {
	var w wireOperand
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}

	switch w.Type {
	case OperandLiteral:
		op := LiteralOperand{Value: ir.Null{}}
		if len(w.Value) > 0 {
			v, err := ir.UnmarshalValue(w.Value)
			if err != nil {
				return nil, fmt.Errorf("value: %w", err)
			}
			op.Value = v
		}
		if len(w.DisplayValue) > 0 {
			v, err := ir.UnmarshalValue(w.DisplayValue)
			if err != nil {
				return nil, fmt.Errorf("display_value: %w", err)
			}
			op.DisplayValue = v
		}
		return op, nil
	case OperandPath:
		path := Path{}
		if len(w.Value) > 0 {
			if err := json.Unmarshal(w.Value, &path); err != nil {
				return nil, fmt.Errorf("value: %w", err)
			}
		}
		return PathOperand{Path: path}, nil
	case "":
		return nil, errors.New("operand type is required")
	default:
		return nil, fmt.Errorf("unknown operand type %q", w.Type)
	}
}

type wireClause struct {
	Type       ClauseType        `json:"type"`
	Quantifier Quantifier        `json:"quantifier"`
	Subject    Path              `json:"subject"`
	Operator   string            `json:"operator"`
	Operands   []json.RawMessage `json:"operands"`
}

// MarshalJSON writes the wire clause shape.
func (c Clause) MarshalJSON() ([]byte, error) {
	w := wireClause{
		Type:       c.Type,
		Quantifier: c.Quantifier,
		Subject:    c.Subject,
		Operator:   c.Operator,
		Operands:   make([]json.RawMessage, len(c.Operands)),
	}
	if w.Type == "" {
		w.Type = ClauseLiteral
	}
	if w.Quantifier == "" {
		w.Quantifier = QuantifierAny
	}
	for i, op := range c.Operands {
		raw, err := marshalOperand(op)
		if err != nil {
			return nil, fmt.Errorf("operands[%d]: %w", i, err)
		}
		w.Operands[i] = raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a wire clause. A missing type reads as LITERAL and a
// missing quantifier as ANY.
func (c *Clause) UnmarshalJSON(data []byte) error {
	w := wireClause{Type: ClauseLiteral, Quantifier: QuantifierAny, Subject: Path{}}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	operands := make([]Operand, len(w.Operands))
	for i, raw := range w.Operands {
		op, err := unmarshalOperand(raw)
		if err != nil {
			return nestedError(fmt.Sprintf("operands[%d]", i), err)
		}
		operands[i] = op
	}

	*c = Clause{
		Type:       w.Type,
		Quantifier: w.Quantifier,
		Subject:    w.Subject,
		Operator:   w.Operator,
		Operands:   operands,
	}
	return nil
}

type wireRelationship struct {
	Path                 Path         `json:"path"`
	IsInverse            bool         `json:"is_inverse"`
	TraversalQuantifiers []Quantifier `json:"traversal_quantifiers"`
}

// MarshalJSON writes the wire relationship shape.
func (r Relationship) MarshalJSON() ([]byte, error) {
	w := wireRelationship{
		Path:                 r.Path,
		IsInverse:            r.IsInverse,
		TraversalQuantifiers: r.TraversalQuantifiers,
	}
	if w.TraversalQuantifiers == nil {
		w.TraversalQuantifiers = []Quantifier{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads a wire relationship.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	w := wireRelationship{Path: Path{}}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.TraversalQuantifiers == nil {
		w.TraversalQuantifiers = []Quantifier{}
	}
	*r = Relationship(w)
	return nil
}

type wireGroup struct {
	GraphSlug    string          `json:"graph_slug"`
	Scope        Scope           `json:"scope"`
	Logic        Logic           `json:"logic"`
	Clauses      json.RawMessage `json:"clauses"`
	Groups       json.RawMessage `json:"groups"`
	Aggregations ir.Array        `json:"aggregations"`
	Relationship json.RawMessage `json:"relationship"`
}

// MarshalJSON writes the wire group shape. An unset scope or logic is
// written as its default.
func (g Group) MarshalJSON() ([]byte, error) {
	w := wireGroup{
		GraphSlug:    g.GraphSlug,
		Scope:        g.Scope,
		Logic:        g.Logic,
		Aggregations: g.Aggregations,
	}
	if w.Scope == "" {
		w.Scope = ScopeResource
	} else if !w.Scope.Valid() {
		return nil, fmt.Errorf("unknown scope %q", w.Scope)
	}
	if w.Logic == "" {
		w.Logic = LogicAnd
	} else if !w.Logic.Valid() {
		return nil, fmt.Errorf("unknown logic %q", w.Logic)
	}
	if w.Aggregations == nil {
		w.Aggregations = ir.Array{}
	}

	clauses := g.Clauses
	if clauses == nil {
		clauses = []Clause{}
	}
	var err error
	if w.Clauses, err = json.Marshal(clauses); err != nil {
		return nil, err
	}
	if w.Relationship, err = json.Marshal(g.Relationship); err != nil {
		return nil, fmt.Errorf("relationship: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, child := range g.Groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		data, err := child.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("groups[%d]: %w", i, err)
		}
		buf.Write(data)
	}
	buf.WriteByte(']')
	w.Groups = buf.Bytes()

	return json.Marshal(w)
}

// UnmarshalJSON reads a wire group, naming the failing element in errors
// (groups[1].clauses[0].operands[2]: ...).
func (g *Group) UnmarshalJSON(data []byte) error {
	var w wireGroup
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Group{
		GraphSlug:    w.GraphSlug,
		Scope:        w.Scope,
		Logic:        w.Logic,
		Clauses:      []Clause{},
		Groups:       []Group{},
		Aggregations: w.Aggregations,
	}
	if out.Scope == "" {
		out.Scope = ScopeResource
	}
	if out.Logic == "" {
		out.Logic = LogicAnd
	}
	if out.Aggregations == nil {
		out.Aggregations = ir.Array{}
	}

	var rawClauses, rawGroups []json.RawMessage
	if err := decodeList(w.Clauses, &rawClauses); err != nil {
		return fmt.Errorf("clauses: %w", err)
	}
	if err := decodeList(w.Groups, &rawGroups); err != nil {
		return fmt.Errorf("groups: %w", err)
	}

	for i, raw := range rawClauses {
		var c Clause
		if err := json.Unmarshal(raw, &c); err != nil {
			return nestedError(fmt.Sprintf("clauses[%d]", i), err)
		}
		out.Clauses = append(out.Clauses, c)
	}
	for i, raw := range rawGroups {
		var child Group
		if err := json.Unmarshal(raw, &child); err != nil {
			return nestedError(fmt.Sprintf("groups[%d]", i), err)
		}
		out.Groups = append(out.Groups, child)
	}
	if len(w.Relationship) > 0 && !bytes.Equal(w.Relationship, []byte("null")) {
		var rel Relationship
		if err := json.Unmarshal(w.Relationship, &rel); err != nil {
			return fmt.Errorf("relationship: %w", err)
		}
		out.Relationship = &rel
	}

	*g = out
	return nil
}

func decodeList(raw json.RawMessage, dst *[]json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// nestedError joins element paths with dots so a deep failure reads
// "groups[0].clauses[1].operands[0]: ...".
func nestedError(prefix string, err error) error {
	msg := err.Error()
	for _, field := range []string{"clauses[", "groups[", "operands["} {
		if strings.HasPrefix(msg, field) {
			return fmt.Errorf("%s.%w", prefix, err)
		}
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
