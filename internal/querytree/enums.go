package querytree

import (
	"encoding/json"
	"fmt"
)

// Scope selects whether clauses test a whole resource or one repeatable
// sub-record (tile) of it.
type Scope string

const (
	ScopeResource Scope = "RESOURCE"
	ScopeTile     Scope = "TILE"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeResource || s == ScopeTile
}

// UnmarshalJSON rejects unknown scopes.
func (s *Scope) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, "scope", s, Scope.Valid)
}

// Logic combines a group's clauses, relationship condition and child groups.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Valid reports whether l is a known logic token.
func (l Logic) Valid() bool {
	return l == LogicAnd || l == LogicOr
}

// Toggle returns the other logic. Anything that is not OR toggles to OR.
func (l Logic) Toggle() Logic {
	if l == LogicOr {
		return LogicAnd
	}
	return LogicOr
}

// UnmarshalJSON rejects unknown logic tokens.
func (l *Logic) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, "logic", l, Logic.Valid)
}

// Quantifier says how many values, paths or related instances must satisfy
// a condition.
type Quantifier string

const (
	QuantifierAny  Quantifier = "ANY"
	QuantifierAll  Quantifier = "ALL"
	QuantifierNone Quantifier = "NONE"
)

// Valid reports whether q is a known quantifier.
func (q Quantifier) Valid() bool {
	return q == QuantifierAny || q == QuantifierAll || q == QuantifierNone
}

// UnmarshalJSON rejects unknown quantifiers. Historical aliases such as
// AT_LEAST are handled by the migrate package, not here.
func (q *Quantifier) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, "quantifier", q, Quantifier.Valid)
}

// ClauseType tags a clause as testing the group's own attributes (LITERAL)
// or attributes reached through the group's relationship (RELATED).
type ClauseType string

const (
	ClauseLiteral ClauseType = "LITERAL"
	ClauseRelated ClauseType = "RELATED"
)

// Valid reports whether t is a known clause type.
func (t ClauseType) Valid() bool {
	return t == ClauseLiteral || t == ClauseRelated
}

// UnmarshalJSON rejects unknown clause types.
func (t *ClauseType) UnmarshalJSON(data []byte) error {
	return decodeEnum(data, "clause type", t, ClauseType.Valid)
}

// OperandType tags an operand as an inline value or a node path.
type OperandType string

const (
	OperandLiteral OperandType = "LITERAL"
	OperandPath    OperandType = "PATH"
)

// Valid reports whether t is a known operand type.
func (t OperandType) Valid() bool {
	return t == OperandLiteral || t == OperandPath
}

func decodeEnum[T ~string](data []byte, what string, dst *T, valid func(T) bool) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s must be a string: %w", what, err)
	}
	v := T(raw)
	if !valid(v) {
		return fmt.Errorf("unknown %s %q", what, raw)
	}
	*dst = v
	return nil
}
