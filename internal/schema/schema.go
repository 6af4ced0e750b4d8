// Package schema checks raw search payloads against the submission
// schema in payload.cue.
//
// The schema is stricter than querytree decoding: it is the shape a
// backend accepts for execution, so subjects, operators and relationship
// paths must be filled in. Drafts produced by the builder can decode and
// narrate fine while still failing here.
package schema

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed payload.cue
var payloadSchema string

var payloadPath = cue.ParsePath("payload")

// Violation is one schema failure. Path is JSONPath-like ("$.clauses[0].operator").
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Schema is a compiled payload schema. A cue.Context is not safe for
// concurrent use, so Validate serialises callers.
type Schema struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(payloadSchema, cue.Filename("payload.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile payload schema: %w", err)
	}
	return &Schema{ctx: ctx, schema: v}, nil
}

var defaultSchema = sync.OnceValues(New)

// Validate checks data against the embedded schema. The error is
// non-nil only when the schema itself or the JSON cannot be compiled;
// schema failures are returned as violations.
func Validate(data []byte) ([]Violation, error) {
	s, err := defaultSchema()
	if err != nil {
		return nil, err
	}
	return s.Validate(data)
}

// Validate checks one JSON payload.
func (s *Schema) Validate(data []byte) ([]Violation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.ctx.CompileBytes(data, cue.Filename("payload.json"))
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}

	unified := s.schema.FillPath(payloadPath, doc).LookupPath(payloadPath)
	err := unified.Validate(cue.Concrete(true), cue.All())
	if err == nil {
		return []Violation{}, nil
	}
	return violations(err), nil
}

func violations(err error) []Violation {
	out := []Violation{}
	seen := map[Violation]bool{}
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Path:    jsonPath(e.Path()),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b Violation) int {
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// jsonPath renders CUE selectors as "$.groups[0].clauses[1]", dropping
// the wrapper field the payload is filled into.
func jsonPath(selectors []string) string {
	if len(selectors) > 0 && selectors[0] == "payload" {
		selectors = selectors[1:]
	}
	var b strings.Builder
	b.WriteString("$")
	for _, sel := range selectors {
		if isIndex(sel) {
			b.WriteString("[" + sel + "]")
			continue
		}
		b.WriteString("." + sel)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
