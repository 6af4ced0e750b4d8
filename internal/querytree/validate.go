package querytree

import (
	"fmt"

	"github.com/roach88/advsearch/internal/operators"
)

// Issue codes reported by Validate.
const (
	CodeEmptyGraphSlug        = "Q001"
	CodeRelatedWithoutRel     = "Q002"
	CodeRelationshipNoChild   = "Q003"
	CodeRelationshipGraph     = "Q004"
	CodeMultiSegmentRel       = "Q005"
	CodeEmptySubject          = "Q006"
	CodeEmptyOperator         = "Q007"
	CodeTraversalQuantifier   = "Q008"
	CodeUnknownOperator       = "Q009"
	CodeInvalidTag            = "Q010"
	CodeEmptyPathOperand      = "Q011"
	CodeMissingOperandLiteral = "Q012"
	CodeDuplicateClause       = "Q013"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding from Validate.
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s at %s: %s", i.Code, i.Severity, i.Path, i.Message)
}

// ValidationResult collects every issue found in a tree.
type ValidationResult struct {
	// Valid is false when at least one issue has error severity.
	// Warnings mark trees that execute but narrate poorly.
	Valid bool `json:"valid"`

	Issues []Issue `json:"issues"`
}

// Errors returns only the error-severity issues.
func (r ValidationResult) Errors() []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			out = append(out, issue)
		}
	}
	return out
}

// Options tune Validate.
type Options struct {
	// Operators, when non-nil, makes unknown operator tokens a warning
	// with a closest-match suggestion.
	Operators operators.LabelMap
}

// Validate lints a tree for states the builder would never produce and
// for shapes the narrator cannot describe. It never fails; problems are
// returned as issues.
//
// Checks:
//   - root graph slug is set
//   - scope, logic, clause types and quantifiers are known tags
//   - RELATED clauses only appear in groups with a relationship
//   - a relationship has a child group to govern
//   - a single-segment relationship path starts at the right graph:
//     this group for forward traversal, groups[0] for inverse
//   - relationship paths have at most one segment
//   - clauses have a subject and an operator
//   - no clause is repeated within a group
//
// Validate is a pure function with no side effects.
func Validate(g Group, opts Options) ValidationResult {
	v := &validator{
		opts:   opts,
		issues: []Issue{},
	}
	if g.GraphSlug == "" {
		v.add(CodeEmptyGraphSlug, SeverityError, "$", "graph_slug is empty")
	}
	v.validateGroup(g, "$")

	valid := true
	for _, issue := range v.issues {
		if issue.Severity == SeverityError {
			valid = false
			break
		}
	}
	return ValidationResult{Valid: valid, Issues: v.issues}
}

// validator accumulates issues during traversal.
type validator struct {
	opts   Options
	issues []Issue
}

func (v *validator) add(code string, sev Severity, path, format string, args ...any) {
	v.issues = append(v.issues, Issue{
		Code:     code,
		Severity: sev,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (v *validator) validateGroup(g Group, path string) {
	if g.Scope != "" && !g.Scope.Valid() {
		v.add(CodeInvalidTag, SeverityError, path, "unknown scope %q", g.Scope)
	}
	if g.Logic != "" && !g.Logic.Valid() {
		v.add(CodeInvalidTag, SeverityError, path, "unknown logic %q", g.Logic)
	}

	firstSeen := map[string]int{}
	for i, c := range g.Clauses {
		clausePath := fmt.Sprintf("%s.clauses[%d]", path, i)
		v.validateClause(c, clausePath)
		if c.Type == ClauseRelated && g.Relationship == nil {
			v.add(CodeRelatedWithoutRel, SeverityError, clausePath,
				"RELATED clause in a group without a relationship")
		}
		if fp, err := ClauseFingerprint(c); err == nil {
			if first, dup := firstSeen[fp]; dup {
				v.add(CodeDuplicateClause, SeverityWarning, clausePath,
					"clause repeats clauses[%d]", first)
			} else {
				firstSeen[fp] = i
			}
		}
	}

	if g.Relationship != nil {
		v.validateRelationship(g, path+".relationship")
	}

	for i, child := range g.Groups {
		v.validateGroup(child, fmt.Sprintf("%s.groups[%d]", path, i))
	}
}

func (v *validator) validateRelationship(g Group, path string) {
	rel := g.Relationship

	if len(g.Groups) == 0 {
		v.add(CodeRelationshipNoChild, SeverityError, path,
			"relationship has no child group to govern")
	}

	for i, q := range rel.TraversalQuantifiers {
		if !q.Valid() {
			v.add(CodeTraversalQuantifier, SeverityWarning,
				fmt.Sprintf("%s.traversal_quantifiers[%d]", path, i),
				"unknown traversal quantifier %q is read as ANY", q)
		}
	}

	switch {
	case len(rel.Path) > 1:
		v.add(CodeMultiSegmentRel, SeverityWarning, path+".path",
			"relationship path has %d segments; only single-segment paths can be narrated", len(rel.Path))
	case len(rel.Path) == 1:
		seg := rel.Path[0]
		want, side := g.GraphSlug, "this group"
		if rel.IsInverse {
			want, side = "", "groups[0]"
			if len(g.Groups) > 0 {
				want = g.Groups[0].GraphSlug
			}
		}
		if want != "" && seg.Graph != want {
			v.add(CodeRelationshipGraph, SeverityError, path+".path[0]",
				"relationship node %s.%s must belong to %s graph %q", seg.Graph, seg.Node, side, want)
		}
	}
}

func (v *validator) validateClause(c Clause, path string) {
	if !c.Type.Valid() {
		v.add(CodeInvalidTag, SeverityError, path, "unknown clause type %q", c.Type)
	}
	if !c.Quantifier.Valid() {
		v.add(CodeInvalidTag, SeverityError, path, "unknown quantifier %q", c.Quantifier)
	}
	if len(c.Subject) == 0 {
		v.add(CodeEmptySubject, SeverityWarning, path+".subject", "clause has no subject")
	}

	switch {
	case c.Operator == "":
		v.add(CodeEmptyOperator, SeverityWarning, path+".operator", "clause has no operator")
	case v.opts.Operators != nil && !v.opts.Operators.Known(c.Operator):
		if suggestion, ok := v.opts.Operators.Suggest(c.Operator); ok {
			v.add(CodeUnknownOperator, SeverityWarning, path+".operator",
				"unknown operator %q (did you mean %q?)", c.Operator, suggestion)
		} else {
			v.add(CodeUnknownOperator, SeverityWarning, path+".operator",
				"unknown operator %q", c.Operator)
		}
	}

	for i, op := range c.Operands {
		opPath := fmt.Sprintf("%s.operands[%d]", path, i)
		switch o := op.(type) {
		case PathOperand:
			if len(o.Path) == 0 {
				v.add(CodeEmptyPathOperand, SeverityWarning, opPath, "PATH operand has an empty path")
			}
		case LiteralOperand:
			if o.Value == nil {
				v.add(CodeMissingOperandLiteral, SeverityError, opPath, "LITERAL operand has no value")
			}
		case nil:
			v.add(CodeMissingOperandLiteral, SeverityError, opPath, "operand is nil")
		}
	}
}
