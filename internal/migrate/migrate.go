package migrate

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/advsearch/internal/ir"
)

// Rule names recorded in a Report.
const (
	RuleLegacyQueryTree     = "legacy-query-tree"
	RuleColonPath           = "colon-path"
	RuleInverseAlias        = "inverse-alias"
	RuleScalarTraversal     = "scalar-traversal-quantifier"
	RuleQuantifierAlias     = "quantifier-alias"
	RuleTokenCase           = "token-case"
	RuleDefaultField        = "default-field"
	RuleDefaultClauseField  = "default-clause-field"
	RuleDefaultOperandField = "default-operand-field"
)

// quantifierAliases maps historical quantifier spellings to the current
// ones.
var quantifierAliases = map[string]string{
	"AT_LEAST": "ANY",
	"SOME":     "ANY",
	"EXISTS":   "ANY",
	"EVERY":    "ALL",
	"ONLY":     "ALL",
	"NOT_ANY":  "NONE",
}

// Change is one rewrite applied during normalisation.
type Change struct {
	Path   string `json:"path"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s at %s: %s", c.Rule, c.Path, c.Detail)
}

// Report lists the rewrites applied by Normalize.
type Report struct {
	Changes []Change `json:"changes"`
}

// Changed reports whether any rewrite was applied.
func (r Report) Changed() bool {
	return len(r.Changes) > 0
}

// Rules returns the distinct rule names applied, in first-seen order.
func (r Report) Rules() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, c := range r.Changes {
		if !seen[c.Rule] {
			seen[c.Rule] = true
			out = append(out, c.Rule)
		}
	}
	return out
}

// NormalizeJSON is Normalize over raw JSON.
func NormalizeJSON(data []byte) ([]byte, Report, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Report{}, errors.New("payload is empty")
	}
	v, err := ir.UnmarshalValue(data)
	if err != nil {
		return nil, Report{}, fmt.Errorf("decode payload: %w", err)
	}
	out, report, err := Normalize(v)
	if err != nil {
		return nil, report, err
	}
	encoded, err := ir.MarshalValue(out)
	if err != nil {
		return nil, report, err
	}
	return encoded, report, nil
}

// Normalize rewrites a payload into the current wire shape. The input is
// not modified. Fields it does not recognise are kept.
func Normalize(v ir.Value) (ir.Value, Report, error) {
	n := &normalizer{report: Report{Changes: []Change{}}}
	root, ok := v.(ir.Object)
	if !ok {
		return nil, n.report, fmt.Errorf("payload must be an object, got %s", kind(v))
	}

	if isLegacyTree(root) {
		root = n.fromLegacyTree(root)
	}
	out, err := n.group(root, "$")
	if err != nil {
		return nil, n.report, err
	}
	return out, n.report, nil
}

type normalizer struct {
	report Report
}

func (n *normalizer) record(path, rule, format string, args ...any) {
	n.report.Changes = append(n.report.Changes, Change{
		Path:   path,
		Rule:   rule,
		Detail: fmt.Sprintf(format, args...),
	})
}

func (n *normalizer) group(in ir.Object, path string) (ir.Object, error) {
	g := copyObject(in)

	defaults := []struct {
		key   string
		value ir.Value
	}{
		{"graph_slug", ir.String("")},
		{"scope", ir.String("RESOURCE")},
		{"logic", ir.String("AND")},
		{"clauses", ir.Array{}},
		{"groups", ir.Array{}},
		{"aggregations", ir.Array{}},
		{"relationship", ir.Null{}},
	}
	for _, d := range defaults {
		cur, present := g[d.key]
		_, isNull := cur.(ir.Null)
		if !present || (isNull && d.key != "relationship") {
			g[d.key] = d.value
			n.record(path+"."+d.key, RuleDefaultField, "missing %s set to %s", d.key, display(d.value))
		}
	}

	g["scope"] = n.token(g["scope"], path+".scope")
	g["logic"] = n.token(g["logic"], path+".logic")

	clauses, ok := g["clauses"].(ir.Array)
	if !ok {
		return nil, fmt.Errorf("%s.clauses: expected array, got %s", path, kind(g["clauses"]))
	}
	outClauses := make(ir.Array, len(clauses))
	for i, raw := range clauses {
		c, ok := raw.(ir.Object)
		if !ok {
			return nil, fmt.Errorf("%s.clauses[%d]: expected object, got %s", path, i, kind(raw))
		}
		outClauses[i] = n.clause(c, fmt.Sprintf("%s.clauses[%d]", path, i))
	}
	g["clauses"] = outClauses

	groups, ok := g["groups"].(ir.Array)
	if !ok {
		return nil, fmt.Errorf("%s.groups: expected array, got %s", path, kind(g["groups"]))
	}
	outGroups := make(ir.Array, len(groups))
	for i, raw := range groups {
		child, ok := raw.(ir.Object)
		if !ok {
			return nil, fmt.Errorf("%s.groups[%d]: expected object, got %s", path, i, kind(raw))
		}
		normalized, err := n.group(child, fmt.Sprintf("%s.groups[%d]", path, i))
		if err != nil {
			return nil, err
		}
		outGroups[i] = normalized
	}
	g["groups"] = outGroups

	switch rel := g["relationship"].(type) {
	case ir.Null:
	case ir.Object:
		g["relationship"] = n.relationship(rel, path+".relationship")
	default:
		return nil, fmt.Errorf("%s.relationship: expected object or null, got %s", path, kind(rel))
	}

	return g, nil
}

func (n *normalizer) clause(in ir.Object, path string) ir.Object {
	c := copyObject(in)

	if _, ok := c["type"]; !ok {
		c["type"] = ir.String("LITERAL")
		n.record(path+".type", RuleDefaultClauseField, "missing type set to LITERAL")
	}
	c["type"] = n.token(c["type"], path+".type")

	if _, ok := c["quantifier"]; !ok {
		c["quantifier"] = ir.String("ANY")
		n.record(path+".quantifier", RuleDefaultClauseField, "missing quantifier set to ANY")
	}
	c["quantifier"] = n.quantifier(c["quantifier"], path+".quantifier")

	if _, ok := c["subject"]; !ok {
		c["subject"] = ir.Array{}
		n.record(path+".subject", RuleDefaultClauseField, "missing subject set to []")
	}
	c["subject"] = n.path(c["subject"], path+".subject")

	if _, ok := c["operator"]; !ok {
		c["operator"] = ir.String("")
		n.record(path+".operator", RuleDefaultClauseField, "missing operator set to \"\"")
	}

	operands, ok := c["operands"].(ir.Array)
	if !ok {
		if raw, present := c["operands"]; present && !isNull(raw) {
			operands = ir.Array{raw}
			n.record(path+".operands", RuleDefaultClauseField, "single operand wrapped into a list")
		} else {
			operands = ir.Array{}
			n.record(path+".operands", RuleDefaultClauseField, "missing operands set to []")
		}
	}
	outOperands := make(ir.Array, len(operands))
	for i, raw := range operands {
		opPath := fmt.Sprintf("%s.operands[%d]", path, i)
		op, ok := raw.(ir.Object)
		if !ok {
			outOperands[i] = ir.Object{"type": ir.String("LITERAL"), "value": raw}
			n.record(opPath, RuleDefaultOperandField, "bare value wrapped as LITERAL operand")
			continue
		}
		outOperands[i] = n.operand(op, opPath)
	}
	c["operands"] = outOperands

	return c
}

func (n *normalizer) operand(in ir.Object, path string) ir.Object {
	op := copyObject(in)

	if _, ok := op["type"]; !ok {
		op["type"] = ir.String("LITERAL")
		n.record(path+".type", RuleDefaultOperandField, "missing type set to LITERAL")
	}
	op["type"] = n.token(op["type"], path+".type")

	if t, _ := op["type"].(ir.String); t == "PATH" {
		op["value"] = n.path(op["value"], path+".value")
	}
	return op
}

func (n *normalizer) relationship(in ir.Object, path string) ir.Object {
	rel := copyObject(in)

	if inv, ok := rel["inverse"]; ok {
		if _, has := rel["is_inverse"]; !has {
			rel["is_inverse"] = inv
			n.record(path+".inverse", RuleInverseAlias, "inverse renamed to is_inverse")
		}
		delete(rel, "inverse")
	}
	if _, ok := rel["is_inverse"]; !ok {
		rel["is_inverse"] = ir.Bool(false)
		n.record(path+".is_inverse", RuleDefaultField, "missing is_inverse set to false")
	}

	if scalar, ok := rel["traversal_quantifier"]; ok {
		if _, has := rel["traversal_quantifiers"]; !has {
			rel["traversal_quantifiers"] = ir.Array{scalar}
			n.record(path+".traversal_quantifier", RuleScalarTraversal, "traversal_quantifier wrapped into traversal_quantifiers")
		}
		delete(rel, "traversal_quantifier")
	}
	switch tq := rel["traversal_quantifiers"].(type) {
	case ir.Array:
		out := make(ir.Array, len(tq))
		for i, q := range tq {
			out[i] = n.quantifier(q, fmt.Sprintf("%s.traversal_quantifiers[%d]", path, i))
		}
		rel["traversal_quantifiers"] = out
	case ir.String:
		rel["traversal_quantifiers"] = ir.Array{n.quantifier(tq, path+".traversal_quantifiers[0]")}
		n.record(path+".traversal_quantifiers", RuleScalarTraversal, "scalar traversal_quantifiers wrapped into an array")
	default:
		rel["traversal_quantifiers"] = ir.Array{ir.String("ANY")}
		n.record(path+".traversal_quantifiers", RuleDefaultField, "missing traversal_quantifiers set to [ANY]")
	}

	if _, ok := rel["path"]; !ok {
		rel["path"] = ir.Array{}
		n.record(path+".path", RuleDefaultField, "missing path set to []")
	}
	rel["path"] = n.path(rel["path"], path+".path")

	return rel
}

// path accepts a list of [graph, node] pairs, "graph:node" strings, or a
// single "graph:node" string, and returns a list of pairs.
func (n *normalizer) path(v ir.Value, path string) ir.Value {
	switch p := v.(type) {
	case ir.String:
		if seg, ok := splitColon(string(p)); ok {
			n.record(path, RuleColonPath, "%q split into a one-segment path", string(p))
			return ir.Array{seg}
		}
		return v
	case ir.Array:
		out := make(ir.Array, len(p))
		for i, elem := range p {
			out[i] = elem
			if s, ok := elem.(ir.String); ok {
				if seg, ok := splitColon(string(s)); ok {
					out[i] = seg
					n.record(fmt.Sprintf("%s[%d]", path, i), RuleColonPath, "%q split into a pair", string(s))
				}
			}
		}
		return out
	case ir.Null:
		n.record(path, RuleDefaultField, "null path set to []")
		return ir.Array{}
	default:
		return v
	}
}

func (n *normalizer) quantifier(v ir.Value, path string) ir.Value {
	v = n.token(v, path)
	s, ok := v.(ir.String)
	if !ok {
		return v
	}
	if alias, ok := quantifierAliases[string(s)]; ok {
		n.record(path, RuleQuantifierAlias, "%s read as %s", string(s), alias)
		return ir.String(alias)
	}
	return v
}

// token upper-cases enum strings written in lower or mixed case.
func (n *normalizer) token(v ir.Value, path string) ir.Value {
	s, ok := v.(ir.String)
	if !ok {
		return v
	}
	upper := strings.ToUpper(strings.TrimSpace(string(s)))
	if upper != string(s) {
		n.record(path, RuleTokenCase, "%q written as %q", string(s), upper)
		return ir.String(upper)
	}
	return v
}

func splitColon(s string) (ir.Array, bool) {
	graph, node, ok := strings.Cut(s, ":")
	if !ok || graph == "" || node == "" {
		return nil, false
	}
	return ir.Array{ir.String(graph), ir.String(node)}, true
}

func copyObject(in ir.Object) ir.Object {
	out := make(ir.Object, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func isNull(v ir.Value) bool {
	_, ok := v.(ir.Null)
	return v == nil || ok
}

func kind(v ir.Value) string {
	switch v.(type) {
	case nil, ir.Null:
		return "null"
	case ir.String:
		return "string"
	case ir.Number:
		return "number"
	case ir.Bool:
		return "boolean"
	case ir.Array:
		return "array"
	case ir.Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func display(v ir.Value) string {
	data, err := ir.MarshalValue(v)
	if err != nil {
		return "?"
	}
	return string(data)
}
