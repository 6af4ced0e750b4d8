package migrate

import (
	"fmt"

	"github.com/roach88/advsearch/internal/ir"
)

// isLegacyTree reports whether root uses the earlier shape
//
//	{graph_slug, query: {logic, clauses: [{node_alias, datatype, operator, params}], groups}, aggregations}
//
// in which every nested group implicitly shares the root graph.
func isLegacyTree(root ir.Object) bool {
	_, hasQuery := root["query"].(ir.Object)
	_, hasClauses := root["clauses"]
	return hasQuery && !hasClauses
}

func (n *normalizer) fromLegacyTree(root ir.Object) ir.Object {
	graph, _ := root["graph_slug"].(ir.String)
	query := root["query"].(ir.Object)

	out := n.legacyGroup(query, string(graph), "$.query")
	if aggs, ok := root["aggregations"].(ir.Array); ok {
		out["aggregations"] = aggs
	}
	for k, v := range root {
		switch k {
		case "graph_slug", "query", "aggregations":
		default:
			out[k] = v
		}
	}
	n.record("$", RuleLegacyQueryTree, "query tree rewritten as a group on graph %q", string(graph))
	return out
}

func (n *normalizer) legacyGroup(in ir.Object, graph, path string) ir.Object {
	logic, ok := in["logic"].(ir.String)
	if !ok {
		logic = "AND"
	}

	clauses := ir.Array{}
	if raw, ok := in["clauses"].(ir.Array); ok {
		for i, elem := range raw {
			if c, ok := elem.(ir.Object); ok {
				clauses = append(clauses, legacyClause(c, graph))
			} else {
				n.record(fmt.Sprintf("%s.clauses[%d]", path, i), RuleLegacyQueryTree, "non-object clause dropped")
			}
		}
	}

	groups := ir.Array{}
	if raw, ok := in["groups"].(ir.Array); ok {
		for i, elem := range raw {
			if child, ok := elem.(ir.Object); ok {
				groups = append(groups, n.legacyGroup(child, graph, fmt.Sprintf("%s.groups[%d]", path, i)))
			}
		}
	}

	return ir.Object{
		"graph_slug":   ir.String(graph),
		"scope":        ir.String("RESOURCE"),
		"logic":        logic,
		"clauses":      clauses,
		"groups":       groups,
		"aggregations": ir.Array{},
		"relationship": ir.Null{},
	}
}

func legacyClause(c ir.Object, graph string) ir.Object {
	subject := ir.Array{}
	if alias, ok := c["node_alias"].(ir.String); ok && alias != "" {
		subject = ir.Array{ir.Array{ir.String(graph), alias}}
	}

	operator, ok := c["operator"].(ir.String)
	if !ok {
		operator = ""
	}

	operands := ir.Array{}
	if params, ok := c["params"].(ir.Array); ok {
		for _, p := range params {
			operands = append(operands, ir.Object{"type": ir.String("LITERAL"), "value": p})
		}
	}

	return ir.Object{
		"type":       ir.String("LITERAL"),
		"quantifier": ir.String("ANY"),
		"subject":    subject,
		"operator":   operator,
		"operands":   operands,
	}
}
