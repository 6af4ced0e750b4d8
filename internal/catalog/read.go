package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/advsearch/internal/operators"
	"github.com/roach88/advsearch/internal/querytree"
)

// Graphs returns every graph ordered by slug.
func (s *Store) Graphs(ctx context.Context) ([]Graph, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, description
		FROM graphs
		ORDER BY slug COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query graphs: %w", err)
	}
	defer rows.Close()

	graphs := []Graph{}
	for rows.Next() {
		g, err := scanGraph(rows)
		if err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate graphs: %w", err)
	}
	return graphs, nil
}

// Graph returns one graph or ErrNotFound.
func (s *Store) Graph(ctx context.Context, slug string) (Graph, error) {
	row := s.db.QueryRowContext(ctx, `SELECT slug, name, description FROM graphs WHERE slug = ?`, slug)
	g, err := scanGraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Graph{}, ErrNotFound
	}
	return g, err
}

// Nodes returns the nodes of graph ordered by sortorder, name, alias.
func (s *Store) Nodes(ctx context.Context, graph string) ([]Node, error) {
	if _, err := s.Graph(ctx, graph); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT graph_slug, alias, name, datatype, sortorder, widget_label
		FROM nodes
		WHERE graph_slug = ?
		ORDER BY sortorder ASC, name COLLATE BINARY ASC, alias COLLATE BINARY ASC
	`, graph)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []Node{}
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

// LookupNodes fetches the nodes among segs in one query per graph.
func (s *Store) LookupNodes(ctx context.Context, segs []querytree.Segment) (map[querytree.Segment]Node, error) {
	byGraph := map[string][]any{}
	var order []string
	for _, seg := range segs {
		if _, ok := byGraph[seg.Graph]; !ok {
			order = append(order, seg.Graph)
		}
		byGraph[seg.Graph] = append(byGraph[seg.Graph], seg.Node)
	}

	out := make(map[querytree.Segment]Node, len(segs))
	for _, graph := range order {
		aliases := byGraph[graph]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(aliases)), ",")
		args := append([]any{graph}, aliases...)

		rows, err := s.db.QueryContext(ctx, `
			SELECT graph_slug, alias, name, datatype, sortorder, widget_label
			FROM nodes
			WHERE graph_slug = ? AND alias IN (`+placeholders+`)
		`, args...)
		if err != nil {
			return nil, fmt.Errorf("lookup nodes in %q: %w", graph, err)
		}
		for rows.Next() {
			n, err := scanNode(rows)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out[n.Segment()] = n
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate nodes in %q: %w", graph, err)
		}
	}
	return out, nil
}

// Facets returns every facet keyed by datatype, each list in sortorder.
func (s *Store) Facets(ctx context.Context) (operators.FacetsByDatatype, error) {
	facets, err := s.queryFacets(ctx, `
		SELECT id, datatype_id, operator, label, arity, param_formats, sortorder, is_orm_template_negated
		FROM facets
		ORDER BY datatype_id COLLATE BINARY ASC, sortorder ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}

	out := operators.FacetsByDatatype{}
	for _, f := range facets {
		out[f.DatatypeID] = append(out[f.DatatypeID], f)
	}
	return out, nil
}

func (s *Store) queryFacets(ctx context.Context, query string, args ...any) ([]operators.Facet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facets: %w", err)
	}
	defer rows.Close()

	facets := []operators.Facet{}
	for rows.Next() {
		var (
			f      operators.Facet
			label  string
			params string
		)
		if err := rows.Scan(&f.ID, &f.DatatypeID, &f.Operator, &label, &f.Arity, &params, &f.SortOrder, &f.IsORMTemplateNegated); err != nil {
			return nil, fmt.Errorf("scan facet: %w", err)
		}
		if err := json.Unmarshal([]byte(label), &f.Label); err != nil {
			return nil, fmt.Errorf("facet %d label: %w", f.ID, err)
		}
		if err := json.Unmarshal([]byte(params), &f.ParamFormats); err != nil {
			return nil, fmt.Errorf("facet %d param_formats: %w", f.ID, err)
		}
		if f.ParamFormats == nil {
			f.ParamFormats = []string{}
		}
		facets = append(facets, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate facets: %w", err)
	}
	return facets, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGraph(row scanner) (Graph, error) {
	var (
		g    Graph
		name string
	)
	if err := row.Scan(&g.Slug, &name, &g.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Graph{}, err
		}
		return Graph{}, fmt.Errorf("scan graph: %w", err)
	}
	if err := json.Unmarshal([]byte(name), &g.Name); err != nil {
		return Graph{}, fmt.Errorf("graph %q name: %w", g.Slug, err)
	}
	return g, nil
}

func scanNode(row scanner) (Node, error) {
	var (
		n     Node
		label string
	)
	if err := row.Scan(&n.Graph, &n.Alias, &n.Name, &n.Datatype, &n.SortOrder, &label); err != nil {
		return Node{}, fmt.Errorf("scan node: %w", err)
	}
	if err := json.Unmarshal([]byte(label), &n.WidgetLabel); err != nil {
		return Node{}, fmt.Errorf("node %s.%s widget label: %w", n.Graph, n.Alias, err)
	}
	return n, nil
}
