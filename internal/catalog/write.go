package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/advsearch/internal/operators"
)

// ImportStats counts the rows written by ImportFixture.
type ImportStats struct {
	Graphs int `json:"graphs"`
	Nodes  int `json:"nodes"`
	Facets int `json:"facets"`
}

// ImportFixture writes f in one transaction. Graphs and facets are
// upserted; the nodes of every imported graph are replaced.
func (s *Store) ImportFixture(ctx context.Context, f *Fixture) (ImportStats, error) {
	var stats ImportStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("import fixture: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, g := range f.Graphs {
		name, err := json.Marshal(g.Name)
		if err != nil {
			return stats, fmt.Errorf("import graph %q: %w", g.Slug, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO graphs (slug, name, description) VALUES (?, ?, ?)
			ON CONFLICT(slug) DO UPDATE SET name = excluded.name, description = excluded.description
		`, g.Slug, string(name), g.Description); err != nil {
			return stats, fmt.Errorf("import graph %q: %w", g.Slug, err)
		}
		stats.Graphs++

		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE graph_slug = ?`, g.Slug); err != nil {
			return stats, fmt.Errorf("import graph %q: clear nodes: %w", g.Slug, err)
		}
		for _, n := range g.Nodes {
			label, err := json.Marshal(n.WidgetLabel)
			if err != nil {
				return stats, fmt.Errorf("import node %s.%s: %w", g.Slug, n.Alias, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO nodes (graph_slug, alias, name, datatype, sortorder, widget_label)
				VALUES (?, ?, ?, ?, ?, ?)
			`, g.Slug, n.Alias, n.Name, n.Datatype, n.SortOrder, string(label)); err != nil {
				return stats, fmt.Errorf("import node %s.%s: %w", g.Slug, n.Alias, err)
			}
			stats.Nodes++
		}
	}

	for _, datatype := range f.Facets.Datatypes() {
		for _, facet := range f.Facets[datatype] {
			if err := upsertFacet(ctx, tx, facet); err != nil {
				return stats, err
			}
			stats.Facets++
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("import fixture: commit: %w", err)
	}

	slog.Info("catalog imported", "graphs", stats.Graphs, "nodes", stats.Nodes, "facets", stats.Facets)
	return stats, nil
}

func upsertFacet(ctx context.Context, tx *sql.Tx, facet operators.Facet) error {
	label, err := json.Marshal(facet.Label)
	if err != nil {
		return fmt.Errorf("import facet %d: %w", facet.ID, err)
	}
	formats := facet.ParamFormats
	if formats == nil {
		formats = []string{}
	}
	params, err := json.Marshal(formats)
	if err != nil {
		return fmt.Errorf("import facet %d: %w", facet.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO facets (id, datatype_id, operator, label, arity, param_formats, sortorder, is_orm_template_negated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			datatype_id = excluded.datatype_id,
			operator = excluded.operator,
			label = excluded.label,
			arity = excluded.arity,
			param_formats = excluded.param_formats,
			sortorder = excluded.sortorder,
			is_orm_template_negated = excluded.is_orm_template_negated
	`,
		facet.ID,
		facet.DatatypeID,
		facet.Operator,
		string(label),
		facet.Arity,
		string(params),
		facet.SortOrder,
		facet.IsORMTemplateNegated,
	)
	if err != nil {
		return fmt.Errorf("import facet %d: %w", facet.ID, err)
	}
	return nil
}
