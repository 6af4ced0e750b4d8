package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/advsearch/internal/builder"
	"github.com/roach88/advsearch/internal/catalog"
	"github.com/roach88/advsearch/internal/pipeline"
	"github.com/roach88/advsearch/internal/querytree"
	"github.com/roach88/advsearch/internal/schema"
	"github.com/roach88/advsearch/internal/testutil"
)

// Harness holds the pipeline a scenario runs through.
type Harness struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// New builds a harness for scenario: the shared test catalog (unless the
// scenario opts out), the wire schema and the scenario's language.
func New(scenario *Scenario) (*Harness, error) {
	lang := scenario.Language
	if lang == "" {
		lang = "en"
	}
	langs := catalog.Languages{Preferred: lang, Default: "en"}

	s, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	p := &pipeline.Pipeline{Schema: s, Languages: langs}

	if !scenario.WithoutCatalog {
		src := testutil.Memory()
		labels, err := catalog.NewCachedLabels(src, 64, langs)
		if err != nil {
			return nil, err
		}
		p.Source = src
		p.Labels = labels
	}

	return &Harness{
		pipeline: p,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}, nil
}

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Migrate, schema-check and decode the payload
//  2. Apply edits through a builder.Editor
//  3. Narrate and lint the edited tree
//  4. Check the scenario's expectations
//
// An error means the scenario could not run at all; failed expectations
// are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	h, err := New(scenario)
	if err != nil {
		return nil, err
	}
	return h.Run(context.Background(), scenario)
}

// Run executes scenario with h's pipeline.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	prepared, err := h.pipeline.Prepare([]byte(scenario.Payload))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Migrations = prepared.Migrations.Rules()

	payload := []byte(prepared.Payload)
	if len(scenario.Edits) > 0 {
		edited, err := h.applyEdits(prepared.Group, scenario.Edits)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		if payload, err = querytree.Marshal(edited); err != nil {
			return nil, fmt.Errorf("scenario %s: encode edited tree: %w", scenario.Name, err)
		}
	}

	narrated, err := h.pipeline.Narrate(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result.Narration = narrated.Narration
	result.Fingerprint = narrated.Fingerprint
	result.Valid = narrated.Valid
	result.Issues = issueCodes(narrated.Issues)
	result.Payload = json.RawMessage(payload)

	h.logger.Debug("scenario narrated",
		"scenario", scenario.Name,
		"narration", result.Narration,
		"issues", len(narrated.Issues),
	)

	checkExpectations(scenario.Expect, result)
	return result, nil
}

// applyEdits runs edits in order on an editor over g.
func (h *Harness) applyEdits(g querytree.Group, edits []Edit) (querytree.Group, error) {
	root := builder.NewEditor(g)

	for i, e := range edits {
		ed := root
		for _, idx := range e.Group {
			ed = ed.Child(idx)
		}
		if _, ok := ed.Group(); !ok {
			return querytree.Group{}, fmt.Errorf("edits[%d]: group %v does not exist", i, e.Group)
		}

		switch e.Op {
		case OpSetGraph:
			ed.SetGraphSlug(e.Value)
		case OpSetScope:
			ed.SetScope(querytree.Scope(e.Value))
		case OpToggleLogic:
			ed.ToggleLogic()
		case OpAddGroup:
			ed.AddChildGroup()
		case OpRemoveGroup:
			ed.RemoveChildGroup(e.Index)
		case OpAddClause:
			ed.AddEmptyLiteralClause()
		case OpRemoveClause:
			ed.RemoveClause(e.Index)
		case OpSetClause:
			var c querytree.Clause
			if err := decodeWire(e.Clause, &c); err != nil {
				return querytree.Group{}, fmt.Errorf("edits[%d].clause: %w", i, err)
			}
			ed.SetClause(e.Index, c)
		case OpAddRelationship:
			ed.AddRelationshipIfMissing()
		case OpClearRelationship:
			ed.ClearRelationshipIfPresent()
		case OpSetRelationship:
			var rel *querytree.Relationship
			if e.Relationship != nil {
				rel = &querytree.Relationship{}
				if err := decodeWire(e.Relationship, rel); err != nil {
					return querytree.Group{}, fmt.Errorf("edits[%d].relationship: %w", i, err)
				}
			}
			ed.SetRelationship(rel)
		default:
			return querytree.Group{}, fmt.Errorf("edits[%d]: unknown op %q", i, e.Op)
		}
		h.logger.Debug("edit applied", "index", i, "op", e.Op, "group", e.Group)
	}

	return root.Root(), nil
}

// decodeWire round-trips a YAML mapping through the JSON wire codec.
func decodeWire(in map[string]any, dst json.Unmarshaler) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return dst.UnmarshalJSON(data)
}

// issueCodes returns the distinct codes of issues, sorted.
func issueCodes(issues []querytree.Issue) []string {
	codes := make([]string, 0, len(issues))
	for _, issue := range issues {
		codes = append(codes, issue.Code)
	}
	slices.Sort(codes)
	return slices.Compact(codes)
}
