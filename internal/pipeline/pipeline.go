// Package pipeline runs a raw payload through every stage the server and
// CLI share: migrate, schema check, decode, lint, narrate and fingerprint.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/advsearch/internal/catalog"
	"github.com/roach88/advsearch/internal/migrate"
	"github.com/roach88/advsearch/internal/narrate"
	"github.com/roach88/advsearch/internal/querytree"
	"github.com/roach88/advsearch/internal/schema"
)

// CodeSchemaViolation marks schema violations merged into lint issues.
const CodeSchemaViolation = "S001"

// Stage names reported in StageError.
const (
	StageMigrate = "migrate"
	StageSchema  = "schema"
	StageDecode  = "decode"
	StageCatalog = "catalog"
)

// StageError is a failure that stops the pipeline.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage of err, or "" if err did not come
// from the pipeline.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// Pipeline holds the collaborators shared across requests. Every field
// is optional: without a Source narration falls back to slugs and
// aliases, and without a Schema the schema stage is skipped.
type Pipeline struct {
	Source    catalog.Source
	Schema    *schema.Schema
	Labels    *catalog.CachedLabels
	Languages catalog.Languages
	Phrase    narrate.PhraseFunc
}

// Prepared is a payload after migration, schema check and decoding.
type Prepared struct {
	Group      querytree.Group
	Payload    json.RawMessage
	Migrations migrate.Report
	Violations []schema.Violation
}

// Result is the outcome of Narrate.
type Result struct {
	Narration   string            `json:"narration"`
	Fingerprint string            `json:"fingerprint"`
	Valid       bool              `json:"valid"`
	Issues      []querytree.Issue `json:"issues"`
	Migrations  []migrate.Change  `json:"migrations"`
}

// Prepare migrates, schema-checks and decodes data. Schema violations are
// returned, not raised: drafts still decode and narrate.
func (p *Pipeline) Prepare(data []byte) (*Prepared, error) {
	normalized, report, err := migrate.NormalizeJSON(data)
	if err != nil {
		return nil, &StageError{Stage: StageMigrate, Err: err}
	}
	if report.Changed() {
		slog.Debug("payload migrated", "rules", report.Rules(), "changes", len(report.Changes))
	}

	violations := []schema.Violation{}
	if p.Schema != nil {
		violations, err = p.Schema.Validate(normalized)
		if err != nil {
			return nil, &StageError{Stage: StageSchema, Err: err}
		}
	}

	g, err := querytree.Unmarshal(normalized)
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Err: err}
	}

	return &Prepared{
		Group:      g,
		Payload:    normalized,
		Migrations: report,
		Violations: violations,
	}, nil
}

// Config assembles the narration config for g from the catalog.
func (p *Pipeline) Config(ctx context.Context, g querytree.Group) (narrate.Config, error) {
	if p.Source == nil {
		return narrate.Config{Phrase: p.Phrase}, nil
	}
	cfg, err := catalog.NarrationConfig(ctx, p.Source, g, catalog.NarrationOptions{
		Languages: p.Languages,
		Phrase:    p.Phrase,
		Labels:    p.Labels,
	})
	if err != nil {
		return narrate.Config{}, &StageError{Stage: StageCatalog, Err: err}
	}
	return cfg, nil
}

// Lint validates g, checking operators against the catalog when one is
// configured, and merges schema violations in as error issues.
func (p *Pipeline) Lint(prepared *Prepared, cfg narrate.Config) querytree.ValidationResult {
	var opts querytree.Options
	if p.Source != nil {
		opts.Operators = cfg.OperatorLabels
	}
	result := querytree.Validate(prepared.Group, opts)

	for _, v := range prepared.Violations {
		result.Issues = append(result.Issues, querytree.Issue{
			Code:     CodeSchemaViolation,
			Severity: querytree.SeverityError,
			Path:     v.Path,
			Message:  v.Message,
		})
		result.Valid = false
	}
	return result
}

// Narrate runs every stage and describes the payload.
func (p *Pipeline) Narrate(ctx context.Context, data []byte) (*Result, error) {
	prepared, err := p.Prepare(data)
	if err != nil {
		return nil, err
	}
	cfg, err := p.Config(ctx, prepared.Group)
	if err != nil {
		return nil, err
	}

	fingerprint, err := querytree.Fingerprint(prepared.Group)
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Err: err}
	}

	lint := p.Lint(prepared, cfg)
	return &Result{
		Narration:   narrate.New(cfg).DescribeQuery(prepared.Group),
		Fingerprint: fingerprint,
		Valid:       lint.Valid,
		Issues:      lint.Issues,
		Migrations:  prepared.Migrations.Changes,
	}, nil
}

// Validate runs every stage except narration.
func (p *Pipeline) Validate(ctx context.Context, data []byte) (*Prepared, querytree.ValidationResult, error) {
	prepared, err := p.Prepare(data)
	if err != nil {
		return nil, querytree.ValidationResult{}, err
	}
	cfg, err := p.Config(ctx, prepared.Group)
	if err != nil {
		return nil, querytree.ValidationResult{}, err
	}
	return prepared, p.Lint(prepared, cfg), nil
}
