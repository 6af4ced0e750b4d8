package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a narration conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Language is the preferred label language. Defaults to "en".
	Language string `yaml:"language,omitempty"`

	// WithoutCatalog narrates with no catalog at all.
	WithoutCatalog bool `yaml:"without_catalog,omitempty"`

	// Payload is the raw JSON payload, in any shape migrate accepts.
	Payload string `yaml:"payload"`

	// Edits are builder operations applied after the payload is decoded.
	Edits []Edit `yaml:"edits,omitempty"`

	// Expect holds what the pipeline must produce.
	Expect Expectation `yaml:"expect"`
}

// Edit is one builder operation.
type Edit struct {
	// Op is the operation; see the Op* constants.
	Op string `yaml:"op"`

	// Group addresses the target group by child indices from the root.
	Group []int `yaml:"group,omitempty"`

	// Index selects a clause or child group (remove_*, set_clause).
	Index int `yaml:"index,omitempty"`

	// Value is the argument of set_graph and set_scope.
	Value string `yaml:"value,omitempty"`

	// Clause is the wire-shape clause for set_clause.
	Clause map[string]any `yaml:"clause,omitempty"`

	// Relationship is the wire-shape relationship for set_relationship.
	// Null clears it.
	Relationship map[string]any `yaml:"relationship,omitempty"`
}

// Edit operations.
const (
	OpSetGraph          = "set_graph"
	OpSetScope          = "set_scope"
	OpToggleLogic       = "toggle_logic"
	OpAddGroup          = "add_group"
	OpRemoveGroup       = "remove_group"
	OpAddClause         = "add_clause"
	OpRemoveClause      = "remove_clause"
	OpSetClause         = "set_clause"
	OpAddRelationship   = "add_relationship"
	OpClearRelationship = "clear_relationship"
	OpSetRelationship   = "set_relationship"
)

var knownOps = map[string]bool{
	OpSetGraph: true, OpSetScope: true, OpToggleLogic: true,
	OpAddGroup: true, OpRemoveGroup: true,
	OpAddClause: true, OpRemoveClause: true, OpSetClause: true,
	OpAddRelationship: true, OpClearRelationship: true, OpSetRelationship: true,
}

// Expectation specifies the expected pipeline outcome. Nil fields are
// not checked.
type Expectation struct {
	// Narration is compared exactly.
	Narration *string `yaml:"narration,omitempty"`

	// Valid is the expected lint outcome.
	Valid *bool `yaml:"valid,omitempty"`

	// Issues are the distinct issue codes, sorted.
	Issues []string `yaml:"issues,omitempty"`

	// Migrations are the distinct migration rules in first-seen order.
	Migrations []string `yaml:"migrations,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "edit:" vs "edits:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Payload == "" {
		return fmt.Errorf("payload is required")
	}

	for i, e := range s.Edits {
		if err := validateEdit(i, &e); err != nil {
			return err
		}
	}

	x := s.Expect
	if x.Narration == nil && x.Valid == nil && x.Issues == nil && x.Migrations == nil {
		return fmt.Errorf("expect must check at least one of narration, valid, issues, migrations")
	}
	return nil
}

// validateEdit validates a single edit based on its op.
func validateEdit(index int, e *Edit) error {
	if e.Op == "" {
		return fmt.Errorf("edits[%d]: op is required", index)
	}
	if !knownOps[e.Op] {
		return fmt.Errorf("edits[%d]: unknown op %q", index, e.Op)
	}

	switch e.Op {
	case OpSetGraph, OpSetScope:
		if e.Value == "" {
			return fmt.Errorf("edits[%d]: value is required for %s", index, e.Op)
		}
	case OpSetClause:
		if e.Clause == nil {
			return fmt.Errorf("edits[%d]: clause is required for set_clause", index)
		}
	}
	if e.Index < 0 {
		return fmt.Errorf("edits[%d]: index must be non-negative", index)
	}
	return nil
}
