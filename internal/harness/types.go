package harness

import "encoding/json"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	Narration   string          `json:"narration"`
	Fingerprint string          `json:"fingerprint"`
	Valid       bool            `json:"valid"`
	Issues      []string        `json:"issues"`     // distinct codes, sorted
	Migrations  []string        `json:"migrations"` // distinct rules, first-seen order
	Payload     json.RawMessage `json:"payload"`    // the tree that was narrated

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Issues:     []string{},
		Migrations: []string{},
		Errors:     []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
