package harness

import (
	"fmt"
	"slices"
	"strings"
)

// ExpectationError describes one expectation that did not hold.
type ExpectationError struct {
	Field    string // narration, valid, issues or migrations
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ExpectationError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkExpectations compares result against x and records every mismatch.
func checkExpectations(x Expectation, result *Result) {
	for _, err := range compareExpectations(x, result) {
		result.AddError(err.Error())
	}
}

func compareExpectations(x Expectation, result *Result) []*ExpectationError {
	var errs []*ExpectationError

	if x.Narration != nil && *x.Narration != result.Narration {
		errs = append(errs, &ExpectationError{
			Field:    "narration",
			Expected: fmt.Sprintf("%q", *x.Narration),
			Actual:   fmt.Sprintf("%q", result.Narration),
		})
	}
	if x.Valid != nil && *x.Valid != result.Valid {
		errs = append(errs, &ExpectationError{
			Field:    "valid",
			Expected: fmt.Sprint(*x.Valid),
			Actual:   fmt.Sprint(result.Valid),
		})
	}
	if x.Issues != nil && !slices.Equal(x.Issues, result.Issues) {
		errs = append(errs, &ExpectationError{
			Field:    "issues",
			Expected: formatList(x.Issues),
			Actual:   formatList(result.Issues),
		})
	}
	if x.Migrations != nil && !slices.Equal(x.Migrations, result.Migrations) {
		errs = append(errs, &ExpectationError{
			Field:    "migrations",
			Expected: formatList(x.Migrations),
			Actual:   formatList(result.Migrations),
		})
	}
	return errs
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
