package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/advsearch/internal/migrate"
	"github.com/roach88/advsearch/internal/pipeline"
	"github.com/roach88/advsearch/internal/querytree"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Issues     []querytree.Issue `json:"issues"`
	Migrations []migrate.Change  `json:"migrations,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <payload>",
		Short: "Check a payload without narrating it",
		Long: `Check a query payload against the wire schema and the structural rules.

Warnings are printed but do not fail the command. Any error exits with
status 1; operators are checked only when a catalog is configured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, arg string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	env, err := loadEnvironment(opts, f)
	if err != nil {
		return err
	}
	defer env.Close()

	data, err := readPayload(cmd, arg, f)
	if err != nil {
		return err
	}

	prepared, lint, err := env.pipeline.Validate(cmd.Context(), data)
	if err != nil {
		return pipelineFailure(f, err)
	}

	result := ValidationResult{
		Valid:      lint.Valid,
		Issues:     lint.Issues,
		Migrations: prepared.Migrations.Changes,
	}
	if result.Issues == nil {
		result.Issues = []querytree.Issue{}
	}

	if result.Valid {
		return outputValidateSuccess(f, result)
	}
	return outputValidationErrors(f, result)
}

// outputValidateSuccess outputs a valid payload and any warnings.
func outputValidateSuccess(f *OutputFormatter, result ValidationResult) error {
	if f.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintln(f.Writer, "✓ Payload valid")
	for _, issue := range result.Issues {
		fmt.Fprintf(f.Writer, "  %s\n", issue)
	}
	return nil
}

// outputValidationErrors outputs an invalid payload. Schema violations
// take precedence for the error code.
func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	code := ErrCodeLint
	errs := 0
	for _, issue := range result.Issues {
		if issue.Severity != querytree.SeverityError {
			continue
		}
		errs++
		if issue.Code == pipeline.CodeSchemaViolation {
			code = ErrCodeSchema
		}
	}
	message := fmt.Sprintf("validation failed with %d error(s)", errs)

	if f.Format == "json" {
		if err := f.Failure(code, message, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	fmt.Fprintln(f.Writer, "✗ Validation failed")
	fmt.Fprintln(f.Writer)
	for _, issue := range result.Issues {
		fmt.Fprintf(f.Writer, "  %s\n", issue)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, message)
}
