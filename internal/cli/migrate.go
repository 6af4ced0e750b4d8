package cli

import (
	"bytes"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/advsearch/internal/migrate"
)

// MigrateResult is the json output of the migrate command.
type MigrateResult struct {
	Payload    json.RawMessage  `json:"payload"`
	Migrations []migrate.Change `json:"migrations"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <payload>",
		Short: "Rewrite a historical payload into the current shape",
		Long: `Rewrite deprecated payload shapes (colon paths, relationship aliases,
quantifier aliases, the legacy query tree, missing fields) into the
current wire shape and print the result.

No catalog is needed. With --verbose every rewrite is listed on stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, args[0], cmd)
		},
	}
}

func runMigrate(opts *RootOptions, arg string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	data, err := readPayload(cmd, arg, f)
	if err != nil {
		return err
	}

	normalized, report, err := migrate.NormalizeJSON(data)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeDecode, err.Error(), nil)
	}
	for _, c := range report.Changes {
		f.VerboseLog("%s", c)
	}

	if f.Format == "json" {
		changes := report.Changes
		if changes == nil {
			changes = []migrate.Change{}
		}
		return f.Success(MigrateResult{Payload: normalized, Migrations: changes})
	}

	var out bytes.Buffer
	if err := json.Indent(&out, normalized, "", "  "); err != nil {
		return f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return f.Success(out.String())
}
