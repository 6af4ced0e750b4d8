package cli

import (
	"github.com/spf13/cobra"
)

// NewNarrateCommand creates the narrate command.
func NewNarrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "narrate <payload>",
		Short: "Describe a payload in plain language",
		Long: `Migrate, check and decode a query payload, then print its narration.

Labels come from the configured catalog (--catalog or --db). Without one the
narration uses graph slugs, node aliases and raw operator tokens.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNarrate(rootOpts, args[0], cmd)
		},
	}
}

func runNarrate(opts *RootOptions, arg string, cmd *cobra.Command) error {
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

	res, err := env.pipeline.Narrate(cmd.Context(), data)
	if err != nil {
		return pipelineFailure(f, err)
	}

	for _, c := range res.Migrations {
		f.VerboseLog("migrated: %s", c)
	}
	for _, issue := range res.Issues {
		f.VerboseLog("%s", issue)
	}

	if f.Format == "json" {
		return f.Success(res)
	}
	return f.Success(res.Narration)
}
