package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/advsearch/internal/pipeline"
	"github.com/roach88/advsearch/internal/querytree"
)

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <payload>",
		Short: "Print the content hash of a payload",
		Long: `Print the SHA-256 fingerprint of a payload's canonical form.

The payload is migrated first, so a historical payload and its current
equivalent share a fingerprint. Key order and number spelling do not
affect the result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFingerprint(rootOpts, args[0], cmd)
		},
	}
}

func runFingerprint(opts *RootOptions, arg string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	data, err := readPayload(cmd, arg, f)
	if err != nil {
		return err
	}

	// Fingerprints never depend on the catalog or the schema.
	prepared, err := (&pipeline.Pipeline{}).Prepare(data)
	if err != nil {
		return pipelineFailure(f, err)
	}
	sum, err := querytree.Fingerprint(prepared.Group)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeDecode, err.Error(), nil)
	}

	if f.Format == "json" {
		return f.Success(map[string]string{"fingerprint": sum})
	}
	return f.Success(sum)
}
