package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/advsearch/internal/catalog"
	"github.com/roach88/advsearch/internal/config"
	"github.com/roach88/advsearch/internal/pipeline"
	"github.com/roach88/advsearch/internal/schema"
)

// environment is the loaded configuration plus the pipeline built from it.
type environment struct {
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	store    *catalog.Store
}

// Close releases the catalog database, if one was opened.
func (e *environment) Close() error {
	return e.store.Close()
}

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// loadEnvironment reads configuration (file, env, flags) and assembles a
// pipeline. The catalog is optional: without one narration falls back to
// slugs and aliases.
func loadEnvironment(opts *RootOptions, f *OutputFormatter) (*environment, error) {
	cfg, err := config.Load(opts.viper, opts.ConfigPath)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	s, err := schema.New()
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	phrase, err := cfg.Narration.Phrase()
	if err != nil {
		return nil, f.fail(ExitCommandError, codeForPath(err), err.Error(), nil)
	}

	env := &environment{
		cfg: cfg,
		pipeline: &pipeline.Pipeline{
			Schema:    s,
			Languages: cfg.Narration.Languages(),
			Phrase:    phrase,
		},
	}

	src, store, err := openSource(cfg.Catalog)
	if err != nil {
		return nil, f.fail(ExitCommandError, codeForPath(err), err.Error(), nil)
	}
	if src == nil {
		return env, nil
	}
	env.store = store

	labels, err := catalog.NewCachedLabels(src, cfg.Catalog.CacheSize, env.pipeline.Languages)
	if err != nil {
		_ = store.Close()
		return nil, f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	env.pipeline.Source = src
	env.pipeline.Labels = labels

	f.VerboseLog("catalog: db=%q fixture=%q", cfg.Catalog.DB, cfg.Catalog.Fixture)
	return env, nil
}

// openSource opens the SQLite catalog when one is configured, else the
// YAML fixture. Both empty means no catalog.
func openSource(c config.CatalogConfig) (catalog.Source, *catalog.Store, error) {
	switch {
	case c.DB != "":
		if _, err := os.Stat(c.DB); err != nil {
			return nil, nil, fmt.Errorf("catalog database %s: %w", c.DB, err)
		}
		store, err := catalog.Open(c.DB)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case c.Fixture != "":
		mem, err := catalog.MemoryFromFile(c.Fixture)
		if err != nil {
			return nil, nil, err
		}
		return mem, nil, nil
	default:
		return nil, nil, nil
	}
}

// readPayload reads the payload named by arg; "-" reads stdin.
func readPayload(cmd *cobra.Command, arg string, f *OutputFormatter) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if arg == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, f.fail(ExitCommandError, codeForPath(err), fmt.Sprintf("read payload: %v", err), nil)
	}
	return data, nil
}

// codeForPath reports E005 for missing files and E001 otherwise.
func codeForPath(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrCodeNotFound
	}
	return ErrCodeGeneric
}

// pipelineFailure reports a pipeline error with the code of its stage.
func pipelineFailure(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	switch pipeline.StageOf(err) {
	case pipeline.StageMigrate, pipeline.StageDecode:
		code = ErrCodeDecode
	case pipeline.StageSchema:
		code = ErrCodeSchema
	}
	return f.fail(ExitCommandError, code, err.Error(), nil)
}
