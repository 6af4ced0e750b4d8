package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/roach88/advsearch/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and narration HTTP API",
		Long: `Serve the HTTP API over the configured catalog until interrupted.

A catalog is required (--catalog, --db, or catalog.* in the config file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = rootOpts.viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	env, err := loadEnvironment(opts, f)
	if err != nil {
		return err
	}
	defer env.Close()

	if env.pipeline.Source == nil {
		return f.fail(ExitCommandError, ErrCodeGeneric, "no catalog configured: set --catalog or --db", nil)
	}

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := server.New(env.pipeline)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if labels := env.pipeline.Labels; labels != nil {
		n, err := labels.WarmAll(ctx)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		slog.Info("label cache warmed", "nodes", n, "cached", labels.Len())
	}

	if err := srv.Run(ctx, env.cfg.Server.Addr); err != nil {
		return f.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return nil
}
