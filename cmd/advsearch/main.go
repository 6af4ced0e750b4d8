// Command advsearch builds, migrates, validates and narrates advanced
// search payloads, and serves the catalog over HTTP.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roach88/advsearch/internal/cli"
)

func main() {
	// A missing .env is fine; ADVSEARCH_* may come from the environment.
	_ = godotenv.Load()

	err := cli.NewRootCommand().Execute()
	if err != nil {
		// ExitErrors have already been reported by the command.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
