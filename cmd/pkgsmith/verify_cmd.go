package main

import (
	"github.com/spf13/cobra"

	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
)

// createVerifyCommand creates the verify subcommand
func createVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [flags] RECIPE_FILE",
		Short: "Run the integrity gate against cached sources",
		Long: `Verify recomputes the digest of every cached source archive and compares
it against the digest declared in the recipe. A mismatch names the
offending file and exits non-zero. A missing archive is reported as an
I/O failure, not as a mismatch.`,
		Args: cobra.ExactArgs(1),
		RunE: executeVerify,
	}
}

func executeVerify(cmd *cobra.Command, args []string) error {
	run, err := newRun(args[0])
	if err != nil {
		return err
	}
	if err := run.Verify(); err != nil {
		return err
	}
	logger.Logger().Infof("all sources verified for %s", run.Recipe.NVR())
	return nil
}
