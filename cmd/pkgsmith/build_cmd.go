package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-pkg-tools/pkgsmith/internal/lifecycle"
	"github.com/open-pkg-tools/pkgsmith/internal/recipe"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/config"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
)

var keepWorkDir bool

// createBuildCommand creates the build subcommand
func createBuildCommand() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build [flags] RECIPE_FILE",
		Short: "Run the full packaging lifecycle for a recipe",
		Long: `Build fetches the recipe's sources, verifies each archive against its
declared digest, unpacks the verified archives, runs the build and install
commands, and assembles the package artifact from the file manifest.
The run stops at the first failing stage with a non-zero exit code; a
digest mismatch aborts before any build command executes.`,
		Args: cobra.ExactArgs(1),
		RunE: executeBuild,
	}

	buildCmd.Flags().BoolVar(&keepWorkDir, "keep-workdir", false,
		"Keep the work directory after a successful build")
	return buildCmd
}

// executeBuild handles the build command execution logic
func executeBuild(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	run, err := newRun(args[0])
	if err != nil {
		return err
	}

	artifact, err := run.Execute()
	if err != nil {
		return err
	}

	if !keepWorkDir {
		// the artifact lives in the work dir; keep it, drop the scratch trees
		log.Debugf("removing scratch dirs under %s", run.WorkDir)
		_ = os.RemoveAll(run.SourceDir)
		_ = os.RemoveAll(run.BuildRoot)
	}

	fmt.Fprintln(cmd.OutOrStdout(), artifact)
	return nil
}

// newRun loads a recipe and prepares a lifecycle run for it.
func newRun(recipePath string) (*lifecycle.Run, error) {
	r, err := recipe.Load(recipePath)
	if err != nil {
		return nil, err
	}
	return lifecycle.NewRun(r, config.GlConfig)
}
