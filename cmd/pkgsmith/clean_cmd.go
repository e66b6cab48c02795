package main

import (
	"github.com/spf13/cobra"
)

// createCleanCommand creates the clean subcommand
func createCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [flags] RECIPE_FILE",
		Short: "Remove the recipe's work directory",
		Long: `Clean removes the per-package work area (unpacked sources, build root,
produced artifacts). Downloaded sources in the cache directory are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: executeClean,
	}
}

func executeClean(cmd *cobra.Command, args []string) error {
	run, err := newRun(args[0])
	if err != nil {
		return err
	}
	return run.Clean()
}
