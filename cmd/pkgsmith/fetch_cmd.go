package main

import (
	"github.com/spf13/cobra"
)

// createFetchCommand creates the fetch subcommand
func createFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [flags] RECIPE_FILE",
		Short: "Download the recipe's sources into the cache",
		Long: `Fetch downloads every source archive declared by the recipe into the
cache directory. Archives already cached and passing the integrity gate
are not downloaded again.`,
		Args: cobra.ExactArgs(1),
		RunE: executeFetch,
	}
}

func executeFetch(cmd *cobra.Command, args []string) error {
	run, err := newRun(args[0])
	if err != nil {
		return err
	}
	return run.Fetch()
}
