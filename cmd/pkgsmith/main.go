package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-pkg-tools/pkgsmith/internal/utils/config"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
)

// version is stamped at build time via -ldflags.
var version = "dev"

// Global command flags
var (
	configFile string
	verbose    bool
)

func main() {
	if err := createRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// createRootCommand wires up the CLI
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgsmith",
		Short: "Build OS packages from declarative recipes",
		Long: `pkgsmith reads a YAML recipe describing a third-party source release
(metadata, source URLs with digests, build and install commands, file manifest)
and runs the packaging lifecycle: fetch, verify, prep, build, install, files.
Source archives must pass the integrity gate before any build step reads them.`,
		PersistentPreRunE: setupEnvironment,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to the tool configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	rootCmd.AddCommand(
		createBuildCommand(),
		createFetchCommand(),
		createVerifyCommand(),
		createValidateCommand(),
		createCleanCommand(),
		createVersionCommand(),
	)
	return rootCmd
}

// setupEnvironment loads the global config and initializes logging
// before any subcommand runs.
func setupEnvironment(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadGlobalConfig(configFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	z, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("initializing logger: %v", err)
	}
	logger.Init(z)
	return nil
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pkgsmith version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pkgsmith %s\n", version)
		},
	}
}
