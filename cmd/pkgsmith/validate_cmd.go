package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/open-pkg-tools/pkgsmith/internal/recipe"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
)

// createValidateCommand creates the validate subcommand
func createValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [flags] RECIPE_FILE",
		Short: "Validate a recipe file",
		Long: `Validate checks a recipe file against the recipe schema and the semantic
rules (digest syntax, signature/keyring pairing) without building it.
This allows checking for errors in a recipe before committing to a full
packaging run.`,
		Args: cobra.ExactArgs(1),
		RunE: executeValidate,
	}
}

// executeValidate handles the validate command logic
func executeValidate(cmd *cobra.Command, args []string) error {
	log := logger.Logger()

	recipeFile := args[0]
	log.Infof("validating recipe file: %s", recipeFile)

	r, err := recipe.Load(recipeFile)
	if err != nil {
		return fmt.Errorf("recipe validation failed: %v", err)
	}

	log.Infof("✓ Recipe validation successful for %s", recipeFile)
	log.Infof("Package: %s v%s", r.Package.Name, r.Package.Version)
	log.Infof("Sources: %d declared", len(r.Sources))

	if verbose {
		for _, src := range r.Sources {
			log.Infof("  - %s (%s)", src.FileName(), src.Digest)
		}
		if len(r.Files) > 0 {
			log.Infof("Manifest patterns:")
			for _, g := range r.Files {
				log.Infof("  - %s", g)
			}
		}
	}
	return nil
}
