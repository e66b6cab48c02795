package lifecycle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/open-pkg-tools/pkgsmith/internal/extract"
	"github.com/open-pkg-tools/pkgsmith/internal/fetcher"
	"github.com/open-pkg-tools/pkgsmith/internal/integrity"
	"github.com/open-pkg-tools/pkgsmith/internal/manifest"
	"github.com/open-pkg-tools/pkgsmith/internal/recipe"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/config"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/logger"
	"github.com/open-pkg-tools/pkgsmith/internal/utils/shell"
)

// Stage names in their fixed execution order.
const (
	StageFetch   = "fetch"
	StageVerify  = "verify"
	StagePrep    = "prep"
	StageBuild   = "build"
	StageInstall = "install"
	StageFiles   = "files"
	StageClean   = "clean"
)

// Run is one packaging run for one recipe. Stages execute strictly
// sequentially; the first failure aborts the run.
type Run struct {
	Recipe *recipe.Recipe

	// ID identifies this run in logs and in the produced metadata.
	ID string

	CacheDir  string // downloaded sources
	WorkDir   string // per-package scratch area
	SourceDir string // unpacked source trees
	BuildRoot string // staging root the install stage populates

	workers int
}

// NewRun lays out the directory structure for a packaging run.
func NewRun(r *recipe.Recipe, cfg *config.GlobalConfig) (*Run, error) {
	helpers := config.NewConfigHelpers(cfg)

	cacheDir, err := helpers.CacheDir()
	if err != nil {
		return nil, fmt.Errorf("resolving cache directory: %w", err)
	}
	workBase, err := helpers.WorkDir()
	if err != nil {
		return nil, fmt.Errorf("resolving work directory: %w", err)
	}

	workDir := filepath.Join(workBase, r.NVR())
	return &Run{
		Recipe:    r,
		ID:        uuid.NewString(),
		CacheDir:  cacheDir,
		WorkDir:   workDir,
		SourceDir: filepath.Join(workDir, "src"),
		BuildRoot: filepath.Join(workDir, "buildroot"),
		workers:   helpers.Workers(),
	}, nil
}

// Fetch downloads all recipe sources into the cache.
func (run *Run) Fetch() error {
	log := logger.Logger()
	log.Infof("fetching %d source(s) for %s", len(run.Recipe.Sources), run.Recipe.NVR())
	return fetcher.FetchSources(run.Recipe.Sources, run.CacheDir, run.workers)
}

// Verify is the integrity gate. Every source archive must hash to its
// declared digest before anything downstream may read it; sources that
// declare a detached signature are checked against their keyring too.
// On mismatch the returned error names the offending file and the
// caller aborts the run.
func (run *Run) Verify() error {
	log := logger.Logger()

	for _, src := range run.Recipe.Sources {
		archive := filepath.Join(run.CacheDir, src.FileName())
		if err := integrity.VerifyFile(archive, src.Digest); err != nil {
			return err
		}
		log.Infof("verified %s (%s)", src.FileName(), src.Digest)

		if src.Signature != "" {
			sigPath, err := fetcher.FetchFile(src.Signature, run.CacheDir)
			if err != nil {
				return fmt.Errorf("fetching signature for %s: %w", src.FileName(), err)
			}
			if err := integrity.VerifyDetachedSignature(archive, sigPath, run.Recipe.KeyringPath(src)); err != nil {
				return err
			}
			log.Infof("verified signature for %s", src.FileName())
		}
	}
	return nil
}

// Prep unpacks the verified archives into the source directory.
func (run *Run) Prep() error {
	if err := os.MkdirAll(run.SourceDir, 0755); err != nil {
		return fmt.Errorf("creating source directory %s: %w", run.SourceDir, err)
	}
	for _, src := range run.Recipe.Sources {
		archive := filepath.Join(run.CacheDir, src.FileName())
		if err := extract.Extract(archive, run.SourceDir); err != nil {
			return err
		}
	}
	return nil
}

// Build runs the recipe's build commands in the unpacked source tree.
func (run *Run) Build() error {
	return run.runStage(StageBuild, run.Recipe.Build, run.buildDir())
}

// Install runs the recipe's install commands, which populate the build
// root via the BUILDROOT environment variable.
func (run *Run) Install() error {
	if err := os.MkdirAll(run.BuildRoot, 0755); err != nil {
		return fmt.Errorf("creating build root %s: %w", run.BuildRoot, err)
	}
	return run.runStage(StageInstall, run.Recipe.Install, run.buildDir())
}

// Files expands the manifest against the build root and assembles the
// final package artifact. Returns the artifact path.
func (run *Run) Files() (string, error) {
	log := logger.Logger()

	entries, err := manifest.Expand(run.BuildRoot, run.Recipe.Files)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", StageFiles, err)
	}
	log.Infof("manifest matched %d file(s)", len(entries))

	artifact := filepath.Join(run.WorkDir, run.Recipe.NVR()+".pkg.tar.zst")
	if err := manifest.WritePackage(artifact, run.BuildRoot, entries, manifest.Metadata{
		Package:   run.Recipe.Package,
		Requires:  run.Recipe.Requires,
		Changelog: run.Recipe.Changelog,
		BuildID:   run.ID,
		Files:     entries,
	}); err != nil {
		return "", fmt.Errorf("stage %s: %w", StageFiles, err)
	}
	return artifact, nil
}

// Clean removes the per-package work area. Cached downloads survive.
func (run *Run) Clean() error {
	logger.Logger().Infof("removing %s", run.WorkDir)
	return os.RemoveAll(run.WorkDir)
}

// Execute runs the full lifecycle and returns the artifact path.
func (run *Run) Execute() (string, error) {
	log := logger.Logger()
	log.Infof("packaging run %s for %s", run.ID, run.Recipe.NVR())

	if err := run.Fetch(); err != nil {
		return "", err
	}
	if err := run.Verify(); err != nil {
		return "", err
	}
	if err := run.Prep(); err != nil {
		return "", err
	}
	if err := run.Build(); err != nil {
		return "", err
	}
	if err := run.Install(); err != nil {
		return "", err
	}
	artifact, err := run.Files()
	if err != nil {
		return "", err
	}
	log.Infof("package written to %s", artifact)
	return artifact, nil
}

// buildDir returns the directory build/install commands run in. When
// the archive unpacked a single top-level directory, as release
// tarballs usually do, commands start there.
func (run *Run) buildDir() string {
	entries, err := os.ReadDir(run.SourceDir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return run.SourceDir
	}
	return filepath.Join(run.SourceDir, entries[0].Name())
}

func (run *Run) runStage(stage string, commands []string, dir string) error {
	log := logger.Logger()
	env := run.environ()

	for _, cmdStr := range commands {
		log.Infof("[%s] %s", stage, cmdStr)
		if _, err := shell.ExecCmdWithStream(cmdStr, dir, env); err != nil {
			return &ToolError{
				Stage:    stage,
				Command:  cmdStr,
				ExitCode: shell.ExitCode(err),
				Err:      err,
			}
		}
	}
	return nil
}

// environ assembles the explicit stage environment. Compiler flags come
// from the recipe, never from the calling process.
func (run *Run) environ() []string {
	r := run.Recipe
	env := []string{
		"PKG_NAME=" + r.Package.Name,
		"PKG_VERSION=" + r.Package.Version,
		"BUILDROOT=" + run.BuildRoot,
		"SOURCE_DIR=" + run.SourceDir,
		"CFLAGS=" + r.Environment.CFlags,
		"LDFLAGS=" + r.Environment.LDFlags,
	}
	for k, v := range r.Environment.Extra {
		env = append(env, k+"="+v)
	}
	return env
}
