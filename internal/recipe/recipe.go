package recipe

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/open-pkg-tools/pkgsmith/internal/integrity"
)

// Recipe is one package recipe: the descriptor, its sources, and the
// scripted lifecycle stages the engine will run for it.
type Recipe struct {
	Package     PackageMeta `yaml:"package"`
	Requires    Requires    `yaml:"requires,omitempty"`
	Sources     []Source    `yaml:"sources"`
	Environment Environment `yaml:"environment,omitempty"`
	Build       []string    `yaml:"build,omitempty"`
	Install     []string    `yaml:"install,omitempty"`
	Files       []string    `yaml:"files,omitempty"`
	Changelog   []Change    `yaml:"changelog,omitempty"`

	// Dir is the directory the recipe was loaded from. Relative
	// keyring paths resolve against it.
	Dir string `yaml:"-"`
}

// PackageMeta mirrors the descriptor fields of a classic packaging
// recipe: immutable metadata, never computed.
type PackageMeta struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Release int    `yaml:"release,omitempty"`
	License string `yaml:"license,omitempty"`
	Summary string `yaml:"summary,omitempty"`
	URL     string `yaml:"url,omitempty"`
}

// Requires lists declared dependencies. The engine records them in the
// produced package metadata; it does not resolve them.
type Requires struct {
	Build   []string `yaml:"build,omitempty"`
	Runtime []string `yaml:"runtime,omitempty"`
}

// Source is one upstream artifact to fetch and verify.
type Source struct {
	URL       string `yaml:"url"`
	SHA256    string `yaml:"sha256"`
	Signature string `yaml:"signature,omitempty"`
	Keyring   string `yaml:"keyring,omitempty"`

	// Digest is the parsed form of SHA256, populated at load time.
	Digest integrity.Digest `yaml:"-"`
}

// FileName returns the base name the source is stored under in the
// cache directory.
func (s Source) FileName() string {
	return filepath.Base(s.URL)
}

// Environment is the explicit build environment. Compiler flags are
// recipe configuration, not ambient process state.
type Environment struct {
	CFlags  string            `yaml:"cflags,omitempty"`
	LDFlags string            `yaml:"ldflags,omitempty"`
	Extra   map[string]string `yaml:"extra,omitempty"`
}

// Change is one changelog entry.
type Change struct {
	Date   string `yaml:"date"`
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// NVR renders the name-version-release identifier used for work
// directories and the output artifact.
func (r *Recipe) NVR() string {
	if r.Package.Release > 0 {
		return fmt.Sprintf("%s-%s-%d", r.Package.Name, r.Package.Version, r.Package.Release)
	}
	return fmt.Sprintf("%s-%s", r.Package.Name, r.Package.Version)
}

// Load reads, schema-validates, and semantically validates a recipe
// file. Digest strings are parsed here so a malformed digest fails the
// recipe, not the build.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe %s: %w", path, err)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", path, err)
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing recipe %s: %w", path, err)
	}
	r.Dir = filepath.Dir(path)

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("recipe %s: %w", path, err)
	}
	return &r, nil
}

func (r *Recipe) validate() error {
	if r.Package.Name == "" {
		return fmt.Errorf("package.name is required")
	}
	if r.Package.Version == "" {
		return fmt.Errorf("package.version is required")
	}
	if len(r.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	for i := range r.Sources {
		src := &r.Sources[i]
		if src.URL == "" {
			return fmt.Errorf("sources[%d].url is required", i)
		}
		d, err := integrity.ParseDigest(src.SHA256)
		if err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		src.Digest = d
		if src.Signature != "" && src.Keyring == "" {
			return fmt.Errorf("sources[%d]: signature given without a keyring", i)
		}
	}
	return nil
}

// KeyringPath resolves a source keyring relative to the recipe file.
func (r *Recipe) KeyringPath(src Source) string {
	if src.Keyring == "" || filepath.IsAbs(src.Keyring) {
		return src.Keyring
	}
	return filepath.Join(r.Dir, src.Keyring)
}
