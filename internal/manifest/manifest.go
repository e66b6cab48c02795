package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Expand resolves the recipe's file manifest globs against the build
// root. Patterns use install paths ("/usr/bin/*"); returned entries are
// install paths too, sorted and deduplicated. A directory match pulls
// in everything beneath it. A pattern matching nothing is an error:
// a manifest that names files the install stage never produced is a
// broken recipe.
func Expand(buildRoot string, globs []string) ([]string, error) {
	if len(globs) == 0 {
		return nil, fmt.Errorf("file manifest is empty")
	}

	seen := make(map[string]struct{})
	for _, pattern := range globs {
		rel := strings.TrimPrefix(pattern, "/")
		matches, err := filepath.Glob(filepath.Join(buildRoot, rel))
		if err != nil {
			return nil, fmt.Errorf("bad manifest pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("manifest pattern %q matched no files in build root", pattern)
		}

		for _, m := range matches {
			if err := collect(buildRoot, m, seen); err != nil {
				return nil, err
			}
		}
	}

	entries := make([]string, 0, len(seen))
	for e := range seen {
		entries = append(entries, e)
	}
	sort.Strings(entries)
	return entries, nil
}

func collect(buildRoot, path string, seen map[string]struct{}) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			return addEntry(buildRoot, p, seen)
		})
	}
	return addEntry(buildRoot, path, seen)
}

func addEntry(buildRoot, path string, seen map[string]struct{}) error {
	rel, err := filepath.Rel(buildRoot, path)
	if err != nil {
		return fmt.Errorf("relativizing %s: %w", path, err)
	}
	seen["/"+filepath.ToSlash(rel)] = struct{}{}
	return nil
}
