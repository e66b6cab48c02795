package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func buildRootWith(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return root
}

func TestExpandGlobs(t *testing.T) {
	root := buildRootWith(t, map[string]string{
		"usr/bin/cython":       "bin",
		"usr/bin/cythonize":    "bin",
		"usr/share/doc/README": "doc",
	})

	entries, err := Expand(root, []string{"/usr/bin/*"})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}

	want := []string{"/usr/bin/cython", "/usr/bin/cythonize"}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("entries = %v, want %v", entries, want)
	}
}

func TestExpandDirectoryRecurses(t *testing.T) {
	root := buildRootWith(t, map[string]string{
		"usr/lib/python3/site-packages/Cython/__init__.py":      "",
		"usr/lib/python3/site-packages/Cython/Compiler/Main.py": "",
	})

	entries, err := Expand(root, []string{"/usr/lib/python3"})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %v", entries)
	}
}

func TestExpandDeduplicates(t *testing.T) {
	root := buildRootWith(t, map[string]string{
		"usr/bin/cython": "bin",
	})

	entries, err := Expand(root, []string{"/usr/bin/*", "/usr/bin/cython"})
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected deduplicated entries, got %v", entries)
	}
}

func TestExpandUnmatchedPatternFails(t *testing.T) {
	root := buildRootWith(t, map[string]string{
		"usr/bin/cython": "bin",
	})

	if _, err := Expand(root, []string{"/usr/sbin/*"}); err == nil {
		t.Error("pattern matching nothing should fail")
	}
}

func TestExpandEmptyManifestFails(t *testing.T) {
	if _, err := Expand(t.TempDir(), nil); err == nil {
		t.Error("empty manifest should fail")
	}
}
