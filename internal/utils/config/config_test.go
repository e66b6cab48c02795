package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.WorkDir != "builds" {
		t.Errorf("WorkDir = %q, want builds", cfg.WorkDir)
	}
	if cfg.CacheDir != "cache" {
		t.Errorf("CacheDir = %q, want cache", cfg.CacheDir)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadGlobalConfig(t *testing.T) {
	content := `workDir: /tmp/pkgsmith/work
cacheDir: /tmp/pkgsmith/cache
workers: 8
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("LoadGlobalConfig failed: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if GlConfig != cfg {
		t.Error("LoadGlobalConfig should publish GlConfig")
	}
}

func TestLoadGlobalConfigDefaultsOnEmptyPath(t *testing.T) {
	cfg, err := LoadGlobalConfig("")
	if err != nil {
		t.Fatalf("LoadGlobalConfig failed: %v", err)
	}
	if cfg.Workers != 4 || cfg.Logging.Level != "info" {
		t.Errorf("empty path should yield defaults, got %+v", cfg)
	}
}

func TestLoadGlobalConfigClampsWorkers(t *testing.T) {
	content := "workers: -2\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		t.Fatalf("LoadGlobalConfig failed: %v", err)
	}
	if cfg.Workers != 4 {
		t.Errorf("non-positive workers should fall back to 4, got %d", cfg.Workers)
	}
}

func TestLoadGlobalConfigMissingFile(t *testing.T) {
	if _, err := LoadGlobalConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing config file should fail")
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	helpers := NewConfigHelpers(cfg)

	if !helpers.IsDebugMode() {
		t.Error("IsDebugMode should be true for debug level")
	}
	if helpers.Workers() != 4 {
		t.Errorf("Workers = %d, want 4", helpers.Workers())
	}
	if helpers.TempDir() != os.TempDir() {
		t.Errorf("empty TempDir should fall back to os.TempDir")
	}

	cacheDir, err := helpers.CacheDir()
	if err != nil {
		t.Fatalf("CacheDir failed: %v", err)
	}
	if !filepath.IsAbs(cacheDir) {
		t.Errorf("CacheDir should be absolute, got %s", cacheDir)
	}
}
