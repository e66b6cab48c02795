package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GlobalConfig holds tool-level settings shared by every command.
type GlobalConfig struct {
	WorkDir  string `yaml:"workDir"`
	CacheDir string `yaml:"cacheDir"`
	TempDir  string `yaml:"tempDir"`
	Workers  int    `yaml:"workers"`
	Logging  struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// GlConfig is the loaded global configuration. Commands read it after
// LoadGlobalConfig has run.
var GlConfig *GlobalConfig

// DefaultConfig returns the built-in defaults used when no config file
// is given.
func DefaultConfig() *GlobalConfig {
	cfg := &GlobalConfig{
		WorkDir:  "builds",
		CacheDir: "cache",
		Workers:  4,
	}
	cfg.Logging.Level = "info"
	return cfg
}

// LoadGlobalConfig reads the tool configuration from path, applying
// defaults for any missing field. An empty path yields the defaults.
func LoadGlobalConfig(path string) (*GlobalConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	GlConfig = cfg
	return cfg, nil
}
