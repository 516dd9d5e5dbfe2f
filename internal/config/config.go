// Package config holds pailang configuration, loaded from YAML with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all pailang settings.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Registry RegistryConfig `yaml:"registry"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// RegistryConfig selects and locates the token registry backend.
type RegistryConfig struct {
	// Backend is one of json, sqlite, memory.
	Backend string `yaml:"backend"`
	// Path locates the registry file or database. Ignored for memory.
	Path string `yaml:"path"`
	// Watch reloads a json-backed registry when the file changes on disk.
	Watch bool `yaml:"watch"`
}

// LoggingConfig controls the zap logger built by the CLI.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Name:    "pailang",
		Version: "1.0.0",
		Registry: RegistryConfig{
			Backend: BackendJSON,
			Path:    ".pailang/registry.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. A missing file is not an error: defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays PAILANG_* environment variables onto the config.
func (c *Config) applyEnv() {
	if v := os.Getenv("PAILANG_REGISTRY_BACKEND"); v != "" {
		c.Registry.Backend = v
	}
	if v := os.Getenv("PAILANG_REGISTRY_PATH"); v != "" {
		c.Registry.Path = v
	}
	if v := os.Getenv("PAILANG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks backend and level names.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Registry.Backend) {
	case BackendJSON, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown registry backend %q", c.Registry.Backend)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
