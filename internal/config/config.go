// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqsig.
//
// go-pqsig is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads the pqsig command line configuration from YAML and
// the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/jeremyhahn/go-pqsig/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Storage backend names
const (
	StorageFile   = "file"
	StorageMemory = "memory"
)

// Environment variables applied on top of the file
const (
	EnvAlgorithm       = "PQSIG_ALGORITHM"
	EnvFormat          = "PQSIG_FORMAT"
	EnvPicnicMechanism = "PQSIG_PICNIC_MECHANISM"
	EnvLogLevel        = "PQSIG_LOG_LEVEL"
	EnvLogFormat       = "PQSIG_LOG_FORMAT"
	EnvStorageBackend  = "PQSIG_STORAGE_BACKEND"
	EnvStoragePath     = "PQSIG_STORAGE_PATH"
	EnvMetricsEnabled  = "PQSIG_METRICS_ENABLED"
	EnvMetricsFile     = "PQSIG_METRICS_FILE"
)

// Config represents the complete configuration
type Config struct {
	Algorithm AlgorithmConfig `yaml:"algorithm"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AlgorithmConfig selects key generation and serialization defaults
type AlgorithmConfig struct {
	Default string `yaml:"default"`
	Format  string `yaml:"format"` // der, cbor

	// PicnicMechanism overrides the liboqs mechanism backing picnic-default.
	// liboqs removed Picnic in 0.8.0 and liboqs-go tracks current releases,
	// so picnic_L1_FS is only found in liboqs 0.7.x builds. The value must
	// name a mechanism the linked liboqs enables, otherwise picnic-default
	// is reported unavailable.
	PicnicMechanism string `yaml:"picnic_mechanism,omitempty"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text
}

// StorageConfig controls where keys are kept
type StorageConfig struct {
	Backend string `yaml:"backend"` // file, memory
	Path    string `yaml:"path"`
}

// MetricsConfig toggles prometheus collection
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`

	// File receives the collected metrics in Prometheus text format when a
	// command finishes, for the node_exporter textfile collector. "-"
	// writes to stderr. Setting it turns collection on.
	File string `yaml:"file,omitempty"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Algorithm: AlgorithmConfig{
			Default: "ml-dsa-65",
			Format:  pkey.FormatDER.String(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend: StorageFile,
			Path:    DefaultKeyDir(),
		},
	}
}

// DefaultKeyDir returns $HOME/.pqsig/keys, or .pqsig/keys when the home
// directory cannot be determined
func DefaultKeyDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".pqsig", "keys")
	}
	return filepath.Join(home, ".pqsig", "keys")
}

// Load reads configuration from a YAML file over the defaults and applies
// environment variable overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// #nosec G304 - Config file path is provided by the user
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvAlgorithm); v != "" {
		cfg.Algorithm.Default = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Algorithm.Format = v
	}
	if v := os.Getenv(EnvPicnicMechanism); v != "" {
		cfg.Algorithm.PicnicMechanism = v
	}

	// Logging
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}

	// Storage
	if v := os.Getenv(EnvStorageBackend); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv(EnvStoragePath); v != "" {
		cfg.Storage.Path = v
	}

	// Metrics
	if v := os.Getenv(EnvMetricsEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("Warning: invalid %s value %q, using %t: %v",
				EnvMetricsEnabled, v, cfg.Metrics.Enabled, err)
		} else {
			cfg.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvMetricsFile); v != "" {
		cfg.Metrics.File = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validation.ValidateAlgorithmName(c.Algorithm.Default); err != nil {
		return fmt.Errorf("invalid default algorithm: %w", err)
	}
	if _, err := pkey.ParseFormat(c.Algorithm.Format); err != nil {
		return fmt.Errorf("invalid key format: %w", err)
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the file backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be file or memory)", c.Storage.Backend)
	}
	return nil
}

// KeyFormat returns the parsed record format
func (c *Config) KeyFormat() pkey.Format {
	f, err := pkey.ParseFormat(c.Algorithm.Format)
	if err != nil {
		return pkey.FormatDER
	}
	return f
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() logger.Level {
	l, err := logger.ParseLevel(c.Logging.Level)
	if err != nil {
		return logger.LevelInfo
	}
	return l
}
