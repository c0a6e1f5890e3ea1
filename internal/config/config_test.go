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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jeremyhahn/go-pqsig/pkg/adapters/logger"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ml-dsa-65", cfg.Algorithm.Default)
	assert.Equal(t, pkey.FormatDER, cfg.KeyFormat())
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel())
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_Success(t *testing.T) {
	path := writeConfig(t, `
algorithm:
  default: "ed25519-dilithium2"
  format: "cbor"
  picnic_mechanism: "picnic_L1_full"

logging:
  level: "debug"
  format: "json"

storage:
  backend: "file"
  path: "/data/pqsig"

metrics:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ed25519-dilithium2", cfg.Algorithm.Default)
	assert.Equal(t, pkey.FormatCBOR, cfg.KeyFormat())
	assert.Equal(t, "picnic_L1_full", cfg.Algorithm.PicnicMechanism)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/data/pqsig", cfg.Storage.Path)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: "warn"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, logger.LevelWarn, cfg.LogLevel())
	assert.Equal(t, "ml-dsa-65", cfg.Algorithm.Default)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Algorithm, cfg.Algorithm)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "algorithm: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "algorithm:\n  format: xml\n"))
	assert.ErrorContains(t, err, "invalid key format")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAlgorithm, "ml-dsa-87")
	t.Setenv(EnvFormat, "cbor")
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvStorageBackend, StorageMemory)
	t.Setenv(EnvStoragePath, "/tmp/override")
	t.Setenv(EnvMetricsEnabled, "true")
	t.Setenv(EnvPicnicMechanism, "picnic3_L1")
	t.Setenv(EnvMetricsFile, "/tmp/pqsig.prom")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ml-dsa-87", cfg.Algorithm.Default)
	assert.Equal(t, pkey.FormatCBOR, cfg.KeyFormat())
	assert.Equal(t, logger.LevelError, cfg.LogLevel())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/override", cfg.Storage.Path)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "picnic3_L1", cfg.Algorithm.PicnicMechanism)
	assert.Equal(t, "/tmp/pqsig.prom", cfg.Metrics.File)
}

func TestLoad_InvalidMetricsEnvIgnored(t *testing.T) {
	t.Setenv(EnvMetricsEnabled, "sometimes")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad algorithm", func(c *Config) { c.Algorithm.Default = "ML DSA" }},
		{"empty algorithm", func(c *Config) { c.Algorithm.Default = "" }},
		{"bad format", func(c *Config) { c.Algorithm.Format = "pem" }},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "console" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "s3" }},
		{"file without path", func(c *Config) { c.Storage.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Storage.Backend = StorageMemory
	cfg.Storage.Path = ""
	assert.NoError(t, cfg.Validate())
}
