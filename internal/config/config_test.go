package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/rangebook/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rangebook.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, DefaultPath, cfg.Storage.Path)
	assert.Equal(t, "localhost:8080", cfg.ServerAddress())
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log_level = "debug"

storage {
  backend      = "redis"
  redis_addr   = "127.0.0.1:6379"
  redis_db     = 2
  disable_scan = true
}

server {
  address = "0.0.0.0"
  port    = 9000
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, log.DebugLevel, cfg.Level())
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddress())
	assert.Equal(t, storage.Options{
		Backend:     storage.BackendRedis,
		RedisAddr:   "127.0.0.1:6379",
		RedisDB:     2,
		DisableList: true,
	}, cfg.StorageOptions())
}

func TestLoadPartialFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `server { port = 9999 }`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:9999", cfg.ServerAddress())
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestLoadInvalidHCL(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `server {`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `unknown_attr = 1`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "etcd" }},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }},
		{"redis without addr", func(c *Config) { c.Storage.Backend = "redis" }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
