package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/pebble", cfg.Pebble.Path)
	assert.Equal(t, "DoD 5220.22-M", cfg.Wipe.DefaultMethod)
	assert.Contains(t, cfg.Wipe.AllowedMethods, "Gutmann Method")
	assert.Equal(t, 3, cfg.Wipe.AppendRetries)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9090
wipe:
  default_method: "NIST 800-88 Purge"
  allowed_methods:
    - "NIST 800-88 Purge"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "NIST 800-88 Purge", cfg.Wipe.DefaultMethod)
	assert.Equal(t, []string{"NIST 800-88 Purge"}, cfg.Wipe.AllowedMethods)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("WIPE_DEFAULT_METHOD", "Gutmann Method")
	t.Setenv("WIPE_ALLOWED_METHODS", "Gutmann Method, NIST 800-88 Purge")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "Gutmann Method", cfg.Wipe.DefaultMethod)
	assert.Equal(t, []string{"Gutmann Method", "NIST 800-88 Purge"}, cfg.Wipe.AllowedMethods)
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
