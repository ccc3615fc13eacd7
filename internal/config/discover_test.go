package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path := DefaultPath()
	assert.Contains(t, path, filepath.Join(".config", "gamarr", "config.toml"))
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	assert.Equal(t, "/custom/config/gamarr/config.toml", DefaultPath())
}

func TestDiscover_Explicit(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[schedule]"), 0o644))
	t.Setenv(EnvConfigPath, "/ignored/when/explicit.toml")

	path, err := Discover(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)

	_, err = Discover(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestDiscover_EnvVar(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[schedule]"), 0o644))
	t.Setenv(EnvConfigPath, cfgPath)

	path, err := Discover("")
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)
}

func TestDiscover_EnvVarNotFound(t *testing.T) {
	t.Setenv(EnvConfigPath, "/nonexistent/config.toml")

	_, err := Discover("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvConfigPath)
}

func TestDiscover_CurrentDir(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "config.toml"), []byte("[schedule]"), 0o644))
	t.Chdir(tmp)

	path, err := Discover("")
	require.NoError(t, err)
	assert.Equal(t, "config.toml", filepath.Base(path))
}

func TestDiscover_NotFound(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/xdg")
	t.Chdir(t.TempDir())

	_, err := Discover("")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "config not found")
}
