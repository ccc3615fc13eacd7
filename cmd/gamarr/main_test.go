package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTestConfig writes a valid config using a temp database and library.
func writeTestConfig(t *testing.T, catalogURL string) string {
	t.Helper()
	dir := t.TempDir()
	libDir := filepath.Join(dir, "library")
	require.NoError(t, os.MkdirAll(libDir, 0o755))

	content := `
[database]
path = "` + filepath.Join(dir, "data", "gamarr.db") + `"

[log]
level = "error"

[qbittorrent]
url = "http://127.0.0.1:1"

[romm]
url = "http://127.0.0.1:1"
username = "admin"

[metadata]
catalog_url = "` + catalogURL + `"

[[platforms]]
slug = "pc"
category = "games-pc"
library_dir = "` + libDir + `"
`
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gamarr dev\n", out)
}

func TestConfigInit_WritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gamarr", "config.toml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)
	assert.FileExists(t, path)

	_, err = execute(t, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, err = execute(t, "config", "init", "--force", path)
	require.NoError(t, err)
}

func TestConfigCheck_ReportsMissingEnv(t *testing.T) {
	t.Setenv("QBIT_PASSWORD", "")
	t.Setenv("ROMM_PASSWORD", "")
	_ = os.Unsetenv("QBIT_PASSWORD")
	_ = os.Unsetenv("ROMM_PASSWORD")

	path := filepath.Join(t.TempDir(), "config.toml")
	_, err := execute(t, "config", "init", path)
	require.NoError(t, err)

	out, err := execute(t, "config", "check", path)
	require.Error(t, err)
	assert.Equal(t, "configuration invalid", err.Error())
	assert.Contains(t, out, "Missing environment variables:")
	assert.Contains(t, out, "QBIT_PASSWORD")
}

func TestConfigCheck_Valid(t *testing.T) {
	path := writeTestConfig(t, "http://127.0.0.1:1/catalog")

	out, err := execute(t, "--config", path, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration valid!")
	assert.Contains(t, out, "games-pc")
}

func TestConfigCheck_ValidationErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[qbittorrent]
url = "http://localhost:8080"

[romm]
url = "http://localhost:8000"
`), 0o644))

	out, err := execute(t, "config", "check", path)
	require.Error(t, err)
	assert.Contains(t, out, "Validation errors:")
	assert.Contains(t, out, "romm.username: required")
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "slug": "awesome_game", "title": "Awesome Game"},
			{"id": 2, "slug": "zork_nemesis", "title": "Zork Nemesis"}
		]`))
	}))
	defer srv.Close()

	path := writeTestConfig(t, srv.URL)

	out, err := execute(t, "--config", path, "resolve", "Awesome.Game.v1.2-RELEASEGRP")
	require.NoError(t, err)
	assert.Contains(t, out, "Parsed:   Awesome Game")
	assert.Contains(t, out, "Group:    RELEASEGRP")
	assert.Contains(t, out, "Version:  v1.2")
	assert.Contains(t, out, "awesome_game")
	assert.NotContains(t, out, "zork_nemesis")
}

func TestResolve_UnknownPlatform(t *testing.T) {
	path := writeTestConfig(t, "http://127.0.0.1:1/catalog")

	_, err := execute(t, "--config", path, "resolve", "-p", "snes", "Some.Game")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `platform "snes" not configured`)
}

func TestHistory_Empty(t *testing.T) {
	path := writeTestConfig(t, "http://127.0.0.1:1/catalog")

	out, err := execute(t, "--config", path, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No imports recorded")
}

func TestCachePrune_Empty(t *testing.T) {
	path := writeTestConfig(t, "http://127.0.0.1:1/catalog")

	out, err := execute(t, "--config", path, "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Pruned 0 expired entries")
}
