// internal/config/load_test.go
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// minimalConfig returns a valid config whose only platform lives in libDir.
func minimalConfig(libDir string) string {
	return `
[qbittorrent]
url = "http://localhost:8080"

[romm]
url = "http://localhost:8000"
username = "admin"

[[platforms]]
slug = "pc"
category = "games-pc"
library_dir = "` + libDir + `"
`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeConfig(t, minimalConfig(tmp)+`
[schedule]
interval = "5m"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule.Interval != 5*time.Minute {
		t.Errorf("expected interval 5m, got %s", cfg.Schedule.Interval)
	}
	if len(cfg.Platforms) != 1 || cfg.Platforms[0].LibraryDir != tmp {
		t.Errorf("expected one platform in %s, got %+v", tmp, cfg.Platforms)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig(t.TempDir())))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Schedule.Interval != 15*time.Minute {
		t.Errorf("expected default interval 15m, got %s", cfg.Schedule.Interval)
	}
	if cfg.Database.Path != "./data/gamarr.db" {
		t.Errorf("expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Metadata.CatalogURL != DefaultCatalogURL {
		t.Errorf("expected default catalog url, got %s", cfg.Metadata.CatalogURL)
	}
	if cfg.Metadata.MinConfidence != 0.8 {
		t.Errorf("expected min confidence 0.8, got %g", cfg.Metadata.MinConfidence)
	}
	if cfg.Metadata.CacheTTL != 24*time.Hour {
		t.Errorf("expected cache ttl 24h, got %s", cfg.Metadata.CacheTTL)
	}
	if cfg.Timeouts.Request != 30*time.Second {
		t.Errorf("expected request timeout 30s, got %s", cfg.Timeouts.Request)
	}
	if cfg.Log.MaxSizeMB != 5 || cfg.Log.MaxBackups != 5 {
		t.Errorf("expected log rotation 5/5, got %d/%d", cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	}
	if cfg.Platforms[0].Naming != "{title}" {
		t.Errorf("expected default naming {title}, got %s", cfg.Platforms[0].Naming)
	}
	if !cfg.QBittorrent.RemoveDownloads() {
		t.Error("expected downloads removed by default")
	}
}

func TestLoad_KeepDownloads(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig(t.TempDir())+`
[cleanup]
remove_empty_dirs = true
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Cleanup.RemoveEmptyDirs {
		t.Error("expected remove_empty_dirs")
	}

	content := strings.Replace(minimalConfig(t.TempDir()), `url = "http://localhost:8080"`, "url = \"http://localhost:8080\"\ndelete_after_processing = false", 1)
	cfg, err = Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.QBittorrent.RemoveDownloads() {
		t.Error("expected delete_after_processing = false to keep downloads")
	}
}

func TestLoad_Audit(t *testing.T) {
	content := minimalConfig(t.TempDir()) + `require_exe = true

[audit]
empty = true
fragmented_bytes = 2048
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Audit.Empty || cfg.Audit.FragmentedBytes != 2048 || cfg.Audit.DangerousFiles {
		t.Errorf("unexpected audit config %+v", cfg.Audit)
	}
	if !cfg.Platforms[0].RequireExe {
		t.Error("expected require_exe on the platform")
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("GAMARR_TEST_MISSING_PASSWORD")
	content := strings.Replace(minimalConfig(t.TempDir()), `url = "http://localhost:8080"`, "url = \"http://localhost:8080\"\npassword = \"${GAMARR_TEST_MISSING_PASSWORD}\"", 1)
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if !strings.Contains(err.Error(), "GAMARR_TEST_MISSING_PASSWORD") {
		t.Errorf("expected var name in error, got %v", err)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	content := minimalConfig(t.TempDir()) + `
[metadata]
min_confidence = 1.5
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("expected error for invalid min_confidence")
	}
	if !strings.Contains(err.Error(), "metadata.min_confidence") {
		t.Errorf("expected metadata.min_confidence in error, got %v", err)
	}
}

func TestLoadWithoutValidation(t *testing.T) {
	cfg, err := LoadWithoutValidation(writeConfig(t, `
[metadata]
min_confidence = 1.5
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Metadata.MinConfidence != 1.5 {
		t.Errorf("expected min_confidence 1.5, got %g", cfg.Metadata.MinConfidence)
	}
}

func TestLoad_EnvVarDefault(t *testing.T) {
	os.Unsetenv("GAMARR_TEST_OPTIONAL_USER")
	content := strings.Replace(minimalConfig(t.TempDir()), `username = "admin"`, `username = "${GAMARR_TEST_OPTIONAL_USER:-romm}"`, 1)

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Romm.Username != "romm" {
		t.Errorf("expected username romm, got %s", cfg.Romm.Username)
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "reading config") {
		t.Errorf("expected read error, got %v", err)
	}
}
