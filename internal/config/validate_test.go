// internal/config/validate_test.go
package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{
		QBittorrent: QBittorrentConfig{URL: "http://localhost:8080"},
		Romm:        RommConfig{URL: "http://localhost:8000", Username: "admin"},
		Platforms: []PlatformConfig{
			{Slug: "pc", Category: "games-pc", LibraryDir: t.TempDir(), Naming: "{title}"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

func containsError(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestValidate_MinimalValid(t *testing.T) {
	errs := validConfig(t).Validate()
	assert.Empty(t, errs, "expected no errors for minimal valid config")
}

func TestValidate_NoPlatforms(t *testing.T) {
	cfg := validConfig(t)
	cfg.Platforms = nil
	errs := cfg.Validate()
	assert.True(t, containsError(errs, "at least one platform"), "expected platform error, got %v", errs)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"qbittorrent url missing", func(c *Config) { c.QBittorrent.URL = "" }, "qbittorrent.url: required"},
		{"qbittorrent url scheme", func(c *Config) { c.QBittorrent.URL = "ftp://host" }, "qbittorrent.url"},
		{"max per run", func(c *Config) { c.QBittorrent.MaxPerRun = -1 }, "qbittorrent.max_per_run"},
		{"romm url", func(c *Config) { c.Romm.URL = "localhost:8000" }, "romm.url"},
		{"romm username", func(c *Config) { c.Romm.Username = "" }, "romm.username"},
		{"websocket url", func(c *Config) { c.Romm.WebsocketURL = "http://localhost" }, "romm.websocket_url"},
		{"min confidence", func(c *Config) { c.Metadata.MinConfidence = -0.1 }, "metadata.min_confidence"},
		{"negative timeout", func(c *Config) { c.Timeouts.Request = -1 }, "timeouts"},
		{"negative interval", func(c *Config) { c.Schedule.Interval = -1 }, "schedule.interval"},
		{"slug", func(c *Config) { c.Platforms[0].Slug = "" }, "platforms[0].slug: required"},
		{"category", func(c *Config) { c.Platforms[0].Category = "" }, "platforms.pc.category: required"},
		{"library dir missing", func(c *Config) { c.Platforms[0].LibraryDir = filepath.Join(t.TempDir(), "nope") }, "does not exist"},
		{"min size", func(c *Config) { c.Platforms[0].MinSizeBytes = -5 }, "platforms.pc.min_size_bytes"},
		{"naming escapes", func(c *Config) { c.Platforms[0].Naming = "../{title}" }, "platforms.pc.naming"},
		{"naming absolute", func(c *Config) { c.Platforms[0].Naming = "/srv/{title}" }, "platforms.pc.naming"},
		{"platform catalog url", func(c *Config) { c.Platforms[0].CatalogURL = "not a url" }, "platforms.pc.catalog_url"},
		{"fragmented bytes", func(c *Config) { c.Audit.FragmentedBytes = -1 }, "audit.fragmented_bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			errs := cfg.Validate()
			assert.True(t, containsError(errs, tt.want), "expected %q in %v", tt.want, errs)
		})
	}
}

func TestValidate_DuplicatePlatforms(t *testing.T) {
	cfg := validConfig(t)
	cfg.Platforms = append(cfg.Platforms, PlatformConfig{Slug: "pc", Category: "games-pc", LibraryDir: t.TempDir()})
	errs := cfg.Validate()
	assert.True(t, containsError(errs, `duplicate platform "pc"`), "got %v", errs)
	assert.True(t, containsError(errs, `"games-pc" already used by pc`), "got %v", errs)
}

func TestConfig_Platform(t *testing.T) {
	cfg := validConfig(t)
	p, ok := cfg.Platform("pc")
	assert.True(t, ok)
	assert.Equal(t, "games-pc", p.Category)

	_, ok = cfg.Platform("amiga")
	assert.False(t, ok)
}
