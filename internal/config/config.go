// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultCatalogURL is the GOG catalog used when none is configured.
const DefaultCatalogURL = "https://gog-games.to/api/web/all-games"

// Config is the root configuration structure.
type Config struct {
	Schedule    ScheduleConfig    `toml:"schedule"`
	Database    DatabaseConfig    `toml:"database"`
	Log         LogConfig         `toml:"log"`
	QBittorrent QBittorrentConfig `toml:"qbittorrent"`
	Romm        RommConfig        `toml:"romm"`
	Metadata    MetadataConfig    `toml:"metadata"`
	Timeouts    TimeoutsConfig    `toml:"timeouts"`
	Cleanup     CleanupConfig     `toml:"cleanup"`
	Audit       AuditConfig       `toml:"audit"`
	Platforms   []PlatformConfig  `toml:"platforms"`
}

type ScheduleConfig struct {
	Interval  time.Duration `toml:"interval"`
	OnStartup bool          `toml:"on_startup"`
	LockFile  string        `toml:"lock_file"` // Defaults to gamarr.lock next to the database
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Path       string `toml:"path"` // Empty logs to stdout only
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type QBittorrentConfig struct {
	URL                   string `toml:"url"`
	Username              string `toml:"username"`
	Password              string `toml:"password"`
	MaxPerRun             int    `toml:"max_per_run"` // Zero means unlimited
	DeleteAfterProcessing *bool  `toml:"delete_after_processing"`
}

// RemoveDownloads reports whether processed torrents are removed from the client.
func (c QBittorrentConfig) RemoveDownloads() bool {
	return c.DeleteAfterProcessing == nil || *c.DeleteAfterProcessing
}

type RommConfig struct {
	URL             string `toml:"url"`
	Username        string `toml:"username"`
	Password        string `toml:"password"`
	WebsocketURL    string `toml:"websocket_url"` // Derived from url when empty
	ScanAfterImport bool   `toml:"scan_after_import"`
}

type MetadataConfig struct {
	CatalogURL    string        `toml:"catalog_url"`
	CacheTTL      time.Duration `toml:"cache_ttl"`
	MinConfidence float64       `toml:"min_confidence"`
}

type TimeoutsConfig struct {
	Request time.Duration `toml:"request"`
	Scan    time.Duration `toml:"scan"`
}

type CleanupConfig struct {
	RemoveExtras    bool     `toml:"remove_extras"`
	ExtrasPatterns  []string `toml:"extras_patterns"`
	RemoveTextFiles bool     `toml:"remove_text_files"`
	RemoveEmptyDirs bool     `toml:"remove_empty_dirs"`
	DeleteReplaced  bool     `toml:"delete_replaced"`
}

// AuditConfig enables report-only checks on library entries that changed.
type AuditConfig struct {
	Empty           bool  `toml:"empty"`
	FragmentedBytes int64 `toml:"fragmented_bytes"` // Zero disables
	DangerousFiles  bool  `toml:"dangerous_files"`
}

type PlatformConfig struct {
	Slug         string `toml:"slug"`
	Category     string `toml:"category"` // qBittorrent category holding this platform's downloads
	LibraryDir   string `toml:"library_dir"`
	MinSizeBytes int64  `toml:"min_size_bytes"`
	Naming       string `toml:"naming"`
	CatalogURL   string `toml:"catalog_url"` // Overrides metadata.catalog_url
	RequireExe   bool   `toml:"require_exe"` // Audit games without an .exe
}

// Platform returns the platform with the given slug.
func (c *Config) Platform(slug string) (PlatformConfig, bool) {
	for _, p := range c.Platforms {
		if p.Slug == slug {
			return p, true
		}
	}
	return PlatformConfig{}, false
}

// Load reads, parses and validates the configuration file.
// Returns a *ConfigError for unresolved environment variables or validation failures.
func Load(path string) (*Config, error) {
	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigError{Path: path, Errors: errs}
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file and applies
// defaults, skipping validation.
func LoadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = 15 * time.Minute
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/gamarr.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 5
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Metadata.CatalogURL == "" {
		c.Metadata.CatalogURL = DefaultCatalogURL
	}
	if c.Metadata.CacheTTL == 0 {
		c.Metadata.CacheTTL = 24 * time.Hour
	}
	if c.Metadata.MinConfidence == 0 {
		c.Metadata.MinConfidence = 0.8
	}
	if c.Timeouts.Request == 0 {
		c.Timeouts.Request = 30 * time.Second
	}
	if c.Timeouts.Scan == 0 {
		c.Timeouts.Scan = 2 * time.Hour
	}
	for i := range c.Platforms {
		if c.Platforms[i].Naming == "" {
			c.Platforms[i].Naming = "{title}"
		}
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars expands environment references in content.
// Unresolved references are left in place and reported in missing.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	seen := make(map[string]bool)
	report := func(msg string) {
		if !seen[msg] {
			seen[msg] = true
			missing = append(missing, msg)
		}
	}

	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if ok && value != "" {
				return value
			}
			return arg
		case ":?":
			if ok && value != "" {
				return value
			}
			report(name + ": " + arg)
			return match
		default:
			if ok {
				return value
			}
			report(name)
			return match
		}
	})
	return out, missing
}
