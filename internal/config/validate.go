// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Schedule.Interval < 0 {
		errs = append(errs, fmt.Sprintf("schedule.interval: must be positive, got %s", c.Schedule.Interval))
	}
	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		errs = append(errs, "log: max_size_mb and max_backups must not be negative")
	}

	errs = append(errs, validateURL("qbittorrent.url", c.QBittorrent.URL)...)
	if c.QBittorrent.MaxPerRun < 0 {
		errs = append(errs, fmt.Sprintf("qbittorrent.max_per_run: must not be negative, got %d", c.QBittorrent.MaxPerRun))
	}

	errs = append(errs, validateURL("romm.url", c.Romm.URL)...)
	if c.Romm.Username == "" {
		errs = append(errs, "romm.username: required")
	}
	if c.Romm.WebsocketURL != "" {
		if u, err := url.Parse(c.Romm.WebsocketURL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			errs = append(errs, fmt.Sprintf("romm.websocket_url: must be a ws:// or wss:// URL, got %q", c.Romm.WebsocketURL))
		}
	}

	errs = append(errs, validateURL("metadata.catalog_url", c.Metadata.CatalogURL)...)
	if c.Metadata.MinConfidence < 0 || c.Metadata.MinConfidence > 1 {
		errs = append(errs, fmt.Sprintf("metadata.min_confidence: must be between 0 and 1, got %g", c.Metadata.MinConfidence))
	}
	if c.Metadata.CacheTTL < 0 {
		errs = append(errs, "metadata.cache_ttl: must not be negative")
	}

	if c.Timeouts.Request < 0 || c.Timeouts.Scan < 0 {
		errs = append(errs, "timeouts: must not be negative")
	}

	if c.Audit.FragmentedBytes < 0 {
		errs = append(errs, fmt.Sprintf("audit.fragmented_bytes: must not be negative, got %d", c.Audit.FragmentedBytes))
	}
	errs = append(errs, c.validatePlatforms()...)
	return errs
}

func (c *Config) validatePlatforms() []string {
	if len(c.Platforms) == 0 {
		return []string{"platforms: at least one platform must be configured"}
	}

	var errs []string
	slugs := make(map[string]bool)
	categories := make(map[string]string)
	for i, p := range c.Platforms {
		key := fmt.Sprintf("platforms[%d]", i)
		if p.Slug != "" {
			key = fmt.Sprintf("platforms.%s", p.Slug)
		}

		switch {
		case p.Slug == "":
			errs = append(errs, key+".slug: required")
		case slugs[p.Slug]:
			errs = append(errs, fmt.Sprintf("%s.slug: duplicate platform %q", key, p.Slug))
		}
		slugs[p.Slug] = true

		switch other, dup := categories[p.Category]; {
		case p.Category == "":
			errs = append(errs, key+".category: required")
		case dup:
			errs = append(errs, fmt.Sprintf("%s.category: %q already used by %s", key, p.Category, other))
		default:
			categories[p.Category] = p.Slug
		}

		if p.LibraryDir == "" {
			errs = append(errs, key+".library_dir: required")
		} else if _, err := os.Stat(p.LibraryDir); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("%s.library_dir: directory %q does not exist", key, p.LibraryDir))
		}

		if p.MinSizeBytes < 0 {
			errs = append(errs, fmt.Sprintf("%s.min_size_bytes: must not be negative, got %d", key, p.MinSizeBytes))
		}
		if filepath.IsAbs(p.Naming) || strings.Contains(p.Naming, "..") {
			errs = append(errs, fmt.Sprintf("%s.naming: must be a relative template, got %q", key, p.Naming))
		}
		if p.CatalogURL != "" {
			errs = append(errs, validateURL(key+".catalog_url", p.CatalogURL)...)
		}
	}
	return errs
}

func validateURL(key, raw string) []string {
	if raw == "" {
		return []string{key + ": required"}
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return []string{fmt.Sprintf("%s: must be an http(s) URL, got %q", key, raw)}
	}
	return nil
}
