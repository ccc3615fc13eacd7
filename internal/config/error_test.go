// internal/config/error_test.go
package config

import (
	"strings"
	"testing"
)

func TestConfigError_Error_Empty(t *testing.T) {
	e := &ConfigError{Path: "/etc/gamarr/config.toml"}
	if got := e.Error(); got != "" {
		t.Errorf("expected empty string for no errors, got %q", got)
	}
	if e.HasErrors() {
		t.Error("expected HasErrors false")
	}
}

func TestConfigError_Error_MissingVars(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/gamarr/config.toml",
		Missing: []string{"QBIT_PASSWORD", "ROMM_PASSWORD"},
	}
	got := e.Error()
	if !strings.Contains(got, "/etc/gamarr/config.toml") {
		t.Errorf("expected path in error, got %q", got)
	}
	if !strings.Contains(got, "missing environment variables") {
		t.Errorf("expected 'missing environment variables', got %q", got)
	}
	if !strings.Contains(got, "QBIT_PASSWORD") || !strings.Contains(got, "ROMM_PASSWORD") {
		t.Errorf("expected var names in error, got %q", got)
	}
}

func TestConfigError_Error_ValidationErrors(t *testing.T) {
	e := &ConfigError{
		Errors: []string{"romm.url: required", "platforms: at least one platform must be configured"},
	}
	got := e.Error()
	if !strings.Contains(got, "validation failed") {
		t.Errorf("expected 'validation failed', got %q", got)
	}
	if !strings.Contains(got, "  - romm.url: required") {
		t.Errorf("expected indented error, got %q", got)
	}
}
