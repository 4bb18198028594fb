package cfg

import (
	"testing"
	"time"

	"github.com/lysyi3m/mensa-feed/app/mensa"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv("TZ", "UTC")

	cfg, err := parse([]string{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected host '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.UpstreamURL != mensa.DefaultUpstreamURL {
		t.Errorf("Expected default upstream URL, got '%s'", cfg.UpstreamURL)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Expected no fetch timeout, got %v", cfg.Timeout)
	}
	if cfg.SchemaFile != "" || cfg.CanteensDir != "" || cfg.Dump != "" {
		t.Error("Expected optional paths to be empty")
	}
	if cfg.Debug {
		t.Error("Expected debug to be disabled")
	}
}

func TestParse_FlagsAndEnv(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("FETCH_TIMEOUT", "15")
	t.Setenv("UPSTREAM_URL", "http://localhost:9000/%s")

	cfg, err := parse([]string{"--port", "9090", "--debug", "--dump", "mhaste"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port '9090', got '%s'", cfg.Port)
	}
	if cfg.Timeout != 15*time.Second {
		t.Errorf("Expected 15s timeout, got %v", cfg.Timeout)
	}
	if cfg.UpstreamURL != "http://localhost:9000/%s" {
		t.Errorf("Expected upstream URL from env, got '%s'", cfg.UpstreamURL)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Dump != "mhaste" {
		t.Errorf("Expected dump canteen 'mhaste', got '%s'", cfg.Dump)
	}
}

func TestParse_NegativeTimeout(t *testing.T) {
	t.Setenv("TZ", "UTC")

	if _, err := parse([]string{"--fetch-timeout=-1"}); err == nil {
		t.Error("Expected error for negative timeout")
	}
}
