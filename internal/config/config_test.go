package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.DataDir != DefaultDataDir {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, DefaultDataDir)
	}
	if want := filepath.Join(DefaultDataDir, "prefixes.json"); cfg.Storage.PrefixFile != want {
		t.Errorf("Storage.PrefixFile = %q, want %q", cfg.Storage.PrefixFile, want)
	}
	if want := filepath.Join(DefaultDataDir, "recipes.json"); cfg.Storage.CatalogFile != want {
		t.Errorf("Storage.CatalogFile = %q, want %q", cfg.Storage.CatalogFile, want)
	}
	if cfg.Lookup.Threshold != 4 {
		t.Errorf("Lookup.Threshold = %d, want 4", cfg.Lookup.Threshold)
	}
	if cfg.Lookup.ModThreshold != 3 {
		t.Errorf("Lookup.ModThreshold = %d, want 3", cfg.Lookup.ModThreshold)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.RateLimit != DefaultRateLimit || cfg.Server.RateBurst != DefaultRateBurst {
		t.Errorf("Server rate = %v/%d, want %v/%d", cfg.Server.RateLimit, cfg.Server.RateBurst, DefaultRateLimit, DefaultRateBurst)
	}
	if !cfg.Storage.WatchPrefixes {
		t.Error("Storage.WatchPrefixes = false, want true")
	}
	if cfg.Events.NATSURL != "" || cfg.Events.Subject != DefaultEventsSubject {
		t.Errorf("Events = %+v", cfg.Events)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestApplyDefaults_DerivesPathsFromDataDir(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{DataDir: "/var/lib/wikibot"}}
	applyDefaults(cfg)

	if cfg.Storage.PrefixFile != "/var/lib/wikibot/prefixes.json" {
		t.Errorf("PrefixFile = %q", cfg.Storage.PrefixFile)
	}
	if cfg.Storage.CatalogFile != "/var/lib/wikibot/recipes.json" {
		t.Errorf("CatalogFile = %q", cfg.Storage.CatalogFile)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero threshold allowed", func(c *Config) { c.Lookup.Threshold = 0 }, ""},
		{"empty data dir", func(c *Config) { c.Storage.DataDir = "" }, "data_dir"},
		{"negative threshold", func(c *Config) { c.Lookup.Threshold = -1 }, "lookup threshold"},
		{"negative mod threshold", func(c *Config) { c.Lookup.ModThreshold = -2 }, "mod threshold"},
		{"no io slots", func(c *Config) { c.Lookup.MaxConcurrentIO = 0 }, "max_concurrent_io"},
		{"port too low", func(c *Config) { c.Server.Port = 0 }, "server port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server port"},
		{"zero shutdown", func(c *Config) { c.Server.ShutdownTimeout = 0 }, "shutdown timeout"},
		{"rate limit disabled", func(c *Config) { c.Server.RateLimit = 0 }, ""},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }, "rate limit"},
		{"negative burst", func(c *Config) { c.Server.RateBurst = -1 }, "rate limit"},
		{"wildcard subject", func(c *Config) { c.Events.Subject = "wikibot.>" }, "events subject"},
		{"empty subject", func(c *Config) { c.Events.Subject = "" }, "events subject"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Addr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8086}
	if got := s.Addr(); got != "0.0.0.0:8086" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1500ms")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if d.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %v", d.Duration())
	}
	if err := d.UnmarshalText([]byte("-1s")); err == nil {
		t.Error("UnmarshalText(-1s) error = nil, want error")
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("UnmarshalText(soon) error = nil, want error")
	}

	text, err := Duration(2 * time.Second).MarshalText()
	if err != nil || string(text) != "2s" {
		t.Errorf("MarshalText() = %q, %v", text, err)
	}
}
