// Package config provides configuration loading for wikibot.
//
// Values come from hardcoded defaults, an optional YAML file and
// WIKIBOT_-prefixed environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the complete wikibot configuration.
type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Lookup  LookupConfig  `koanf:"lookup"`
	Server  ServerConfig  `koanf:"server"`
	Events  EventsConfig  `koanf:"events"`
	Logging LoggingConfig `koanf:"logging"`
}

// StorageConfig locates the persisted state.
type StorageConfig struct {
	// DataDir holds the per-guild dictionary files.
	DataDir     string `koanf:"data_dir"`
	PrefixFile  string `koanf:"prefix_file"`
	CatalogFile string `koanf:"catalog_file"`
	// WatchPrefixes reloads the prefix table when it is edited on disk.
	WatchPrefixes bool `koanf:"watch_prefixes"`
}

// LookupConfig tunes approximate matching.
type LookupConfig struct {
	Threshold       int `koanf:"threshold"`
	ModThreshold    int `koanf:"mod_threshold"`
	MaxConcurrentIO int `koanf:"max_concurrent_io"`
}

// ServerConfig holds admin HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// RateLimit is requests per second per client on /api/v1; 0 disables.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// EventsConfig controls change notifications over NATS. Publishing is
// disabled when NATSURL is empty.
type EventsConfig struct {
	NATSURL string `koanf:"nats_url"`
	Subject string `koanf:"subject"`
}

// LoggingConfig is the flat, file-facing subset of the logging options.
type LoggingConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	File            string `koanf:"file"`
	DisableSampling bool   `koanf:"disable_sampling"`
}

const (
	DefaultDataDir         = "data"
	DefaultThreshold       = 4
	DefaultModThreshold    = 3
	DefaultMaxConcurrentIO = 8
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8086
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimit       = 20
	DefaultRateBurst       = 40
	DefaultEventsSubject   = "wikibot"

	prefixFileName  = "prefixes.json"
	catalogFileName = "recipes.json"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Lookup: LookupConfig{
			Threshold:    DefaultThreshold,
			ModThreshold: DefaultModThreshold,
		},
		Storage: StorageConfig{WatchPrefixes: true},
		Server:  ServerConfig{RateLimit: DefaultRateLimit},
	}
	applyDefaults(cfg)
	return cfg
}

// Validate validates the configuration.
//
// Returns an error if:
//   - the data directory is empty
//   - a threshold is negative
//   - the I/O bound is below 1
//   - the server port is not between 1 and 65535
//   - the shutdown timeout is not positive
//   - the rate limit or burst is negative
//   - the events subject is not a plain NATS subject
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}
	if c.Lookup.Threshold < 0 {
		return fmt.Errorf("invalid lookup threshold: %d (must be >= 0)", c.Lookup.Threshold)
	}
	if c.Lookup.ModThreshold < 0 {
		return fmt.Errorf("invalid mod threshold: %d (must be >= 0)", c.Lookup.ModThreshold)
	}
	if c.Lookup.MaxConcurrentIO < 1 {
		return fmt.Errorf("invalid max_concurrent_io: %d (must be >= 1)", c.Lookup.MaxConcurrentIO)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("invalid rate limit %v/%d (must be >= 0)", c.Server.RateLimit, c.Server.RateBurst)
	}
	if c.Events.Subject == "" || strings.ContainsAny(c.Events.Subject, " \t*>") {
		return fmt.Errorf("invalid events subject %q", c.Events.Subject)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q (must be json or console)", c.Logging.Format)
	}
	return nil
}

// Addr returns the listen address of the admin server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = DefaultDataDir
	}
	if cfg.Storage.PrefixFile == "" {
		cfg.Storage.PrefixFile = filepath.Join(cfg.Storage.DataDir, prefixFileName)
	}
	if cfg.Storage.CatalogFile == "" {
		cfg.Storage.CatalogFile = filepath.Join(cfg.Storage.DataDir, catalogFileName)
	}

	// Thresholds, rate_limit and watch_prefixes are seeded before unmarshal:
	// their zero values are legal.
	if cfg.Lookup.MaxConcurrentIO == 0 {
		cfg.Lookup.MaxConcurrentIO = DefaultMaxConcurrentIO
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = DefaultRateBurst
	}

	if cfg.Events.Subject == "" {
		cfg.Events.Subject = DefaultEventsSubject
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
