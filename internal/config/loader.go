package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "WIKIBOT_"
)

// LoadWithFile loads configuration from a YAML (or, by extension, TOML)
// file, then overrides with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (WIKIBOT_SERVER_PORT, WIKIBOT_LOOKUP_THRESHOLD, ...)
//  2. YAML or TOML config file
//  3. Hardcoded defaults
//
// An empty configPath means ~/.config/wikibot/config.yaml. A missing file is
// not an error. An existing file must not be group or world writable and
// must be at most 1MB.
//
// # Environment Variable Mapping
//
// The prefix is stripped and the first underscore separates section from
// field:
//
//	WIKIBOT_SERVER_PORT -> server.port
//	WIKIBOT_STORAGE_DATA_DIR -> storage.data_dir
//	WIKIBOT_LOOKUP_MAX_CONCURRENT_IO -> lookup.max_concurrent_io
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	seeds := map[string]interface{}{
		"lookup.threshold":       DefaultThreshold,
		"lookup.mod_threshold":   DefaultModThreshold,
		"server.rate_limit":      DefaultRateLimit,
		"storage.watch_prefixes": true,
	}
	for key, v := range seeds {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("failed to seed defaults: %w", err)
		}
	}

	if configPath == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}

	content, err := readConfigFile(configPath)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if err := k.Load(rawbytes.Provider(content), parserFor(configPath)); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// DefaultPath returns ~/.config/wikibot/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "wikibot", "config.yaml"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir(cfg *Config) error {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", cfg.Storage.DataDir, err)
	}
	return nil
}

// parserFor picks the file parser by extension. Anything but .toml is YAML.
func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOML()
	}
	return yaml.Parser()
}

// envKey maps WIKIBOT_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, found := strings.Cut(lower, "_")
	if !found {
		return lower
	}
	return section + "." + field
}

// readConfigFile returns the file content, or nil when the file does not
// exist. The file is opened once and validated through the descriptor.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return nil, fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	if info.IsDir() {
		return fmt.Errorf("config path is a directory")
	}

	// Skip on Windows (different permission model)
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm&0022 != 0 {
			return fmt.Errorf("insecure config file permissions: %v (must not be group or world writable)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}
