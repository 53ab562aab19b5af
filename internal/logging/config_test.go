package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fyrsmithlabs/wikibot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfig_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, zapcore.InfoLevel, cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.True(t, cfg.Output.Stdout)
	assert.Empty(t, cfg.Output.File)
	assert.True(t, cfg.Sampling.Enabled)
	assert.Equal(t, time.Second, cfg.Sampling.Tick.Duration())
	assert.True(t, cfg.Caller.Enabled)
	assert.Equal(t, 1, cfg.Caller.Skip)
	assert.Equal(t, zapcore.ErrorLevel, cfg.Stacktrace.Level)
	assert.Equal(t, "wikibot", cfg.Fields["service"])
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid default config",
			config:  NewDefaultConfig(),
			wantErr: false,
		},
		{
			name: "file only output",
			config: &Config{
				Format: "console",
				Output: OutputConfig{File: "/tmp/wikibot.log"},
			},
			wantErr: false,
		},
		{
			name: "invalid format",
			config: &Config{
				Level:  zapcore.InfoLevel,
				Format: "xml",
			},
			wantErr: true,
			errMsg:  "format must be 'json' or 'console'",
		},
		{
			name: "no output enabled",
			config: &Config{
				Level:  zapcore.InfoLevel,
				Format: "json",
				Output: OutputConfig{Stdout: false},
			},
			wantErr: true,
			errMsg:  "at least one output must be enabled",
		},
		{
			name: "invalid sampling tick",
			config: &Config{
				Level:  zapcore.InfoLevel,
				Format: "json",
				Output: OutputConfig{Stdout: true},
				Sampling: SamplingConfig{
					Enabled: true,
					Tick:    config.Duration(0),
				},
			},
			wantErr: true,
			errMsg:  "sampling tick must be > 0",
		},
		{
			name: "negative caller skip",
			config: &Config{
				Format: "json",
				Output: OutputConfig{Stdout: true},
				Caller: CallerConfig{Enabled: true, Skip: -1},
			},
			wantErr: true,
			errMsg:  "caller skip must be >= 0",
		},
		{
			name: "empty field value",
			config: &Config{
				Format: "json",
				Output: OutputConfig{Stdout: true},
				Fields: map[string]string{"service": ""},
			},
			wantErr: true,
			errMsg:  `field "service" has empty value`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLevelSamplingConfig_Defaults(t *testing.T) {
	defaults := DefaultLevelSamplingConfig()

	assert.Equal(t, LevelSamplingConfig{Initial: 1, Thereafter: 0}, defaults[TraceLevel])
	assert.Equal(t, LevelSamplingConfig{Initial: 10, Thereafter: 0}, defaults[zapcore.DebugLevel])
	assert.Equal(t, LevelSamplingConfig{Initial: 100, Thereafter: 10}, defaults[zapcore.InfoLevel])
	assert.Equal(t, LevelSamplingConfig{Initial: 100, Thereafter: 100}, defaults[zapcore.WarnLevel])

	// Error+ never sampled (not in map)
	_, exists := defaults[zapcore.ErrorLevel]
	assert.False(t, exists)
}

func TestFromSettings(t *testing.T) {
	t.Run("empty keeps defaults", func(t *testing.T) {
		cfg, err := FromSettings(config.LoggingConfig{})
		require.NoError(t, err)
		assert.Equal(t, zapcore.InfoLevel, cfg.Level)
		assert.Equal(t, "json", cfg.Format)
		assert.True(t, cfg.Sampling.Enabled)
	})

	t.Run("overrides", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "bot.log")
		cfg, err := FromSettings(config.LoggingConfig{
			Level:           "trace",
			Format:          "console",
			File:            file,
			DisableSampling: true,
		})
		require.NoError(t, err)
		assert.Equal(t, TraceLevel, cfg.Level)
		assert.Equal(t, "console", cfg.Format)
		assert.Equal(t, file, cfg.Output.File)
		assert.False(t, cfg.Sampling.Enabled)
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := FromSettings(config.LoggingConfig{Level: "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
