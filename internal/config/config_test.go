package config_test

import (
	"testing"
	"time"

	"github.com/alkime/practicum/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() config.Config {
	return config.Config{
		Env:               "test",
		Port:              "8080",
		CSPMode:           "relaxed",
		LogLevel:          "info",
		FeedbackDelay:     1500 * time.Millisecond,
		SessionTTL:        time.Hour,
		SessionSweep:      time.Minute,
		SampleRate:        16000,
		CaptureChannels:   1,
		MaxRecordingBytes: 1024,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(c *config.Config)
		expectError string
	}{
		{
			name:   "valid config",
			mutate: func(_ *config.Config) {},
		},
		{
			name:        "zero sample rate",
			mutate:      func(c *config.Config) { c.SampleRate = 0 },
			expectError: "sample rate must be positive",
		},
		{
			name:        "stereo capture",
			mutate:      func(c *config.Config) { c.CaptureChannels = 2 },
			expectError: "only mono",
		},
		{
			name:        "zero max recording bytes",
			mutate:      func(c *config.Config) { c.MaxRecordingBytes = 0 },
			expectError: "max recording bytes must be positive",
		},
		{
			name:        "negative feedback delay",
			mutate:      func(c *config.Config) { c.FeedbackDelay = -time.Second },
			expectError: "feedback delay cannot be negative",
		},
		{
			name:   "zero feedback delay is allowed",
			mutate: func(c *config.Config) { c.FeedbackDelay = 0 },
		},
		{
			name:        "zero session ttl",
			mutate:      func(c *config.Config) { c.SessionTTL = 0 },
			expectError: "session ttl must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FEEDBACK_DELAY", "250ms")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.FeedbackDelay)
	assert.Equal(t, 16000, cfg.SampleRate)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestBuildCSP(t *testing.T) {
	t.Parallel()

	strict := config.BuildCSP("strict")
	assert.Contains(t, strict, "object-src 'none'")
	assert.Contains(t, strict, "media-src 'self' blob:")

	relaxed := config.BuildCSP("relaxed")
	assert.Contains(t, relaxed, "'unsafe-inline'")
	assert.NotContains(t, relaxed, "object-src")
}
