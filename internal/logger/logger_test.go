package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/alkime/practicum/internal/config"
	"github.com/alkime/practicum/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env      string
		level    string
		expected slog.Level
	}{
		{env: config.EnvDevelopment, level: "info", expected: slog.LevelDebug},
		{env: config.EnvProduction, level: "info", expected: slog.LevelInfo},
		{env: config.EnvProduction, level: "DEBUG", expected: slog.LevelDebug},
		{env: config.EnvProduction, level: "warn", expected: slog.LevelWarn},
		{env: config.EnvDevelopment, level: "error", expected: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, logger.Level(&config.Config{Env: tt.env, LogLevel: tt.level}))
		})
	}
}

func TestNew_WritesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lg := logger.New(&buf, slog.LevelInfo)

	lg.Debug("hidden")
	lg.Info("phase transition", "phase", "learn")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "phase transition", entry["msg"])
	assert.Equal(t, "learn", entry["phase"])
}
