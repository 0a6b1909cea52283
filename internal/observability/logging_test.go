package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/statengine/internal/config"
)

func TestNewLogger_LevelGatesOutput(t *testing.T) {
	for _, tc := range []struct {
		level   string
		format  string
		debugOn bool
		errorOn bool
	}{
		{"debug", "console", true, true},
		{"info", "json", false, true},
		{"warn", "json", false, true},
		{"error", "console", false, true},
	} {
		logger, err := NewLogger(config.LoggingConfig{Level: tc.level, Format: tc.format})
		require.NoError(t, err, "level %q format %q", tc.level, tc.format)
		assert.Equal(t, tc.debugOn, logger.Core().Enabled(zap.DebugLevel), "level %q", tc.level)
		assert.Equal(t, tc.errorOn, logger.Core().Enabled(zap.ErrorLevel), "level %q", tc.level)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"})
	assert.ErrorContains(t, err, `"trace"`)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.ErrorContains(t, err, `"xml"`)
}

func TestForGame_AddsField(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ForGame(zap.New(core), "g-1").Info("tick")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "g-1", logs.All()[0].ContextMap()["game_id"])
}

func TestForService_NamesLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ForService(ForGame(zap.New(core), "g-2"), "game").Info("started")
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "game", entry.LoggerName)
	assert.Equal(t, "game", entry.ContextMap()["service"])
	assert.Equal(t, "g-2", entry.ContextMap()["game_id"])
}
