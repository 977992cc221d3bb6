package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/DmitriyMamontov/all-dice-bot/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: format}, "dicebot")
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"}, "dicebot")
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"}, "")
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := NewLogger(config.LoggingConfig{Level: level, Format: "json"}, "dicebot")
		require.NoError(t, err, "level %q should be valid", level)
		assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
	}
}

func TestForAction_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ForAction(zap.New(core), "table-1", "alice").Info("roll")
	ForAction(zap.New(core), "table-1", "").Info("stop")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "table-1", entries[0].ContextMap()["session"])
	assert.Equal(t, "alice", entries[0].ContextMap()["actor"])
	_, hasActor := entries[1].ContextMap()["actor"]
	assert.False(t, hasActor)
}
