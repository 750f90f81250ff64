package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
		slog     slog.Level
	}{
		{LevelDebug, "DEBUG", slog.LevelDebug},
		{LevelInfo, "INFO", slog.LevelInfo},
		{LevelWarn, "WARN", slog.LevelWarn},
		{LevelError, "ERROR", slog.LevelError},
		{LogLevel(42), "UNKNOWN", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
			assert.Equal(t, tt.slog, tt.level.SlogLevel())
		})
	}
}

func TestInitForCLI_WritesSubsystemAndError(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelDebug, &buf)

	Info("Controller", "adfssrv on %s is already running", "ADFS-SERVER")
	WarnErr("Controller", errors.New("host unreachable"), "query failed")

	out := buf.String()
	assert.Contains(t, out, "adfssrv on ADFS-SERVER is already running")
	assert.Contains(t, out, "subsystem=Controller")
	assert.Contains(t, out, `error="host unreachable"`)
}

func TestInitForCLI_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)

	Debug("Test", "hidden debug")
	Info("Test", "hidden info")
	Warn("Test", "visible warn")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible warn")
}

func TestInitForTUI_RoutesToChannel(t *testing.T) {
	ch := InitForTUI(LevelInfo)
	require.NotNil(t, ch)

	Debug("Test", "dropped by level")
	Error("Orchestrator", errors.New("boom"), "target %d failed", 2)

	entry := <-ch
	assert.Equal(t, LevelError, entry.Level)
	assert.Equal(t, "Orchestrator", entry.Subsystem)
	assert.Equal(t, "target 2 failed", entry.Message)
	assert.EqualError(t, entry.Err, "boom")

	CloseTUIChannel()
	_, open := <-ch
	assert.False(t, open, "channel should be closed")
}
