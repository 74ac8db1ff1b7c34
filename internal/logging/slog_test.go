package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/stencil/types"
)

func TestSlogLogger_ImplementsInterface(t *testing.T) {
	t.Helper()
	var _ types.Logger = (*SlogLogger)(nil)
}

func TestSlogLogger_Levels(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := NewSlog(slog.New(handler))

	logger.Debug("collective done", "op", "bcast")
	logger.Info("phase changed", "to", "run")
	logger.Warn("retrying send", "attempt", 2)
	logger.Error("input rejected", "error", "size")

	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, "op=bcast")
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "to=run")
	assert.Contains(t, output, "level=WARN")
	assert.Contains(t, output, "attempt=2")
	assert.Contains(t, output, "level=ERROR")
	assert.Contains(t, output, "error=size")
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := NewSlog(slog.New(handler))

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "warn message")
}

func TestNew_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(buf, "debug", "json")
	require.NoError(t, err)

	logger.With("rank", 2).Debug("engine ready", "workers", 4)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "engine ready", rec["msg"])
	require.Equal(t, "DEBUG", rec["level"])
	require.InDelta(t, 2, rec["rank"], 0)
	require.InDelta(t, 4, rec["workers"], 0)
}

func TestNew_TextDefaults(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(buf, "", "")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "verbose", "text")
	require.Error(t, err)

	_, err = New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}
