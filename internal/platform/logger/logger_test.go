// Package logger_test contains tests for the logger package
package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", slog.String("task_id", "t1"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1, "info record should be filtered at warn level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "t1", entry["task_id"])
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := logger.New(config.LogConfig{Level: "debug", Format: "text"}, &buf)
	require.NoError(t, err)

	l.Debug("reconcile finished", slog.Int("changes", 3))

	out := buf.String()
	assert.Contains(t, out, "reconcile finished")
	assert.Contains(t, out, "changes=3")
}

func TestNewRejectsInvalidSettings(t *testing.T) {
	var buf bytes.Buffer

	_, err := logger.New(config.LogConfig{Level: "loud", Format: "json"}, &buf)
	assert.Error(t, err)

	_, err = logger.New(config.LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range tests {
		got, err := logger.ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestContextPropagation(t *testing.T) {
	l, buf := logger.GetTestLogger(t)
	fallback := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))

	ctx := context.Background()
	assert.Same(t, fallback, logger.FromContextOrDefault(ctx, fallback))

	ctx = logger.WithLogger(ctx, l)
	ctx = logger.WithOperationID(ctx, "op-123")
	assert.Equal(t, "op-123", logger.OperationID(ctx))

	logger.FromContextOrDefault(ctx, fallback).Info("step done")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "op-123", entries[0]["operation_id"])
	logger.AssertLogContains(t, buf, "step done")
}
