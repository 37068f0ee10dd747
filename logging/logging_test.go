package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler_NestsGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).
		With("game", "g1").
		WithGroup("move").
		With("turn", 3)

	log.Info("decided", "dir", "up", slog.Group("space", "up", 10, "down", 0), "took", 2*time.Millisecond, "err", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "\n  ", "output should be indented")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "decided", got["msg"])
	assert.Equal(t, "INFO", got["level"])
	assert.Equal(t, "g1", got["game"])

	move, ok := got["move"].(map[string]any)
	require.True(t, ok, "move group missing: %s", out)
	assert.Equal(t, float64(3), move["turn"])
	assert.Equal(t, "up", move["dir"])
	assert.Equal(t, "2ms", move["took"])
	assert.Equal(t, "boom", move["err"])
	assert.Equal(t, map[string]any{"up": float64(10), "down": float64(0)}, move["space"])
}

func TestPrettyHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	log.Info("hidden")
	assert.Zero(t, buf.Len())
	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_AddSource(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{AddSource: true})).Info("here")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	src, _ := got["source"].(string)
	assert.True(t, strings.HasPrefix(src, "logging_test.go:"), "source=%q", src)
}

func TestNew(t *testing.T) {
	for _, format := range []string{"", FormatText, FormatJSON, FormatPretty, "JSON"} {
		var buf bytes.Buffer
		log, err := New(&buf, Options{Format: format, Level: slog.LevelDebug})
		require.NoError(t, err, format)
		log.Debug("hello", "k", "v")
		assert.Contains(t, buf.String(), "hello", format)
	}

	_, err := New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
