package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestNewWritesJSONToFiles(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "log.json")
	f, err := os.Create(path)
	require.NoError(t, err)

	logger, err := New(f, "warn")
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept", "companion", "c1")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(data, &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "c1", line["companion"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	t.Parallel()
	_, err := New(os.Stderr, "verbose")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
