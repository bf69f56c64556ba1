package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "debug", Writer: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("tail started", "offset", 42)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "tail started")
	assert.Contains(t, buf.String(), "offset=42")
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	logger.Info("quiet")
	assert.Empty(t, buf.String())
	logger.Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Format: "json", Writer: &buf})
	require.NoError(t, err)

	logger.Info("opened", "path", "/var/log/app.log")
	assert.Contains(t, buf.String(), `"msg":"opened"`)
	assert.Contains(t, buf.String(), `"path":"/var/log/app.log"`)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, _, err := New(Options{Format: "xml", Writer: &bytes.Buffer{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value")
}

func TestNewOpensFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mfollow.log")
	logger, closer, err := New(Options{Path: path})
	require.NoError(t, err)

	logger.Info("session opened")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session opened")
}

func TestNewWithoutDestinationDiscards(t *testing.T) {
	logger, closer, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel(" DEBUG "))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
