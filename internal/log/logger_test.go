package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFileAndFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skiff.log")
	require.NoError(t, SetFile(path))

	Info("session started pid=%d", 123)
	WithOrigin("poll:work-imap").Error("connect refused")

	require.NoError(t, Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session started pid=123")
	assert.Contains(t, string(data), "origin=")
	assert.Contains(t, string(data), "poll:work-imap")

	// Flush is safe to call twice
	assert.NoError(t, Flush())

	// Logging after flush must not panic; output is discarded
	Info("after flush")
}

func TestDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skiff.log")
	require.NoError(t, SetFile(path))

	SetDebug(false)
	Debug("hidden")
	SetDebug(true)
	Debug("visible")
	require.NoError(t, Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "visible")
}
