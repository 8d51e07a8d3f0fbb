package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Intervals.Poll)
	assert.Equal(t, 30, cfg.Intervals.LeaseRenewal)
	assert.Equal(t, 60, cfg.Intervals.Heartbeat)
	assert.NotEmpty(t, cfg.Directories.Data)
	assert.NotEmpty(t, cfg.Log.File)
	assert.Empty(t, cfg.Sources)
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
intervals:
  poll: 60
sources:
  - name: work
    path: /var/mail/work
    folders: ["INBOX", "lists/*"]
    watch: true
keys:
  - action: quit_ask
    key: Q
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	// Explicit values win
	assert.Equal(t, 60, cfg.Intervals.Poll)
	require.Len(t, cfg.Sources, 1)
	assert.Equal(t, "work", cfg.Sources[0].Name)
	assert.True(t, cfg.Sources[0].Watch)
	assert.Equal(t, []string{"INBOX", "lists/*"}, cfg.Sources[0].Folders)
	require.Len(t, cfg.Keys, 1)
	assert.Equal(t, "quit_ask", cfg.Keys[0].Action)

	// Unset values keep defaults
	assert.Equal(t, 30, cfg.Intervals.LeaseRenewal)
	assert.Equal(t, 60, cfg.Intervals.Heartbeat)
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intervals: ["), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := New()
	cfg.Intervals.Poll = 42
	cfg.Sources = []SourceConfig{{Name: "home", Path: "/var/mail/home"}}
	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.Intervals.Poll)
	require.Len(t, loaded.Sources, 1)
	assert.Equal(t, "home", loaded.Sources[0].Name)
}
