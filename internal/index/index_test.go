package index

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFreshStore(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, ok := s.LastPoll("work")
	assert.False(t, ok)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)

	at := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	s.NotePoll("work", at)
	s.NoteSeen(12)
	require.NoError(t, s.Save())

	reloaded, err := Open(dir)
	require.NoError(t, err)
	got, ok := reloaded.LastPoll("work")
	require.True(t, ok)
	assert.True(t, got.Equal(at))
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save())

	_, err = os.Stat(filepath.Join(dir, "state.yaml.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestOpenCorruptState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.yaml"), []byte("last_poll: ["), 0o600))

	_, err := Open(dir)
	assert.Error(t, err)
}
