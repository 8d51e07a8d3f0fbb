package hooks

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"skiff/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installHook(t *testing.T, dir, event, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, event), []byte(script), 0o755))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, worker.NewSupervisor(worker.NewRegistry()))

	assert.False(t, m.Exists("new-mail"))
	installHook(t, dir, "new-mail", "true")
	assert.True(t, m.Exists("new-mail"))
}

func TestExistsIgnoresNonExecutable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new-mail"), []byte("#!/bin/sh\n"), 0o644))

	m := NewManager(dir, worker.NewSupervisor(worker.NewRegistry()))
	assert.False(t, m.Exists("new-mail"))
}

func TestRunPassesEnvironment(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(t.TempDir(), "out")
	installHook(t, dir, "new-mail", `printf '%s %s' "$SKIFF_EVENT" "$SKIFF_SOURCE" > `+marker)

	reg := worker.NewRegistry()
	sup := worker.NewSupervisor(reg)
	m := NewManager(dir, sup)

	m.Run("new-mail", map[string]string{"SOURCE": "work"})
	sup.Wait()

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "new-mail work", string(data))
	assert.True(t, reg.Empty())
}

func TestRunMissingHookIsNoop(t *testing.T) {
	reg := worker.NewRegistry()
	sup := worker.NewSupervisor(reg)
	m := NewManager(filepath.Join(t.TempDir(), "absent"), sup)

	m.Run("shutdown", nil)
	sup.Wait()
	assert.True(t, reg.Empty())
}

func TestFailingHookRecordsFailure(t *testing.T) {
	dir := t.TempDir()
	installHook(t, dir, "startup", "exit 1")

	reg := worker.NewRegistry()
	sup := worker.NewSupervisor(reg)
	m := NewManager(dir, sup)

	m.Run("startup", nil)
	sup.Wait()

	// A failing hook is indistinguishable from any other failed
	// background unit.
	records := reg.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "hook:startup", records[0].Origin)
}

func TestRunWaitTimesOutHangingScript(t *testing.T) {
	dir := t.TempDir()
	installHook(t, dir, "shutdown", "sleep 5")

	m := NewManager(dir, worker.NewSupervisor(worker.NewRegistry()))
	m.SetTimeout(50 * time.Millisecond)

	start := time.Now()
	assert.Error(t, m.RunWait("shutdown", nil))
	assert.Less(t, time.Since(start), 2*time.Second)
}
