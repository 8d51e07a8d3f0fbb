// Package hooks runs user-provided scripts on session events. A hook
// is an executable file in the hooks directory named after the event
// it handles, e.g. hooks/new-mail. Hooks run as supervised background
// units so a hanging script never blocks the UI; a failing script is
// recorded in the failure registry like any other background unit.
package hooks

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"skiff/internal/errors"
	"skiff/internal/log"
	"skiff/internal/worker"
)

// DefaultTimeout bounds how long a hook script may run.
const DefaultTimeout = 30 * time.Second

// Manager locates and runs hook scripts.
type Manager struct {
	dir        string
	supervisor *worker.Supervisor
	timeout    time.Duration
}

// NewManager creates a hook manager over the given directory. A
// missing directory is fine; every Run becomes a no-op.
func NewManager(dir string, supervisor *worker.Supervisor) *Manager {
	return &Manager{
		dir:        dir,
		supervisor: supervisor,
		timeout:    DefaultTimeout,
	}
}

// SetTimeout overrides the per-script timeout.
func (m *Manager) SetTimeout(d time.Duration) {
	m.timeout = d
}

// Exists reports whether a hook script is installed for the event.
func (m *Manager) Exists(event string) bool {
	info, err := os.Stat(m.path(event))
	return err == nil && !info.IsDir() && info.Mode()&0o111 != 0
}

// Run launches the hook for the event in the background, passing the
// extra values as SKIFF_-prefixed environment variables. Events with
// no installed hook are ignored.
func (m *Manager) Run(event string, env map[string]string) {
	if !m.Exists(event) {
		return
	}
	script := m.path(event)
	m.supervisor.Go("hook:"+event, func() error {
		return m.execute(event, script, env)
	})
}

// RunWait runs the hook for the event and waits for it, used during
// shutdown where ordering matters. Returns nil when no hook is
// installed.
func (m *Manager) RunWait(event string, env map[string]string) error {
	if !m.Exists(event) {
		return nil
	}
	return m.execute(event, m.path(event), env)
}

func (m *Manager) execute(event, script string, env map[string]string) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, script)
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env, "SKIFF_EVENT="+event)
	for k, v := range env {
		cmd.Env = append(cmd.Env, "SKIFF_"+k+"="+v)
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		log.WithOrigin("hook:" + event).Warnf("hook failed: %v (output: %s)", err, out)
		return errors.NewHookError("hook "+event+" failed", err)
	}
	log.Debug("hook %s finished", event)
	return nil
}

func (m *Manager) path(event string) string {
	return filepath.Join(m.dir, event)
}
