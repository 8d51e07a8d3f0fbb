// Package lock implements the exclusive, process-scoped lease over the
// index directory. The lock is acquired once at startup, kept alive by
// the lease-renewal worker, and released exactly once during shutdown.
// A lock whose lease has not been refreshed within the stale window is
// considered abandoned and may be broken by the next process.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"skiff/internal/errors"
	"skiff/internal/log"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultStaleAfter is how long a lease may go unrefreshed before
// another process is allowed to break the lock.
const DefaultStaleAfter = 5 * time.Minute

// Provider is the lock surface the session depends on.
type Provider interface {
	Acquire() error
	Renew() error
	Release() error
}

// leaseFile is the on-disk representation of a held lease.
type leaseFile struct {
	Owner       string    `yaml:"owner"` // UUID token of the holding process
	PID         int       `yaml:"pid"`
	Hostname    string    `yaml:"hostname"`
	RefreshedAt time.Time `yaml:"refreshed_at"`
}

// FileLock is a Provider backed by a lock file inside the guarded
// directory.
type FileLock struct {
	path       string
	owner      string
	staleAfter time.Duration

	mu       sync.Mutex
	held     bool
	released bool
}

// New creates a lock over the given directory. The directory is created
// if missing.
func New(dir string) *FileLock {
	return &FileLock{
		path:       filepath.Join(dir, "lock"),
		owner:      uuid.NewString(),
		staleAfter: DefaultStaleAfter,
	}
}

// SetStaleAfter overrides the stale window, used by tests.
func (l *FileLock) SetStaleAfter(d time.Duration) {
	l.staleAfter = d
}

// Owner returns this process's lease token.
func (l *FileLock) Owner() string {
	return l.owner
}

// Acquire takes the lock, failing with a LockHeld error when a live
// lease exists elsewhere. A stale lease is broken with a warning.
func (l *FileLock) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}

	if existing, err := l.read(); err == nil {
		age := time.Since(existing.RefreshedAt)
		if age < l.staleAfter {
			return errors.NewLockError(
				fmt.Sprintf("index locked by pid %d on %s (refreshed %s ago)",
					existing.PID, existing.Hostname, age.Round(time.Second)),
				errors.LockHeld, nil)
		}
		log.Warn("breaking stale index lock held by pid %d (refreshed %s ago)",
			existing.PID, age.Round(time.Second))
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if err := l.writeExclusive(); err != nil {
		return err
	}
	l.held = true
	l.released = false
	return nil
}

// Renew refreshes the lease timestamp. It fails with a LockLost error
// if the lock file no longer carries our token — another process broke
// a lease we let go stale.
func (l *FileLock) Renew() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return errors.ErrLockLost
	}
	existing, err := l.read()
	if err != nil {
		return errors.NewLockError("lease file unreadable", errors.LockLost, err)
	}
	if existing.Owner != l.owner {
		l.held = false
		return errors.ErrLockLost
	}
	return l.write()
}

// Release removes the lock file exactly once. Further calls are no-ops,
// so the shutdown sequencer can call it unconditionally.
func (l *FileLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released || !l.held {
		l.released = true
		return nil
	}
	l.held = false
	l.released = true
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *FileLock) read() (*leaseFile, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}
	var lf leaseFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, err
	}
	return &lf, nil
}

func (l *FileLock) lease() *leaseFile {
	hostname, _ := os.Hostname()
	return &leaseFile{
		Owner:       l.owner,
		PID:         os.Getpid(),
		Hostname:    hostname,
		RefreshedAt: time.Now(),
	}
}

// writeExclusive creates the lock file, failing if another process
// created it between our staleness check and now.
func (l *FileLock) writeExclusive() error {
	data, err := yaml.Marshal(l.lease())
	if err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return errors.Wrap(errors.ErrLockHeld, "lock file reappeared")
		}
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

func (l *FileLock) write() error {
	data, err := yaml.Marshal(l.lease())
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o600)
}
