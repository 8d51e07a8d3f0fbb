// Package index holds the durable session state guarded by the index
// lock. The runtime core only needs enough of it to honor the shutdown
// contract: state is persisted when the session ends cleanly and
// skipped when failures were recorded, leaving the previous state
// intact for the next process.
package index

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"skiff/internal/errors"

	"gopkg.in/yaml.v3"
)

// State is the persisted snapshot of a session.
type State struct {
	LastPoll    map[string]time.Time `yaml:"last_poll"`    // Per-source last successful poll
	LastSession time.Time            `yaml:"last_session"` // When the previous session ended
	SeenCount   int                  `yaml:"seen_count"`   // Messages seen across sessions
}

// Store reads and writes the state file inside the index directory.
// Mutators are safe to call from poll workers; Save is called only by
// the shutdown sequencer.
type Store struct {
	path string

	mu    sync.Mutex
	state State
}

// Open loads existing state from the given directory, starting fresh
// when none exists.
func Open(dir string) (*Store, error) {
	s := &Store{
		path: filepath.Join(dir, "state.yaml"),
		state: State{
			LastPoll: make(map[string]time.Time),
		},
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &s.state); err != nil {
		return nil, errors.Wrap(err, "state file corrupted")
	}
	if s.state.LastPoll == nil {
		s.state.LastPoll = make(map[string]time.Time)
	}
	return s, nil
}

// NotePoll records a successful poll for the named source.
func (s *Store) NotePoll(source string, at time.Time) {
	s.mu.Lock()
	s.state.LastPoll[source] = at
	s.mu.Unlock()
}

// NoteSeen bumps the cross-session seen counter by n.
func (s *Store) NoteSeen(n int) {
	s.mu.Lock()
	s.state.SeenCount += n
	s.mu.Unlock()
}

// LastPoll returns the last successful poll time for the named source.
func (s *Store) LastPoll(source string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.state.LastPoll[source]
	return at, ok
}

// Save persists the state atomically: write to a temp file, then
// rename over the previous snapshot.
func (s *Store) Save() error {
	s.mu.Lock()
	s.state.LastSession = time.Now()
	data, err := yaml.Marshal(&s.state)
	s.mu.Unlock()
	if err != nil {
		return errors.NewConfigError("error encoding state", s.path, errors.StateWriteFailed, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
