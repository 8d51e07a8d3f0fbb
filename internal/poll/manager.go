package poll

import (
	"time"

	"skiff/internal/errors"
	"skiff/internal/index"
	"skiff/internal/log"
	"skiff/internal/worker"
)

// Manager owns the configured sources and runs their connect/poll
// operations through the Supervisor, one background unit per source.
type Manager struct {
	sources    []Source
	supervisor *worker.Supervisor
	store      *index.Store
	notify     func(source string, newCount int)
}

// NewManager creates a manager over the given sources. notify is
// called from worker goroutines after a successful poll that found
// mail; it must not touch the terminal.
func NewManager(sources []Source, supervisor *worker.Supervisor, store *index.Store, notify func(source string, newCount int)) *Manager {
	return &Manager{
		sources:    sources,
		supervisor: supervisor,
		store:      store,
		notify:     notify,
	}
}

// Sources returns the managed sources.
func (m *Manager) Sources() []Source {
	return m.sources
}

// ConnectAll spawns one supervised connect per source. An expected
// connection failure is logged and swallowed inside the operation —
// an unreachable source is an ordinary condition, not a reason to end
// the session. Anything else escapes to the registry.
func (m *Manager) ConnectAll() {
	for _, src := range m.sources {
		src := src
		m.supervisor.Go("connect:"+src.Name(), func() error {
			err := src.Connect()
			if err == nil {
				log.Info("source %s connected", src.Name())
				return nil
			}
			if errors.IsSourceConnectFailed(err) {
				log.WithOrigin("connect:" + src.Name()).Warnf("source unreachable: %v", err)
				return nil
			}
			return err
		})
	}
}

// PollAll spawns one supervised poll per source.
func (m *Manager) PollAll() {
	for _, src := range m.sources {
		m.pollOne(src)
	}
}

// PollSource polls the named source only, used when a watcher reports
// incoming mail for it.
func (m *Manager) PollSource(name string) {
	for _, src := range m.sources {
		if src.Name() == name {
			m.pollOne(src)
			return
		}
	}
	log.Warn("poll requested for unknown source %s", name)
}

func (m *Manager) pollOne(src Source) {
	m.supervisor.Go("poll:"+src.Name(), func() error {
		// Re-check reachability inside the operation: a source that
		// went away between polls is still an expected condition.
		if err := src.Connect(); err != nil {
			if errors.IsSourceConnectFailed(err) {
				log.WithOrigin("poll:" + src.Name()).Warnf("skipping unreachable source: %v", err)
				return nil
			}
			return err
		}

		count, err := src.Poll()
		if err != nil {
			return err
		}
		m.store.NotePoll(src.Name(), time.Now())
		if count > 0 {
			m.store.NoteSeen(count)
			log.Info("source %s: %d new message(s)", src.Name(), count)
			if m.notify != nil {
				m.notify(src.Name(), count)
			}
		}
		return nil
	})
}
