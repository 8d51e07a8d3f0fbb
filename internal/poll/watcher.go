package poll

import (
	"sync"
	"time"

	"skiff/internal/log"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the new/ dirs of watched sources and reports
// incoming mail as refresh notifications, debounced so a burst of
// deliveries produces a single poll. It runs entirely off the UI
// goroutine; the event loop drains Refresh on its own schedule.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	refresh  chan string
	byDir    map[string]string // watched dir -> source name

	mu       sync.Mutex
	started  bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewWatcher creates a watcher over the watch dirs of the given
// sources. Sources without watch dirs are skipped.
func NewWatcher(sources []Source, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		refresh:  make(chan string, 8),
		byDir:    make(map[string]string),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, src := range sources {
		for _, dir := range src.WatchDirs() {
			if err := fsw.Add(dir); err != nil {
				log.Warn("cannot watch %s for source %s: %v", dir, src.Name(), err)
				continue
			}
			w.byDir[dir] = src.Name()
		}
	}
	return w, nil
}

// Refresh delivers the names of sources with incoming mail.
func (w *Watcher) Refresh() <-chan string {
	return w.refresh
}

// Watching reports how many directories are under watch.
func (w *Watcher) Watching() int {
	return len(w.byDir)
}

// Start launches the watch loop. Calling Start more than once has no
// effect.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.run()
}

func (w *Watcher) run() {
	defer close(w.done)

	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		for name := range pending {
			select {
			case w.refresh <- name:
			default:
				// Loop is behind; one queued refresh per source is enough.
			}
			delete(pending, name)
		}
		fire = nil
	}

	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, ok := w.sourceFor(ev.Name); ok {
				pending[name] = true
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				fire = timer.C
			}
		case <-fire:
			flush()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("mail watcher error: %v", err)
		}
	}
}

func (w *Watcher) sourceFor(path string) (string, bool) {
	for dir, name := range w.byDir {
		if len(path) > len(dir) && path[:len(dir)] == dir {
			return name, true
		}
	}
	return "", false
}

// Stop halts the watch loop and closes the underlying fs watcher.
// Idempotent.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.fsw.Close()
		w.mu.Lock()
		started := w.started
		w.mu.Unlock()
		if started {
			<-w.done
		}
	})
}
