// Package session is the runtime core: the single-goroutine event loop
// that owns the terminal, the wiring of signal flags and background
// workers around it, and the shutdown sequencer that tears everything
// down in a fixed order whether the session ends cleanly or after a
// captured failure.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"skiff/internal/buffers"
	"skiff/internal/errors"
	"skiff/internal/hooks"
	"skiff/internal/index"
	"skiff/internal/input"
	"skiff/internal/keymap"
	"skiff/internal/lock"
	"skiff/internal/log"
	"skiff/internal/poll"
	"skiff/internal/signals"
	"skiff/internal/worker"
)

// State is the loop's lifecycle state.
type State int

const (
	// Running is the initial state; the loop blocks for events and
	// dispatches them.
	Running State = iota
	// Stopped is terminal, reached on a termination request, a captured
	// background failure, or an explicit quit action.
	Stopped
)

func (s State) String() string {
	if s == Stopped {
		return "stopped"
	}
	return "running"
}

// DefaultDrainTimeout bounds how long shutdown waits for in-flight
// background units.
const DefaultDrainTimeout = 5 * time.Second

// Deps carries the collaborators the session coordinates. Flags,
// Bridge, Events, Buffers, Global, Registry, Supervisor, Lock and Store
// are required; the rest may be nil and the matching behavior is
// skipped.
type Deps struct {
	Flags      *signals.Flags
	Bridge     *signals.Bridge
	Events     <-chan input.Event
	Buffers    *buffers.Manager
	Global     *keymap.Keymap
	Registry   *worker.Registry
	Supervisor *worker.Supervisor
	Lock       lock.Provider
	Store      *index.Store

	Hooks   *hooks.Manager
	Poll    *poll.Manager
	Watcher *poll.Watcher

	// Long-lived periodic workers, stopped during shutdown in this
	// order: Heartbeat first, then Lease, then Autopoll.
	Heartbeat *worker.Periodic
	Lease     *worker.Periodic
	Autopoll  *worker.Periodic

	// RestoreTerminal puts the tty back into its pre-UI state. Called
	// unconditionally during shutdown.
	RestoreTerminal func()
	// Size queries the current terminal dimensions on resize.
	Size func() (int, int, error)
	// OnAction handles actions the core does not own (compose, search,
	// archive, ...). Returning false produces a transient notice.
	OnAction func(keymap.Action) bool

	// DataDir is where a crash artifact is written on a failed exit.
	DataDir string

	DrainTimeout time.Duration
}

// Session runs the interactive loop. Construct with New, call Run once.
type Session struct {
	deps     Deps
	resolver keymap.Resolver
	state    State
	quit     bool

	artifactPath string
}

// New creates a session over its collaborators.
func New(deps Deps) *Session {
	if deps.DrainTimeout <= 0 {
		deps.DrainTimeout = DefaultDrainTimeout
	}
	return &Session{deps: deps, state: Running}
}

// State returns the loop state.
func (s *Session) State() State {
	return s.state
}

// Run is the blocking entry point. It returns only when the session
// has fully shut down; a non-nil error means background failures were
// captured and durable state was not persisted.
func (s *Session) Run() error {
	d := &s.deps

	// A failure landing while the loop is blocked on input must still
	// be observed within one iteration.
	d.Registry.SetNotify(d.Bridge.Nudge)

	if d.Hooks != nil {
		d.Hooks.Run("startup", nil)
	}
	if d.Watcher != nil {
		d.Watcher.Start()
	}
	for _, w := range []*worker.Periodic{d.Heartbeat, d.Lease, d.Autopoll} {
		if w != nil {
			w.Start()
		}
	}

	d.Buffers.DrawScreen()
	for s.state == Running {
		if s.stopRequested() {
			s.state = Stopped
			break
		}
		s.iterate()
		if s.stopRequested() {
			s.state = Stopped
		}
	}
	log.Info("event loop stopped")

	s.shutdown()

	if !d.Registry.Empty() {
		return errors.Newf("session ended after %d background failure(s)", d.Registry.Len())
	}
	return nil
}

func (s *Session) stopRequested() bool {
	return s.quit || s.deps.Flags.TerminationRequested() || !s.deps.Registry.Empty()
}

// iterate runs one loop turn: handle any pending interrupt, then block
// for exactly one event and act on it. Redraw always follows dispatch
// within the same turn.
func (s *Session) iterate() {
	d := &s.deps

	if d.Flags.ConsumeInterrupt() {
		s.confirmQuit()
		d.Buffers.DrawScreen()
		return
	}

	// A pending resize is acted on before the blocking read resumes,
	// even when input is already queued; otherwise a queued key could
	// be dispatched and drawn at the stale size first.
	if d.Flags.ConsumeResize() {
		s.resize()
		d.Buffers.DrawScreen()
		return
	}

	var refresh <-chan string
	if d.Watcher != nil {
		refresh = d.Watcher.Refresh()
	}

	select {
	case <-d.Bridge.Wake():
		// A wake with only the resize flag set gets a full redraw and
		// nothing else; termination and failures are picked up by the
		// stop check without consuming input.
		if d.Flags.ConsumeResize() {
			s.resize()
			d.Buffers.DrawScreen()
		}
	case name := <-refresh:
		if d.Poll != nil {
			d.Poll.PollSource(name)
		}
	case ev, ok := <-d.Events:
		if !ok {
			d.Flags.RequestTermination()
			return
		}
		s.handleEvent(ev)
	}
}

func (s *Session) handleEvent(ev input.Event) {
	d := &s.deps

	switch ev.Type {
	case input.EventError:
		d.Registry.Add("terminal", ev.Err)
	case input.EventInterrupt:
		s.confirmQuit()
		d.Buffers.DrawScreen()
	case input.EventResize:
		s.resize()
		d.Buffers.DrawScreen()
	case input.EventRefresh:
		// Transport-layer refresh notifications carry no state change.
		log.Debug("refresh notification ignored")
	case input.EventKey:
		handled := d.Buffers.HandleInput(ev)
		action := keymap.ActionNone
		if !handled {
			action = s.resolver.Resolve(ev, d.Buffers.LocalKeymap(), d.Global)
		}
		s.dispatch(action, ev, handled)
		d.Buffers.DrawScreen()
	}
}

// dispatch maps one action to exactly one handler. Unbound keys and
// aborted sequences surface as transient notices, never as errors.
func (s *Session) dispatch(action keymap.Action, ev input.Event, handled bool) {
	d := &s.deps

	switch action {
	case keymap.ActionNone:
		if handled {
			return
		}
		if _, pending := s.resolver.Pending(); pending {
			return
		}
		d.Buffers.Notice("%q is not bound to anything", ev.Key)
	case keymap.ActionAborted:
		d.Buffers.Notice("sequence aborted")
	case keymap.ActionQuitNow:
		s.quit = true
	case keymap.ActionQuitAsk:
		s.confirmQuit()
	case keymap.ActionPoll:
		if d.Poll != nil {
			d.Poll.PollAll()
		}
	case keymap.ActionRedraw:
		// The redraw after dispatch covers it.
	case keymap.ActionKillBuffer:
		d.Buffers.KillFocused()
	case keymap.ActionNextBuffer:
		d.Buffers.Roll(1)
	case keymap.ActionPrevBuffer:
		d.Buffers.Roll(-1)
	case keymap.ActionListBuffers:
		d.Buffers.Push(buffers.NewListBuffer(d.Buffers.Titles()))
	case keymap.ActionHelp:
		d.Buffers.Push(buffers.NewHelpBuffer(d.Buffers.LocalKeymap(), d.Global))
	default:
		if d.OnAction != nil && d.OnAction(action) {
			return
		}
		d.Buffers.Notice("%s is not available here", action)
	}
}

// confirmQuit opens the quit prompt unless one is already capturing
// input.
func (s *Session) confirmQuit() {
	d := &s.deps
	if c, ok := d.Buffers.Focused().(buffers.InputCapturer); ok && c.Capturing() {
		return
	}
	d.Buffers.Push(buffers.NewPromptBuffer("really quit?", func(yes bool) {
		d.Buffers.KillFocused()
		if yes {
			s.quit = true
		}
	}))
}

func (s *Session) resize() {
	d := &s.deps
	if d.Size == nil {
		return
	}
	if w, h, err := d.Size(); err == nil {
		d.Buffers.Resize(w, h)
	}
}

// shutdown runs the teardown steps in fixed order. Every step is
// best-effort: a failing or panicking step is logged and the next one
// still runs, so the lock release and the final report always happen.
func (s *Session) shutdown() {
	d := &s.deps

	if d.Heartbeat != nil {
		step("stop heartbeat", func() error { d.Heartbeat.Stop(); return nil })
	}
	if d.Lease != nil {
		step("stop lease renewal", func() error { d.Lease.Stop(); return nil })
	}
	if d.Autopoll != nil {
		step("stop autopoll", func() error { d.Autopoll.Stop(); return nil })
	}
	if d.Watcher != nil {
		step("stop mail watcher", func() error { d.Watcher.Stop(); return nil })
	}
	if d.Hooks != nil {
		step("shutdown hooks", func() error { return d.Hooks.RunWait("shutdown", nil) })
	}
	step("drain background units", func() error {
		if !d.Supervisor.WaitTimeout(d.DrainTimeout) {
			log.Warn("background units still running after %s", d.DrainTimeout)
		}
		return nil
	})
	step("release index lock", d.Lock.Release)
	step("close buffers", func() error { d.Buffers.KillAll(); return nil })
	if d.RestoreTerminal != nil {
		step("restore terminal", func() error { d.RestoreTerminal(); return nil })
	}
	step("uninstall signal handlers", func() error { d.Bridge.Uninstall(); return nil })

	step("flush log", log.Flush)
	if d.Registry.Empty() {
		step("persist state", d.Store.Save)
	} else {
		s.artifactPath = s.writeCrashArtifact()
	}
}

func step(name string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("shutdown step %q panicked: %v", name, r)
		}
	}()
	if err := fn(); err != nil {
		log.Error("shutdown step %q failed: %v", name, err)
	}
}

// writeCrashArtifact persists the aggregated failures next to the index
// so a report survives the terminal session.
func (s *Session) writeCrashArtifact() string {
	d := &s.deps
	if d.DataDir == "" {
		return ""
	}
	path := filepath.Join(d.DataDir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))
	content := fmt.Sprintf("skiff ended after %d background failure(s)\n\n%s",
		d.Registry.Len(), d.Registry.Report())
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		log.Error("cannot write crash artifact: %v", err)
		return ""
	}
	return path
}

// Report renders the aggregated failures for the embedder to print
// after Run returns. Empty on a clean exit.
func (s *Session) Report() string {
	d := &s.deps
	if d.Registry.Empty() {
		return ""
	}
	report := "skiff had to shut down after unexpected failures:\n\n" + d.Registry.Report()
	if s.artifactPath != "" {
		report += fmt.Sprintf("\na crash report was written to %s\n", s.artifactPath)
	}
	return report
}
