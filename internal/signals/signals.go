// Package signals converts asynchronous OS signals into flags the
// single UI goroutine can observe safely. Signal-context work is kept
// to flag sets and a channel nudge; redraws and state changes happen in
// the event loop, never here.
package signals

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Flags is process-wide signal state: written by the bridge goroutine,
// read and cleared only by the event loop. It is constructed explicitly
// and passed by reference, not kept as an ambient global.
type Flags struct {
	termination atomic.Bool
	resize      atomic.Bool
	interrupt   atomic.Bool
}

// NewFlags creates a zeroed flag set. Initialize before installing
// handlers.
func NewFlags() *Flags {
	return &Flags{}
}

// TerminationRequested reports whether a termination signal arrived.
// The flag is never cleared; termination is one-way.
func (f *Flags) TerminationRequested() bool {
	return f.termination.Load()
}

// RequestTermination sets the termination flag. Exposed so dispatch
// handlers can request a quit through the same path as SIGTERM.
func (f *Flags) RequestTermination() {
	f.termination.Store(true)
}

// ConsumeResize returns true at most once per resize signal, clearing
// the flag as it is read.
func (f *Flags) ConsumeResize() bool {
	return f.resize.Swap(false)
}

// ConsumeInterrupt returns true at most once per tty interrupt,
// clearing the flag as it is read.
func (f *Flags) ConsumeInterrupt() bool {
	return f.interrupt.Swap(false)
}

// Bridge owns the signal subscription and the wake channel that breaks
// the event source out of a blocking read, so a resize is acted on
// before the next read resumes.
type Bridge struct {
	flags *Flags
	sigCh chan os.Signal
	wake  chan struct{}
	done  chan struct{}
}

// NewBridge creates a bridge writing into the given flags.
func NewBridge(flags *Flags) *Bridge {
	return &Bridge{
		flags: flags,
		sigCh: make(chan os.Signal, 8),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Wake is the channel the event source selects on alongside terminal
// input. It is buffered so the bridge never blocks delivering a nudge.
func (b *Bridge) Wake() <-chan struct{} {
	return b.wake
}

// Install subscribes to SIGTERM (termination), SIGWINCH (resize) and
// SIGINT (tty interrupt, handled as a confirmation prompt rather than
// termination) and starts the bridge goroutine.
func (b *Bridge) Install() {
	signal.Notify(b.sigCh, syscall.SIGTERM, syscall.SIGWINCH, syscall.SIGINT)
	go b.run()
}

func (b *Bridge) run() {
	for {
		select {
		case <-b.done:
			return
		case sig := <-b.sigCh:
			b.Deliver(sig)
		}
	}
}

// Deliver records one signal into the flags and nudges the wake
// channel. Split out from run so tests can inject signals directly.
func (b *Bridge) Deliver(sig os.Signal) {
	switch sig {
	case syscall.SIGTERM:
		b.flags.termination.Store(true)
	case syscall.SIGWINCH:
		b.flags.resize.Store(true)
	case syscall.SIGINT:
		b.flags.interrupt.Store(true)
	default:
		return
	}
	b.Nudge()
}

// Nudge wakes the event loop without recording any signal. The failure
// registry uses it so a background failure is observed without waiting
// for the next key press. Never blocks.
func (b *Bridge) Nudge() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Uninstall stops signal delivery and the bridge goroutine. Part of
// terminal restoration during shutdown.
func (b *Bridge) Uninstall() {
	signal.Stop(b.sigCh)
	select {
	case <-b.done:
	default:
		close(b.done)
	}
}
