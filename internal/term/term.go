// Package term owns the tty: raw mode, size queries and the single
// reader goroutine that turns stdin bytes into input events. Nothing
// above this package touches file descriptors.
package term

import (
	"os"
	"sync"

	"skiff/internal/errors"
	"skiff/internal/input"

	xterm "golang.org/x/term"
)

// Terminal wraps the controlling tty.
type Terminal struct {
	in    *os.File
	out   *os.File
	state *xterm.State

	restoreOnce sync.Once
	reader      *Reader
}

// New wraps stdin/stdout.
func New() *Terminal {
	return &Terminal{in: os.Stdin, out: os.Stdout}
}

// Raw switches the tty into raw mode and remembers the previous state
// for Restore.
func (t *Terminal) Raw() error {
	state, err := xterm.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return errors.NewTerminalError("cannot enter raw mode", err)
	}
	t.state = state
	return nil
}

// Restore puts the tty back the way Raw found it. Idempotent; the
// shutdown sequencer calls it unconditionally.
func (t *Terminal) Restore() {
	t.restoreOnce.Do(func() {
		if t.state != nil {
			xterm.Restore(int(t.in.Fd()), t.state)
		}
	})
}

// Size returns the current terminal dimensions.
func (t *Terminal) Size() (width, height int, err error) {
	width, height, err = xterm.GetSize(int(t.in.Fd()))
	if err != nil {
		return 0, 0, errors.NewTerminalError("cannot query terminal size", err)
	}
	return width, height, nil
}

// Out returns the writer screens render to.
func (t *Terminal) Out() *os.File {
	return t.out
}

// Events starts the reader goroutine on first call and returns its
// channel.
func (t *Terminal) Events() <-chan input.Event {
	if t.reader == nil {
		t.reader = NewReader(t.in)
		t.reader.Start()
	}
	return t.reader.Events()
}
