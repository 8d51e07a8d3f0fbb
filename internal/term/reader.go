package term

import (
	"bufio"
	"io"

	"skiff/internal/input"
)

// Reader decodes a raw-mode byte stream into input events. It runs one
// goroutine that blocks on the underlying reader; the event loop
// selects on Events alongside its signal wake channel.
type Reader struct {
	r      *bufio.Reader
	events chan input.Event
}

// NewReader decodes from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		r:      bufio.NewReader(r),
		events: make(chan input.Event, 8),
	}
}

// Events returns the decoded event stream. The channel is closed when
// the underlying reader ends.
func (d *Reader) Events() <-chan input.Event {
	return d.events
}

// Start launches the decode goroutine.
func (d *Reader) Start() {
	go d.run()
}

func (d *Reader) run() {
	defer close(d.events)
	for {
		ev, err := d.next()
		if err == io.EOF {
			return
		}
		if err != nil {
			d.events <- input.Event{Type: input.EventError, Err: err}
			return
		}
		d.events <- ev
	}
}

func (d *Reader) next() (input.Event, error) {
	r, _, err := d.r.ReadRune()
	if err != nil {
		return input.Event{}, err
	}

	switch {
	case r == 0x03:
		// In raw mode Ctrl-C arrives as a byte, not a signal.
		return input.Event{Type: input.EventInterrupt}, nil
	case r == 0x1b:
		return d.escape()
	case r == '\r' || r == '\n':
		return input.KeyEvent("enter"), nil
	case r == '\t':
		return input.KeyEvent("tab"), nil
	case r == 0x7f:
		return input.KeyEvent("backspace"), nil
	case r < 0x20:
		return input.KeyEvent("ctrl+" + string(rune('a'+r-1))), nil
	default:
		return input.KeyEvent(string(r)), nil
	}
}

// escape decodes the remainder of an escape sequence. A lone ESC with
// nothing buffered behind it is the escape key itself.
func (d *Reader) escape() (input.Event, error) {
	if d.r.Buffered() == 0 {
		return input.KeyEvent("esc"), nil
	}
	b, err := d.r.ReadByte()
	if err != nil {
		return input.KeyEvent("esc"), nil
	}
	if b != '[' && b != 'O' {
		// ESC <key> is Alt-modified input.
		return input.KeyEvent("alt+" + string(rune(b))), nil
	}

	final, err := d.r.ReadByte()
	if err != nil {
		return input.KeyEvent("esc"), nil
	}
	switch final {
	case 'A':
		return input.KeyEvent("up"), nil
	case 'B':
		return input.KeyEvent("down"), nil
	case 'C':
		return input.KeyEvent("right"), nil
	case 'D':
		return input.KeyEvent("left"), nil
	case 'H':
		return input.KeyEvent("home"), nil
	case 'F':
		return input.KeyEvent("end"), nil
	default:
		// Swallow parameterized sequences up to their final byte.
		for final >= '0' && final <= '9' || final == ';' {
			final, err = d.r.ReadByte()
			if err != nil {
				return input.KeyEvent("esc"), nil
			}
		}
		if final == '~' {
			return input.KeyEvent("esc"), nil
		}
		return input.KeyEvent("esc"), nil
	}
}
