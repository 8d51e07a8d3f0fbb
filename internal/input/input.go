// Package input defines the terminal input event model shared by the
// event loop, the keybinding resolver and the buffer manager. It
// decouples everything above the terminal layer from how bytes are read.
package input

import "strings"

// EventType classifies a terminal event.
type EventType uint8

const (
	// EventKey is a keyboard event
	EventKey EventType = iota
	// EventResize is a terminal resize wake-up with no key attached
	EventResize
	// EventRefresh is a transport-layer refresh notification (new mail
	// detected by a watcher); it never carries a key
	EventRefresh
	// EventInterrupt is an OS-level interrupt (Ctrl-C at the tty),
	// distinct from a termination signal
	EventInterrupt
	// EventError reports a read failure from the terminal
	EventError
)

// Event is skiff's internal event type. Key events carry a normalized
// key name ("q", "ctrl+k", "enter", ...).
type Event struct {
	Type EventType
	Key  string
	Err  error
}

// KeyEvent builds a key event for the given (not necessarily
// normalized) key name.
func KeyEvent(key string) Event {
	return Event{Type: EventKey, Key: NormalizeKey(key)}
}

// Source is a blocking producer of input events. Next blocks until a
// key arrives or a signal-driven wake-up (resize, interrupt) occurs;
// wake-ups are delivered before the read resumes, never after.
type Source interface {
	Next() Event
}

// NormalizeKey canonicalizes a key name so keymap entries and decoded
// input agree on spelling. Single uppercase letters are preserved so
// "Q" and "q" can be distinct bindings.
func NormalizeKey(k string) string {
	if k == " " {
		return "space"
	}
	trimmed := strings.TrimSpace(k)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 1 {
		ch := trimmed[0]
		if ch >= 'A' && ch <= 'Z' {
			return trimmed
		}
	}
	s := strings.ToLower(trimmed)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "control+", "ctrl+")
	s = strings.ReplaceAll(s, "ctl+", "ctrl+")
	s = strings.ReplaceAll(s, "return", "enter")
	s = strings.ReplaceAll(s, "spacebar", "space")
	return s
}
