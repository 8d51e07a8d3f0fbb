// Package buffers manages the stack of screens the client displays.
// The focused buffer is the top of the stack; it supplies the local
// keymap and may claim focused input mode to intercept raw keys (text
// entry fields, confirmation prompts). The manager belongs to the UI
// goroutine and is not safe for concurrent use.
package buffers

import (
	"fmt"
	"io"
	"strings"

	"skiff/internal/input"
	"skiff/internal/keymap"

	"github.com/charmbracelet/lipgloss"
)

// Buffer is one displayable screen.
type Buffer interface {
	// Title names the buffer in the status line and buffer list.
	Title() string
	// Keymap returns the buffer-local keymap, or nil when the buffer
	// adds no bindings of its own.
	Keymap() *keymap.Keymap
	// Draw renders the buffer's content for the given size.
	Draw(width, height int) string
}

// InputCapturer is implemented by buffers that take focused input mode:
// while focused they see every key event before the keybinding
// resolver. HandleInput returns true when the event was consumed.
type InputCapturer interface {
	Capturing() bool
	HandleInput(ev input.Event) bool
}

var (
	statusStyle = lipgloss.NewStyle().Reverse(true)
	noticeStyle = lipgloss.NewStyle().Bold(true)
	listStyle   = lipgloss.NewStyle().PaddingLeft(2)
)

// Manager owns the buffer stack, the current terminal size and the
// transient notice line.
type Manager struct {
	stack  []Buffer
	width  int
	height int
	notice string
	out    io.Writer
}

// NewManager creates a manager rendering to out with an initial size.
func NewManager(out io.Writer, width, height int) *Manager {
	return &Manager{out: out, width: width, height: height}
}

// Push puts a buffer on top of the stack and focuses it.
func (m *Manager) Push(b Buffer) {
	m.stack = append(m.stack, b)
}

// Focused returns the top buffer, or nil when the stack is empty.
func (m *Manager) Focused() Buffer {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

// Len reports how many buffers are open.
func (m *Manager) Len() int {
	return len(m.stack)
}

// Titles lists the open buffers bottom-up.
func (m *Manager) Titles() []string {
	out := make([]string, len(m.stack))
	for i, b := range m.stack {
		out[i] = b.Title()
	}
	return out
}

// KillFocused closes the top buffer. The bottom buffer stays; an empty
// screen is never shown outside shutdown.
func (m *Manager) KillFocused() {
	if len(m.stack) <= 1 {
		return
	}
	m.stack = m.stack[:len(m.stack)-1]
}

// KillAll closes every buffer, used by the shutdown sequencer.
func (m *Manager) KillAll() {
	m.stack = nil
}

// Roll rotates the stack so the next (delta 1) or previous (delta -1)
// buffer becomes focused.
func (m *Manager) Roll(delta int) {
	n := len(m.stack)
	if n < 2 {
		return
	}
	if delta > 0 {
		bottom := m.stack[0]
		copy(m.stack, m.stack[1:])
		m.stack[n-1] = bottom
	} else {
		top := m.stack[n-1]
		copy(m.stack[1:], m.stack[:n-1])
		m.stack[0] = top
	}
}

// Resize records a new terminal size.
func (m *Manager) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Size returns the current terminal size.
func (m *Manager) Size() (int, int) {
	return m.width, m.height
}

// Notice sets the transient notice line. It is shown on the next draw
// and cleared by the draw after that.
func (m *Manager) Notice(format string, args ...interface{}) {
	m.notice = fmt.Sprintf(format, args...)
}

// LocalKeymap returns the focused buffer's keymap, nil when none.
func (m *Manager) LocalKeymap() *keymap.Keymap {
	b := m.Focused()
	if b == nil {
		return nil
	}
	return b.Keymap()
}

// HandleInput offers the event to the focused buffer when it is in
// focused input mode. Returns true when the buffer consumed it.
func (m *Manager) HandleInput(ev input.Event) bool {
	c, ok := m.Focused().(InputCapturer)
	if !ok || !c.Capturing() {
		return false
	}
	return c.HandleInput(ev)
}

// DrawScreen renders the focused buffer, the status line and any
// pending notice, then clears the notice.
func (m *Manager) DrawScreen() {
	b := m.Focused()
	if b == nil || m.out == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("\x1b[2J\x1b[H")
	sb.WriteString(b.Draw(m.width, m.height-2))
	sb.WriteString("\r\n")
	sb.WriteString(statusStyle.Width(m.width).Render(m.statusLine(b)))
	if m.notice != "" {
		sb.WriteString("\r\n")
		sb.WriteString(noticeStyle.Render(m.notice))
		m.notice = ""
	}
	fmt.Fprint(m.out, sb.String())
}

func (m *Manager) statusLine(b Buffer) string {
	return fmt.Sprintf(" %s | %d open", b.Title(), len(m.stack))
}
