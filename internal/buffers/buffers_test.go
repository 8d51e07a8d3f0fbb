package buffers

import (
	"bytes"
	"testing"

	"skiff/internal/input"
	"skiff/internal/keymap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackFocusAndKill(t *testing.T) {
	m := NewManager(&bytes.Buffer{}, 80, 24)
	inbox := NewInboxBuffer([]string{"work"})
	m.Push(inbox)
	m.Push(NewListBuffer(m.Titles()))

	require.Equal(t, 2, m.Len())
	assert.Equal(t, "buffer list", m.Focused().Title())

	m.KillFocused()
	assert.Equal(t, "inbox", m.Focused().Title())

	// The last buffer is never killed outside shutdown.
	m.KillFocused()
	assert.Equal(t, 1, m.Len())

	m.KillAll()
	assert.Nil(t, m.Focused())
}

func TestRoll(t *testing.T) {
	m := NewManager(&bytes.Buffer{}, 80, 24)
	m.Push(NewInboxBuffer(nil))
	m.Push(NewListBuffer(nil))
	m.Push(NewHelpBuffer(nil, nil))

	m.Roll(1)
	assert.Equal(t, "inbox", m.Focused().Title())
	m.Roll(-1)
	assert.Equal(t, "help", m.Focused().Title())
	m.Roll(-1)
	assert.Equal(t, "buffer list", m.Focused().Title())
}

func TestPromptCapturesInput(t *testing.T) {
	m := NewManager(&bytes.Buffer{}, 80, 24)
	m.Push(NewInboxBuffer(nil))

	// No capturer focused: events pass through to the resolver.
	assert.False(t, m.HandleInput(input.KeyEvent("q")))

	var answer *bool
	m.Push(NewPromptBuffer("really quit?", func(yes bool) { answer = &yes }))

	assert.True(t, m.HandleInput(input.KeyEvent("y")))
	require.NotNil(t, answer)
	assert.True(t, *answer)

	// The prompt answered once; it stops capturing afterwards.
	assert.False(t, m.HandleInput(input.KeyEvent("y")))
}

func TestPromptDeclinesOnOtherKeys(t *testing.T) {
	var answer *bool
	p := NewPromptBuffer("quit?", func(yes bool) { answer = &yes })

	assert.True(t, p.HandleInput(input.KeyEvent("n")))
	require.NotNil(t, answer)
	assert.False(t, *answer)
}

func TestDrawScreenShowsNoticeOnce(t *testing.T) {
	var out bytes.Buffer
	m := NewManager(&out, 80, 24)
	m.Push(NewInboxBuffer([]string{"work"}))

	m.Notice("keybinding %q is not bound", "x")
	m.DrawScreen()
	assert.Contains(t, out.String(), `keybinding "x" is not bound`)

	out.Reset()
	m.DrawScreen()
	assert.NotContains(t, out.String(), "not bound")
}

func TestInboxCounts(t *testing.T) {
	b := NewInboxBuffer([]string{"work"})
	b.AddMail("work", 2)
	b.AddMail("home", 1)

	drawn := b.Draw(80, 24)
	assert.Contains(t, drawn, "work")
	assert.Contains(t, drawn, "2 new")
	assert.Contains(t, drawn, "home")
}

func TestHelpBufferListsBothScopes(t *testing.T) {
	global := keymap.New("global")
	require.NoError(t, global.Bind("q", keymap.ActionQuitAsk))
	local := keymap.New("inbox")
	require.NoError(t, local.Bind("a", keymap.ActionArchive))

	h := NewHelpBuffer(local, global)
	drawn := h.Draw(80, 24)
	assert.Contains(t, drawn, "quit_ask")
	assert.Contains(t, drawn, "archive")
	assert.Contains(t, drawn, "(global)")
	assert.Contains(t, drawn, "(buffer)")
}
