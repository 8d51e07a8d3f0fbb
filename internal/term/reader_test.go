package term

import (
	"bytes"
	"testing"
	"time"

	"skiff/internal/input"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, raw []byte) []input.Event {
	t.Helper()
	d := NewReader(bytes.NewReader(raw))
	d.Start()

	var out []input.Event
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-d.Events():
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("reader did not finish")
		}
	}
}

func TestDecodePlainKeys(t *testing.T) {
	events := decodeAll(t, []byte("qQ/"))
	require.Len(t, events, 3)
	assert.Equal(t, "q", events[0].Key)
	assert.Equal(t, "Q", events[1].Key, "uppercase letters stay distinct bindings")
	assert.Equal(t, "/", events[2].Key)
}

func TestDecodeControlKeys(t *testing.T) {
	events := decodeAll(t, []byte{'\r', '\t', 0x7f, 0x0b})
	require.Len(t, events, 4)
	assert.Equal(t, "enter", events[0].Key)
	assert.Equal(t, "tab", events[1].Key)
	assert.Equal(t, "backspace", events[2].Key)
	assert.Equal(t, "ctrl+k", events[3].Key)
}

func TestDecodeCtrlCIsInterrupt(t *testing.T) {
	events := decodeAll(t, []byte{0x03})
	require.Len(t, events, 1)
	assert.Equal(t, input.EventInterrupt, events[0].Type)
}

func TestDecodeArrows(t *testing.T) {
	events := decodeAll(t, []byte("\x1b[A\x1b[B\x1b[C\x1b[D"))
	require.Len(t, events, 4)
	assert.Equal(t, "up", events[0].Key)
	assert.Equal(t, "down", events[1].Key)
	assert.Equal(t, "right", events[2].Key)
	assert.Equal(t, "left", events[3].Key)
}

func TestDecodeAltKey(t *testing.T) {
	events := decodeAll(t, []byte{0x1b, 'b'})
	require.Len(t, events, 1)
	assert.Equal(t, "alt+b", events[0].Key)
}

func TestDecodeUTF8(t *testing.T) {
	events := decodeAll(t, []byte("å"))
	require.Len(t, events, 1)
	assert.Equal(t, "å", events[0].Key)
}
