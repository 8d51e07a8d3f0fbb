package keymap

import (
	"testing"

	"skiff/internal/errors"
	"skiff/internal/input"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(k string) input.Event {
	return input.KeyEvent(k)
}

func TestBindUniquenessCheckedAtConstruction(t *testing.T) {
	km := New("global")
	require.NoError(t, km.Bind("q", ActionQuitAsk))

	err := km.Bind("q", ActionQuitNow)
	require.Error(t, err)
	var kmErr *errors.KeymapError
	require.True(t, errors.As(err, &kmErr))
	assert.Equal(t, "q", kmErr.Key())
	assert.Equal(t, errors.DuplicateBinding, kmErr.Kind())

	// Uppercase and lowercase are distinct bindings
	assert.NoError(t, km.Bind("Q", ActionQuitNow))
}

func TestSubmapLeadCannotCollideWithBinding(t *testing.T) {
	km := New("global")
	require.NoError(t, km.Bind("b", ActionListBuffers))

	sub := New("buffer-ops")
	require.NoError(t, sub.Bind("n", ActionNextBuffer))

	err := km.Submap("b", sub)
	require.Error(t, err)

	require.NoError(t, km.Submap("g", sub))
	err = km.Bind("g", ActionHelp)
	assert.Error(t, err, "binding may not shadow a submap lead")
}

func TestResolveDeterministic(t *testing.T) {
	km := New("global")
	require.NoError(t, km.Bind("q", ActionQuitAsk))

	var r Resolver
	for i := 0; i < 3; i++ {
		assert.Equal(t, ActionQuitAsk, r.Resolve(key("q"), nil, km))
	}
}

func TestResolveLocalShadowsGlobal(t *testing.T) {
	global := New("global")
	require.NoError(t, global.Bind("q", ActionQuitAsk))
	local := New("thread-view")
	require.NoError(t, local.Bind("q", ActionKillBuffer))

	var r Resolver
	assert.Equal(t, ActionKillBuffer, r.Resolve(key("q"), local, global))
	assert.Equal(t, ActionQuitAsk, r.Resolve(key("q"), nil, global))
}

func TestSubmapSequence(t *testing.T) {
	sub := New("goto")
	require.NoError(t, sub.Bind("i", ActionListBuffers))

	global := New("global")
	require.NoError(t, global.Submap("g", sub))

	var r Resolver

	// Lead key enters pending state and consumes the event
	assert.Equal(t, ActionNone, r.Resolve(key("g"), nil, global))
	lead, pending := r.Pending()
	assert.True(t, pending)
	assert.Equal(t, "g", lead)

	// Matching second key resolves within the submap only
	assert.Equal(t, ActionListBuffers, r.Resolve(key("i"), nil, global))
	_, pending = r.Pending()
	assert.False(t, pending)
}

func TestSubmapAbortOnNonMatch(t *testing.T) {
	sub := New("goto")
	require.NoError(t, sub.Bind("i", ActionListBuffers))

	global := New("global")
	require.NoError(t, global.Bind("x", ActionArchive))
	require.NoError(t, global.Submap("g", sub))

	var r Resolver
	assert.Equal(t, ActionNone, r.Resolve(key("g"), nil, global))

	// "x" is bound in the outer scope but must NOT resolve there:
	// a non-matching second key always aborts the sequence.
	assert.Equal(t, ActionAborted, r.Resolve(key("x"), nil, global))

	// The aborted event was consumed; the next "x" resolves normally.
	assert.Equal(t, ActionArchive, r.Resolve(key("x"), nil, global))
}

func TestResolveIgnoresNonKeyEvents(t *testing.T) {
	global := New("global")
	require.NoError(t, global.Bind("q", ActionQuitAsk))

	var r Resolver
	assert.Equal(t, ActionNone, r.Resolve(input.Event{Type: input.EventResize}, nil, global))
	assert.Equal(t, ActionNone, r.Resolve(input.Event{Type: input.EventRefresh}, nil, global))
}

func TestRebind(t *testing.T) {
	km := New("global")
	require.NoError(t, km.Bind("q", ActionQuitAsk))
	require.NoError(t, km.Rebind(ActionQuitAsk, "Z"))

	var r Resolver
	assert.Equal(t, ActionNone, r.Resolve(key("q"), nil, km))
	assert.Equal(t, ActionQuitAsk, r.Resolve(key("Z"), nil, km))
}

func TestActionNames(t *testing.T) {
	assert.Equal(t, "quit_ask", ActionQuitAsk.String())

	a, ok := ByName("quit_ask")
	require.True(t, ok)
	assert.Equal(t, ActionQuitAsk, a)

	_, ok = ByName("launch_missiles")
	assert.False(t, ok)
}
