// Package keymap maps terminal input events to symbolic actions.
// Keymaps are layered: the focused buffer's local keymap shadows the
// global one, and a named submap adds one extra level of multi-key
// sequencing behind a leading key.
package keymap

import (
	"sort"

	"skiff/internal/errors"
	"skiff/internal/input"
)

// Keymap is an ordered mapping from normalized key names to Actions,
// plus zero or more submaps keyed by a leading key. Within one keymap
// no two single-key bindings may collide, and a submap lead may not
// collide with a single-key binding.
type Keymap struct {
	name     string
	bindings map[string]Action
	submaps  map[string]*Keymap
}

// New creates an empty keymap with a diagnostic name.
func New(name string) *Keymap {
	return &Keymap{
		name:     name,
		bindings: make(map[string]Action),
		submaps:  make(map[string]*Keymap),
	}
}

// Name returns the keymap's diagnostic name.
func (k *Keymap) Name() string {
	return k.name
}

// Bind associates a single key with an action. The uniqueness
// invariant is checked here, at construction time.
func (k *Keymap) Bind(key string, action Action) error {
	key = input.NormalizeKey(key)
	if key == "" {
		return errors.NewKeymapError("empty key", key, errors.DuplicateBinding)
	}
	if _, exists := k.bindings[key]; exists {
		return errors.NewKeymapError("duplicate binding in keymap "+k.name, key, errors.DuplicateBinding)
	}
	if _, exists := k.submaps[key]; exists {
		return errors.NewKeymapError("key already leads a submap in keymap "+k.name, key, errors.SubmapCollision)
	}
	k.bindings[key] = action
	return nil
}

// Submap registers a multi-key sequence lead. The submap's own
// bindings resolve the second key of the sequence.
func (k *Keymap) Submap(lead string, sub *Keymap) error {
	lead = input.NormalizeKey(lead)
	if _, exists := k.bindings[lead]; exists {
		return errors.NewKeymapError("submap lead collides with a binding in keymap "+k.name, lead, errors.SubmapCollision)
	}
	if _, exists := k.submaps[lead]; exists {
		return errors.NewKeymapError("duplicate submap lead in keymap "+k.name, lead, errors.SubmapCollision)
	}
	k.submaps[lead] = sub
	return nil
}

// Rebind moves an existing action to a new key, used for configuration
// overrides. The old binding for the action is dropped. The target key
// is validated before anything is touched, so a colliding override
// leaves the keymap unchanged.
func (k *Keymap) Rebind(action Action, key string) error {
	key = input.NormalizeKey(key)
	if key == "" {
		return errors.NewKeymapError("empty key", key, errors.DuplicateBinding)
	}
	if bound, exists := k.bindings[key]; exists && bound != action {
		return errors.NewKeymapError("key already bound in keymap "+k.name, key, errors.DuplicateBinding)
	}
	if _, exists := k.submaps[key]; exists {
		return errors.NewKeymapError("key already leads a submap in keymap "+k.name, key, errors.SubmapCollision)
	}
	for old, a := range k.bindings {
		if a == action {
			delete(k.bindings, old)
			break
		}
	}
	k.bindings[key] = action
	return nil
}

// Lookup returns the action bound to a single key.
func (k *Keymap) Lookup(key string) (Action, bool) {
	if k == nil {
		return ActionNone, false
	}
	a, ok := k.bindings[key]
	return a, ok
}

// SubmapFor returns the submap led by the given key.
func (k *Keymap) SubmapFor(key string) (*Keymap, bool) {
	if k == nil {
		return nil, false
	}
	s, ok := k.submaps[key]
	return s, ok
}

// Keys returns the bound single keys in sorted order, for help screens.
func (k *Keymap) Keys() []string {
	if k == nil {
		return nil
	}
	out := make([]string, 0, len(k.bindings))
	for key := range k.bindings {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Resolver resolves input events against a buffer-local and a global
// keymap, holding the pending state of an in-flight multi-key sequence.
// A Resolver belongs to the UI goroutine and is not safe for concurrent
// use.
type Resolver struct {
	pending     *Keymap
	pendingLead string
}

// Pending reports whether the resolver is waiting for the second key of
// a multi-key sequence, and the lead key that started it.
func (r *Resolver) Pending() (string, bool) {
	return r.pendingLead, r.pending != nil
}

// Resolve maps one input event to an action. Resolution order: the
// buffer-local keymap first, so the focused screen can intercept any
// key, then the global keymap. A key matching a submap lead puts the
// resolver into a pending state that consumes exactly the next event
// against the submap alone; a non-matching second key yields
// ActionAborted, never the outer scope's binding. Consumed events are
// never re-dispatched.
func (r *Resolver) Resolve(ev input.Event, local, global *Keymap) Action {
	if ev.Type != input.EventKey {
		return ActionNone
	}

	if r.pending != nil {
		sub := r.pending
		r.pending = nil
		r.pendingLead = ""
		if a, ok := sub.Lookup(ev.Key); ok {
			return a
		}
		return ActionAborted
	}

	for _, km := range []*Keymap{local, global} {
		if a, ok := km.Lookup(ev.Key); ok {
			return a
		}
		if sub, ok := km.SubmapFor(ev.Key); ok {
			r.pending = sub
			r.pendingLead = ev.Key
			return ActionNone
		}
	}
	return ActionNone
}
