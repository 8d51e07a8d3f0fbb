package keymap

import (
	"skiff/internal/config"
	"skiff/internal/errors"
)

// Default builds the stock global keymap. Buffer-management sequences
// live behind the b lead so single keys stay free for mail actions.
func Default() (*Keymap, error) {
	global := New("global")

	bindings := []struct {
		key    string
		action Action
	}{
		{"q", ActionQuitAsk},
		{"Q", ActionQuitNow},
		{"p", ActionPoll},
		{"/", ActionSearch},
		{"m", ActionCompose},
		{"?", ActionHelp},
		{"x", ActionKillBuffer},
		{"ctrl+l", ActionRedraw},
	}
	for _, b := range bindings {
		if err := global.Bind(b.key, b.action); err != nil {
			return nil, err
		}
	}

	bufmap := New("buffers")
	sub := []struct {
		key    string
		action Action
	}{
		{"n", ActionNextBuffer},
		{"p", ActionPrevBuffer},
		{"l", ActionListBuffers},
	}
	for _, b := range sub {
		if err := bufmap.Bind(b.key, b.action); err != nil {
			return nil, err
		}
	}
	if err := global.Submap("b", bufmap); err != nil {
		return nil, err
	}
	return global, nil
}

// ApplyOverrides rebinds actions per the keys section of the
// configuration. Unknown action names fail loudly so a typo in the
// config is noticed at startup, not at key press time.
func ApplyOverrides(km *Keymap, overrides []config.KeyOverride) error {
	for _, o := range overrides {
		action, ok := ByName(o.Action)
		if !ok {
			return errors.NewKeymapError("unknown action in keys override", o.Action, errors.InvalidConfig)
		}
		if err := km.Rebind(action, o.Key); err != nil {
			return err
		}
	}
	return nil
}
