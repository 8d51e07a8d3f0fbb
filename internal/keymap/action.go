package keymap

// Action is the symbolic result of resolving an input event. Every
// action drives exactly one dispatch handler in the event loop.
type Action int

const (
	// ActionNone means the event was consumed without further effect
	// (handled by the focused mode, or a submap lead was entered).
	ActionNone Action = iota
	// ActionAborted means a multi-key sequence was started and the
	// following key matched nothing in the submap.
	ActionAborted
	ActionQuitNow
	ActionQuitAsk
	ActionPoll
	ActionSearch
	ActionCompose
	ActionReplyAll
	ActionRedraw
	ActionKillBuffer
	ActionNextBuffer
	ActionPrevBuffer
	ActionListBuffers
	ActionHelp
	ActionArchive
	ActionFlag
)

var actionNames = map[Action]string{
	ActionNone:        "none",
	ActionAborted:     "sequence_aborted",
	ActionQuitNow:     "quit_now",
	ActionQuitAsk:     "quit_ask",
	ActionPoll:        "poll",
	ActionSearch:      "search",
	ActionCompose:     "compose",
	ActionReplyAll:    "reply_all",
	ActionRedraw:      "redraw",
	ActionKillBuffer:  "kill_buffer",
	ActionNextBuffer:  "next_buffer",
	ActionPrevBuffer:  "prev_buffer",
	ActionListBuffers: "list_buffers",
	ActionHelp:        "help",
	ActionArchive:     "archive",
	ActionFlag:        "flag",
}

// String returns the stable symbolic name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// ByName resolves a symbolic action name, used for keybinding
// overrides from configuration.
func ByName(name string) (Action, bool) {
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}
	return ActionNone, false
}
