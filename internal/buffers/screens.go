package buffers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"skiff/internal/input"
	"skiff/internal/keymap"
)

// InboxBuffer is the root screen: per-source new-mail counters. It is
// the one buffer that outlives everything else on the stack. Counters
// are updated from worker goroutines, so it carries its own lock.
type InboxBuffer struct {
	mu     sync.Mutex
	counts map[string]int
	order  []string
}

func NewInboxBuffer(sources []string) *InboxBuffer {
	b := &InboxBuffer{counts: make(map[string]int)}
	for _, s := range sources {
		b.counts[s] = 0
		b.order = append(b.order, s)
	}
	return b
}

func (b *InboxBuffer) Title() string { return "inbox" }

func (b *InboxBuffer) Keymap() *keymap.Keymap { return nil }

// AddMail records newly arrived mail for a source. Safe to call from
// any goroutine.
func (b *InboxBuffer) AddMail(source string, n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.counts[source]; !ok {
		b.order = append(b.order, source)
	}
	b.counts[source] += n
}

func (b *InboxBuffer) Draw(width, height int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	sb.WriteString("Sources\r\n\r\n")
	for _, name := range b.order {
		sb.WriteString(listStyle.Render(fmt.Sprintf("%-20s %d new", name, b.counts[name])))
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// ListBuffer shows the open buffers.
type ListBuffer struct {
	titles []string
}

func NewListBuffer(titles []string) *ListBuffer {
	return &ListBuffer{titles: titles}
}

func (b *ListBuffer) Title() string { return "buffer list" }

func (b *ListBuffer) Keymap() *keymap.Keymap { return nil }

func (b *ListBuffer) Draw(width, height int) string {
	var sb strings.Builder
	sb.WriteString("Open buffers\r\n\r\n")
	for i, t := range b.titles {
		sb.WriteString(listStyle.Render(fmt.Sprintf("%d. %s", i+1, t)))
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// HelpBuffer shows the bindings of the global and focused keymaps.
type HelpBuffer struct {
	lines []string
}

func NewHelpBuffer(local, global *keymap.Keymap) *HelpBuffer {
	b := &HelpBuffer{}
	b.collect("buffer", local)
	b.collect("global", global)
	return b
}

func (b *HelpBuffer) collect(scope string, km *keymap.Keymap) {
	if km == nil {
		return
	}
	keys := km.Keys()
	sort.Strings(keys)
	for _, key := range keys {
		if a, ok := km.Lookup(key); ok {
			b.lines = append(b.lines, fmt.Sprintf("%-12s %-16s (%s)", key, a.String(), scope))
		}
	}
}

func (b *HelpBuffer) Title() string { return "help" }

func (b *HelpBuffer) Keymap() *keymap.Keymap { return nil }

func (b *HelpBuffer) Draw(width, height int) string {
	var sb strings.Builder
	sb.WriteString("Key bindings\r\n\r\n")
	for _, line := range b.lines {
		sb.WriteString(listStyle.Render(line))
		sb.WriteString("\r\n")
	}
	return sb.String()
}

// PromptBuffer asks a yes/no question in focused input mode. While it
// is focused every key event comes here instead of the keybinding
// resolver; y confirms, anything else declines. The answer is reported
// through the callback and the prompt marks itself done.
type PromptBuffer struct {
	question string
	onAnswer func(yes bool)
	done     bool
}

func NewPromptBuffer(question string, onAnswer func(yes bool)) *PromptBuffer {
	return &PromptBuffer{question: question, onAnswer: onAnswer}
}

func (b *PromptBuffer) Title() string { return "prompt" }

func (b *PromptBuffer) Keymap() *keymap.Keymap { return nil }

func (b *PromptBuffer) Capturing() bool { return !b.done }

func (b *PromptBuffer) HandleInput(ev input.Event) bool {
	if ev.Type != input.EventKey {
		return false
	}
	b.done = true
	if b.onAnswer != nil {
		b.onAnswer(ev.Key == "y" || ev.Key == "Y")
	}
	return true
}

func (b *PromptBuffer) Draw(width, height int) string {
	return fmt.Sprintf("%s [y/N]\r\n", b.question)
}
