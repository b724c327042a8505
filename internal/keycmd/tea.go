package keycmd

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Bindings maps terminal keys to key command inputs.
type Bindings struct {
	Escape key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
}

// DefaultBindings uses escapeKeys for the escape command ("esc" when empty).
func DefaultBindings(escapeKeys ...string) Bindings {
	if len(escapeKeys) == 0 {
		escapeKeys = []string{"esc"}
	}
	return Bindings{
		Escape: key.NewBinding(key.WithKeys(escapeKeys...), key.WithHelp(escapeKeys[0], "close modal")),
		Up:     key.NewBinding(key.WithKeys("up")),
		Down:   key.NewBinding(key.WithKeys("down")),
		Left:   key.NewBinding(key.WithKeys("left")),
		Right:  key.NewBinding(key.WithKeys("right")),
	}
}

// FromTeaKey converts a terminal key press into a key command event. Alt is
// reported as a modifier, so bindings are matched without it.
func FromTeaKey(msg tea.KeyMsg, b Bindings) (Event, bool) {
	var mods Modifier
	if msg.Alt {
		mods |= ModAlt
		msg.Alt = false
	}
	switch {
	case key.Matches(msg, b.Escape):
		return Event{Input: InputEscape, Modifiers: mods}, true
	case key.Matches(msg, b.Up):
		return Event{Input: InputUpArrow, Modifiers: mods}, true
	case key.Matches(msg, b.Down):
		return Event{Input: InputDownArrow, Modifiers: mods}, true
	case key.Matches(msg, b.Left):
		return Event{Input: InputLeftArrow, Modifiers: mods}, true
	case key.Matches(msg, b.Right):
		return Event{Input: InputRightArrow, Modifiers: mods}, true
	}
	return Event{}, false
}
