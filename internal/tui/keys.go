package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"relay-cli/internal/routes"
)

// drawerPanes are the stacks reachable through the pane keys, in key order.
var drawerPanes = []string{
	routes.ChatsStack,
	routes.ProfileStack,
	routes.SettingsStack,
	routes.AdminPanelStack,
}

type keyMap struct {
	Quit   key.Binding
	Back   key.Binding
	Top    key.Binding
	Drawer key.Binding
	Modal  key.Binding
	Open   key.Binding
	Panes  []key.Binding
}

func defaultKeyMap() keyMap {
	km := keyMap{
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Back:   key.NewBinding(key.WithKeys("backspace", "b"), key.WithHelp("b", "back")),
		Top:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "to top")),
		Drawer: key.NewBinding(key.WithKeys("tab", "d"), key.WithHelp("tab", "drawer")),
		Modal:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "modal")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	}
	for i := range drawerPanes {
		k := string(rune('1' + i))
		km.Panes = append(km.Panes, key.NewBinding(key.WithKeys(k), key.WithHelp(k, drawerPanes[i])))
	}
	return km
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Drawer, k.Modal, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), append([]key.Binding{k.Top}, k.Panes...)}
}
