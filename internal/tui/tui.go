// Package tui is the interactive terminal host: it renders the navigator's
// position and turns key presses into navigation and key commands.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"relay-cli/internal/state"
)

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, d Deps) error {
	applyThemePreference()
	applyColorProfilePreference()

	p := tea.NewProgram(newModel(d), tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the program loop runs, and dispatches may come from the
	// loop itself.
	unsubscribe := d.Store.Subscribe(func(_, _ state.State, a state.Action) {
		go p.Send(stateChangedMsg{action: a.Type()})
	})
	defer unsubscribe()
	if d.Keys != nil {
		defer d.Keys.Detach()
	}

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
