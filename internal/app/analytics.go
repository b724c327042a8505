package app

import (
	"relay-cli/internal/nav"
	"relay-cli/internal/telemetry"
)

// ScreenViews logs a screen view whenever the visible screen changes.
func ScreenViews(a *telemetry.Analytics) nav.StateChangeFunc {
	return func(prev, next nav.Snapshot) {
		if name := next.ScreenName(); name != prev.ScreenName() {
			a.LogScreenView(name)
		}
	}
}
