// Package layout decides whether the terminal is wide enough for the split
// (tablet) layout.
package layout

import (
	"strings"

	"go.uber.org/atomic"

	"relay-cli/internal/state"
)

// DefaultMinWidth is the narrowest terminal that gets the split layout.
const DefaultMinWidth = 120

// Mode is the `layout.tablet` setting.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeOn   Mode = "on"
	ModeOff  Mode = "off"
)

func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeOn, "true", "always":
		return ModeOn
	case ModeOff, "false", "never":
		return ModeOff
	}
	return ModeAuto
}

// Animator is asked to animate the next layout change.
type Animator interface {
	AnimateNextTransition()
}

type AnimatorFunc func()

func (f AnimatorFunc) AnimateNextTransition() { f() }

type Detector struct {
	Mode       Mode
	MinWidth   int
	Dispatcher state.Dispatcher
	Animator   Animator

	width  atomic.Int64
	tablet atomic.Bool
	known  atomic.Bool
}

func (d *Detector) minWidth() int {
	if d.MinWidth > 0 {
		return d.MinWidth
	}
	return DefaultMinWidth
}

// IsTablet reports whether the split layout applies. Non-strict asks whether
// the split layout is possible at all; strict also requires the current width
// to allow it.
func (d *Detector) IsTablet(strict bool) bool {
	switch d.Mode {
	case ModeOff:
		return false
	case ModeOn:
		return true
	}
	if !strict {
		return true
	}
	return int(d.width.Load()) >= d.minWidth()
}

// OnLayout records the new terminal size. When the split decision changes it
// animates the transition and dispatches SetTablet.
func (d *Detector) OnLayout(width, height int) {
	d.width.Store(int64(width))
	if !d.IsTablet(false) {
		return
	}
	next := d.IsTablet(true)
	if d.known.Load() && d.tablet.Load() == next {
		return
	}
	if d.Animator != nil {
		d.Animator.AnimateNextTransition()
	}
	d.tablet.Store(next)
	d.known.Store(true)
	if d.Dispatcher != nil {
		d.Dispatcher.Dispatch(state.SetTablet{Tablet: next})
	}
}

func (d *Detector) Width() int { return int(d.width.Load()) }
