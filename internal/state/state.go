// Package state holds the process-wide navigation state and the single ordered
// channel through which it is mutated.
package state

import (
	"fmt"

	"relay-cli/internal/deeplink"
)

// Root is the top-level switch position of the app.
type Root int

const (
	RootAuthLoading Root = iota
	RootOutside
	RootInside
	RootSetUsername
)

func (r Root) String() string {
	switch r {
	case RootAuthLoading:
		return "AuthLoading"
	case RootOutside:
		return "OutsideStack"
	case RootInside:
		return "InsideStack"
	case RootSetUsername:
		return "SetUsernameStack"
	default:
		return fmt.Sprintf("root(%d)", int(r))
	}
}

func (r Root) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// ParseRoot accepts both the stack names and the short forms used by the CLI.
func ParseRoot(s string) (Root, error) {
	switch s {
	case "AuthLoading", "auth-loading":
		return RootAuthLoading, nil
	case "OutsideStack", "outside":
		return RootOutside, nil
	case "InsideStack", "inside":
		return RootInside, nil
	case "SetUsernameStack", "set-username":
		return RootSetUsername, nil
	}
	return 0, fmt.Errorf("unknown root %q", s)
}

// State is the global navigation state. Values are copied out to readers; only
// the Store mutates it.
type State struct {
	Root      Root            `json:"root"`
	ShowModal bool            `json:"showModal"`
	Tablet    bool            `json:"tablet"`
	Inside    bool            `json:"inside"`
	DeepLink  *deeplink.Route `json:"deepLink,omitempty"`
	// Initialized is set once app init or a deep link open has been dispatched.
	Initialized bool `json:"initialized"`
}

func Initial() State {
	return State{Root: RootAuthLoading}
}

type Action interface {
	Type() string
}

type AppInit struct{}

func (AppInit) Type() string { return "APP.INIT" }

type DeepLinkingOpen struct {
	Route *deeplink.Route
}

func (DeepLinkingOpen) Type() string { return "DEEP_LINKING.OPEN" }

// AppStart moves the root switch.
type AppStart struct {
	Root Root
}

func (AppStart) Type() string { return "APP.START" }

type SetModal struct {
	Show bool
}

func (SetModal) Type() string { return "MODAL.SET" }

type SetTablet struct {
	Tablet bool
}

func (SetTablet) Type() string { return "LAYOUT.SET_TABLET" }

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AppInit:
		s.Initialized = true
	case DeepLinkingOpen:
		s.Initialized = true
		s.DeepLink = a.Route.Clone()
	case AppStart:
		s.Root = a.Root
		s.Inside = a.Root == RootInside
		if !s.Inside {
			s.ShowModal = false
		}
	case SetModal:
		s.ShowModal = a.Show
	case SetTablet:
		s.Tablet = a.Tablet
		if !a.Tablet {
			s.ShowModal = false
		}
	}
	return s
}
