// Package nav is the client's navigation state machine: a root switch over the
// outside, inside and set-username trees, a drawer inside, and an independently
// mounted modal switch layered on top.
package nav

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"relay-cli/internal/logging"
	"relay-cli/internal/routes"
	"relay-cli/internal/state"
)

var (
	// ErrAuthLoadingReentry means something tried to move the root switch back to
	// AuthLoading after startup already left it. That is a logic defect.
	ErrAuthLoadingReentry = errors.New("nav: AuthLoading re-entered after startup")
	// ErrNoActiveTree is returned when navigating before the root left AuthLoading.
	ErrNoActiveTree = errors.New("nav: no active navigation tree")
	// ErrNotReachable is returned for declared routes outside the active tree.
	ErrNotReachable = errors.New("nav: route not reachable from the active tree")
)

// ModalState is the runtime state of the modal switch while it is mounted.
type ModalState struct {
	Pane *StackState `json:"pane"`
}

type Navigator struct {
	mu sync.Mutex

	table    *routes.Table
	dispatch state.Dispatcher
	tracker  *Tracker

	root            state.Root
	leftAuthLoading bool
	tablet          bool

	outside     *layeredState
	inside      *layeredState
	setUsername *StackState
	room        *StackState
	modal       *ModalState
}

type Options struct {
	// Dispatch receives actions the navigator needs reflected in global state
	// (tablet routing mounts the modal through it). Optional.
	Dispatch state.Dispatcher
	// Tracker receives every state change. Optional.
	Tracker *Tracker
}

func New(table *routes.Table, opts Options) *Navigator {
	return &Navigator{
		table:    table,
		dispatch: opts.Dispatch,
		tracker:  opts.Tracker,
		root:     state.RootAuthLoading,
	}
}

// change runs fn under the lock, reports the transition to the tracker and then
// dispatches whatever fn queued. Dispatching happens unlocked because store
// subscribers call back into the navigator.
func (n *Navigator) change(fn func() ([]state.Action, error)) error {
	n.mu.Lock()
	prev := n.snapshotLocked()
	actions, err := fn()
	next := n.snapshotLocked()
	n.mu.Unlock()

	if !reflect.DeepEqual(prev, next) {
		n.tracker.Track(prev, next)
	}
	if n.dispatch != nil {
		for _, a := range actions {
			n.dispatch.Dispatch(a)
		}
	}
	return err
}

func (n *Navigator) Root() state.Root {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.root
}

// SwitchRoot moves the root switch. The target tree starts fresh at its entry.
func (n *Navigator) SwitchRoot(r state.Root) error {
	return n.change(func() ([]state.Action, error) {
		return nil, n.switchRootLocked(r)
	})
}

func (n *Navigator) switchRootLocked(r state.Root) error {
	if r == state.RootAuthLoading {
		if n.leftAuthLoading {
			return ErrAuthLoadingReentry
		}
		return nil
	}
	if r == n.root {
		return nil
	}
	n.leftAuthLoading = true
	n.root = r
	n.outside, n.inside, n.setUsername, n.room = nil, nil, nil, nil
	switch r {
	case state.RootOutside:
		n.outside = newLayeredState(n.table.Outside)
	case state.RootInside:
		n.inside = newLayeredState(n.table.Inside)
		n.room = newStackState(n.table.Room)
	case state.RootSetUsername:
		n.setUsername = newStackState(n.table.SetUsername)
	}
	if r != state.RootInside {
		n.modal = nil
	}
	return nil
}

// SetModalVisible mounts or unmounts the modal switch. Mounting always starts at
// the switch's initial pane; unmounting discards all modal state.
func (n *Navigator) SetModalVisible(show bool) {
	_ = n.change(func() ([]state.Action, error) {
		n.setModalLocked(show)
		return nil, nil
	})
}

func (n *Navigator) setModalLocked(show bool) {
	if !show {
		n.modal = nil
		return
	}
	if n.modal != nil {
		return
	}
	n.modal = &ModalState{Pane: newStackState(n.table.Modal.Pane(n.table.Modal.Initial))}
}

func (n *Navigator) ModalMounted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.modal != nil
}

func (n *Navigator) SetTablet(tablet bool) {
	_ = n.change(func() ([]state.Action, error) {
		n.tablet = tablet
		if !tablet {
			n.modal = nil
		}
		return nil, nil
	})
}

// Apply brings the navigator in line with global state. It is meant to be
// registered as a store subscriber.
func (n *Navigator) Apply(s state.State) {
	err := n.change(func() ([]state.Action, error) {
		n.tablet = s.Tablet
		err := n.switchRootLocked(s.Root)
		n.setModalLocked(s.ShowModal && s.Root == state.RootInside)
		return nil, err
	})
	if err != nil {
		logging.For("nav").Error("apply global state", "root", s.Root, "err", err)
	}
}

// Subscriber adapts Apply to state.Store.Subscribe.
func (n *Navigator) Subscriber() state.Subscriber {
	return func(_, next state.State, _ state.Action) { n.Apply(next) }
}

// Navigate focuses route name, pushing it where it is declared.
func (n *Navigator) Navigate(name string, params map[string]string) error {
	return n.change(func() ([]state.Action, error) {
		return n.navigateLocked(name, params)
	})
}

func (n *Navigator) navigateLocked(name string, params map[string]string) ([]state.Action, error) {
	if _, ok := n.table.Lookup(name); !ok {
		return nil, &routes.UnknownRouteError{Name: name, Suggestion: routes.Suggest(name, n.table.Names())}
	}

	if n.modal != nil {
		if n.modal.Pane.def.Has(name) {
			n.modal.Pane.navigate(name, params)
			return nil, nil
		}
		if p := n.table.Modal.PaneFor(name); p != nil && p.Name != routes.ModalIdle {
			n.modal.Pane = newStackState(p)
			n.modal.Pane.navigate(name, params)
			return nil, nil
		}
	}

	switch n.root {
	case state.RootOutside:
		if n.outside.navigate(name, params) {
			return nil, nil
		}
	case state.RootSetUsername:
		if n.setUsername.def.Has(name) {
			n.setUsername.navigate(name, params)
			return nil, nil
		}
	case state.RootInside:
		if n.tablet {
			if n.table.Room.Has(name) {
				if name == n.table.Room.Entry() {
					n.room = newStackState(n.table.Room)
					n.room.Routes[0].Params = copyParams(params)
				} else {
					n.room.navigate(name, params)
				}
				return nil, nil
			}
			if p := n.table.Modal.PaneFor(name); p != nil && p.Name != routes.ModalIdle {
				n.modal = &ModalState{Pane: newStackState(p)}
				n.modal.Pane.navigate(name, params)
				return []state.Action{state.SetModal{Show: true}}, nil
			}
		}
		if n.inside.navigate(name, params) {
			return nil, nil
		}
	default:
		return nil, ErrNoActiveTree
	}
	return nil, fmt.Errorf("%w: %s (root %s)", ErrNotReachable, name, n.root)
}

// Push always adds a new instance of name to the focused stack.
func (n *Navigator) Push(name string, params map[string]string) error {
	return n.change(func() ([]state.Action, error) {
		s := n.focusedStackLocked()
		if s == nil {
			return nil, ErrNoActiveTree
		}
		if n.modalFocusLocked() == nil && n.tablet && n.room != nil && n.room.def.Has(name) {
			s = n.room
		}
		if !s.def.Has(name) {
			return nil, &routes.UnknownRouteError{Name: name, Suggestion: routes.Suggest(name, nodeNames(s.def))}
		}
		s.push(name, params)
		return nil, nil
	})
}

// Back pops the focused stack, closes an open drawer or dismisses the top layer.
// It reports whether anything changed.
func (n *Navigator) Back() bool {
	changed := false
	_ = n.change(func() ([]state.Action, error) {
		if m := n.modalFocusLocked(); m != nil {
			changed = m.pop()
			return nil, nil
		}
		switch n.root {
		case state.RootOutside:
			changed = n.outside.back()
		case state.RootInside:
			if n.tablet && n.room.pop() {
				changed = true
				return nil, nil
			}
			changed = n.inside.back()
		case state.RootSetUsername:
			changed = n.setUsername.pop()
		}
		return nil, nil
	})
	return changed
}

func (n *Navigator) PopToTop() bool {
	changed := false
	_ = n.change(func() ([]state.Action, error) {
		if n.modalFocusLocked() == nil && n.root == state.RootInside && n.tablet && n.room.popToTop() {
			changed = true
			return nil, nil
		}
		if s := n.focusedStackLocked(); s != nil {
			changed = s.popToTop()
		}
		return nil, nil
	})
	return changed
}

// DrawerLockMode derives the lock mode from the active drawer pane's index.
func (n *Navigator) DrawerLockMode() routes.LockMode {
	n.mu.Lock()
	defer n.mu.Unlock()
	if d := n.drawerLocked(); d != nil {
		return d.LockMode()
	}
	return routes.LockUnlocked
}

// OpenDrawer opens the drawer unless the active pane keeps it locked closed.
func (n *Navigator) OpenDrawer() bool {
	opened := false
	_ = n.change(func() ([]state.Action, error) {
		d := n.drawerLocked()
		if d == nil || d.Open || d.LockMode() == routes.LockLockedClosed {
			return nil, nil
		}
		d.Open = true
		opened = true
		return nil, nil
	})
	return opened
}

func (n *Navigator) CloseDrawer() {
	_ = n.change(func() ([]state.Action, error) {
		if d := n.drawerLocked(); d != nil {
			d.Open = false
		}
		return nil, nil
	})
}

func (n *Navigator) ToggleDrawer() bool {
	n.mu.Lock()
	d := n.drawerLocked()
	open := d != nil && d.Open
	n.mu.Unlock()
	if open {
		n.CloseDrawer()
		return false
	}
	return n.OpenDrawer()
}

// JumpToPane activates a drawer pane by stack name, keeping its history.
func (n *Navigator) JumpToPane(name string) error {
	return n.change(func() ([]state.Action, error) {
		d := n.drawerLocked()
		if d == nil {
			return nil, ErrNoActiveTree
		}
		i, _ := d.def.Pane(name)
		if i < 0 {
			var names []string
			for _, p := range d.def.Panes {
				names = append(names, p.Name)
			}
			return nil, &routes.UnknownRouteError{Name: name, Suggestion: routes.Suggest(name, names)}
		}
		d.Active = i
		d.Open = false
		return nil, nil
	})
}

func (n *Navigator) drawerLocked() *DrawerState {
	if n.root != state.RootInside || n.inside == nil {
		return nil
	}
	return n.inside.drawer()
}

// modalFocusLocked returns the mounted modal pane unless it is the idle one,
// which draws nothing and so never takes focus.
func (n *Navigator) modalFocusLocked() *StackState {
	if n.modal == nil || n.modal.Pane.Name == routes.ModalIdle {
		return nil
	}
	return n.modal.Pane
}

func (n *Navigator) focusedStackLocked() *StackState {
	if m := n.modalFocusLocked(); m != nil {
		return m
	}
	switch n.root {
	case state.RootOutside:
		return n.outside.focusedStack()
	case state.RootInside:
		return n.inside.focusedStack()
	case state.RootSetUsername:
		return n.setUsername
	}
	return nil
}

func nodeNames(s *routes.Stack) []string {
	out := make([]string, 0, len(s.Nodes))
	for _, nd := range s.Nodes {
		out = append(out, nd.Name)
	}
	return out
}
