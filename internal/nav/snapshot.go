package nav

import (
	"relay-cli/internal/routes"
	"relay-cli/internal/state"
)

type DrawerSnapshot struct {
	Open     bool   `json:"open"`
	Pane     string `json:"pane"`
	LockMode string `json:"lockMode"`
}

type ModalSnapshot struct {
	Pane  string `json:"pane"`
	Route string `json:"route"`
	Index int    `json:"index"`
}

// Snapshot is a serializable, self-contained copy of the navigator's position.
type Snapshot struct {
	Root   state.Root        `json:"root"`
	Route  string            `json:"route"`
	Params map[string]string `json:"params,omitempty"`
	Stack  string            `json:"stack,omitempty"`
	Index  int               `json:"index"`
	Layers []string          `json:"layers,omitempty"`
	Drawer *DrawerSnapshot   `json:"drawer,omitempty"`
	Room   []RouteEntry      `json:"room,omitempty"`
	Modal  *ModalSnapshot    `json:"modal,omitempty"`
	Tablet bool              `json:"tablet"`
}

func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

func (n *Navigator) snapshotLocked() Snapshot {
	s := Snapshot{Root: n.root, Tablet: n.tablet}

	var tree *layeredState
	switch n.root {
	case state.RootAuthLoading:
		s.Route = n.table.AuthLoading.Name
	case state.RootOutside:
		tree = n.outside
	case state.RootInside:
		tree = n.inside
	case state.RootSetUsername:
		top := n.setUsername.Top()
		s.Route, s.Params, s.Stack, s.Index = top.Name, copyParams(top.Params), n.setUsername.Name, n.setUsername.Index()
	}

	if tree != nil {
		s.Layers = append([]string(nil), tree.presented...)
		top := tree.focusedRoute()
		s.Route, s.Params = top.Name, copyParams(top.Params)
		if st := tree.focusedStack(); st != nil {
			s.Stack, s.Index = st.Name, st.Index()
		}
		if d := tree.drawer(); d != nil {
			s.Drawer = &DrawerSnapshot{
				Open:     d.Open,
				Pane:     d.ActivePane().Name,
				LockMode: d.LockMode().String(),
			}
		}
	}

	if n.tablet && n.room != nil {
		s.Room = n.room.clone().Routes
	}
	if n.modal != nil {
		top := n.modal.Pane.Top()
		s.Modal = &ModalSnapshot{Pane: n.modal.Pane.Name, Route: top.Name, Index: n.modal.Pane.Index()}
	}
	return s
}

// CurrentRouteName is the screen the user is looking at: the modal's top when a
// modal pane other than the idle one is mounted, else the root tree's focus.
func (n *Navigator) CurrentRouteName() string {
	return n.Snapshot().ScreenName()
}

func (s Snapshot) ScreenName() string {
	if s.Modal != nil && s.Modal.Pane != routes.ModalIdle {
		return s.Modal.Route
	}
	return s.Route
}
