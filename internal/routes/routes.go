// Package routes declares the client's static route table: which screens exist,
// how they are grouped into stacks, drawers and switches, and the per-stack
// drawer lock derivation.
package routes

import "fmt"

// Screen is a renderable unit produced by a node's resolver.
type Screen interface {
	Title() string
	View(width, height int) string
}

// ScreenFunc builds a screen. It is only called on first navigation to the node.
type ScreenFunc func() Screen

type HeaderConfig struct {
	// TitleID is the localization message id for the header title.
	TitleID string `json:"titleId,omitempty" yaml:"titleId,omitempty"`
	Hidden  bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// DefaultHeader is shared by every node that does not override it.
var DefaultHeader = HeaderConfig{}

type Node struct {
	Name string
	// View identifies the screen implementation; several routes may share one.
	View    string
	Resolve ScreenFunc
	Header  HeaderConfig
}

type PresentationMode int

const (
	PresentCard PresentationMode = iota
	PresentModal
)

func (p PresentationMode) String() string {
	if p == PresentModal {
		return "modal"
	}
	return "card"
}

type LockMode int

const (
	LockUnlocked LockMode = iota
	LockLockedClosed
)

func (l LockMode) String() string {
	switch l {
	case LockUnlocked:
		return "unlocked"
	case LockLockedClosed:
		return "locked-closed"
	default:
		return fmt.Sprintf("lock(%d)", int(l))
	}
}

// LockModeFor derives the drawer lock mode from a stack index: only the entry
// screen leaves the drawer swipeable.
func LockModeFor(index int) LockMode {
	if index > 0 {
		return LockLockedClosed
	}
	return LockUnlocked
}

// Options is derived UI state a stack exposes to its enclosing navigator.
type Options struct {
	DrawerLockMode LockMode
	HasLockMode    bool
}

// Stack is an ordered set of nodes; Nodes[0] is the entry screen.
type Stack struct {
	Name     string
	Nodes    []Node
	LockMode bool
	Mode     PresentationMode
}

// NavigationOptions computes the stack's derived options at index.
func (s *Stack) NavigationOptions(index int) Options {
	if s == nil || !s.LockMode {
		return Options{}
	}
	return Options{DrawerLockMode: LockModeFor(index), HasLockMode: true}
}

func (s *Stack) Entry() string {
	if s == nil || len(s.Nodes) == 0 {
		return ""
	}
	return s.Nodes[0].Name
}

func (s *Stack) Has(name string) bool {
	_, ok := s.Node(name)
	return ok
}

func (s *Stack) Node(name string) (Node, bool) {
	if s == nil {
		return Node{}, false
	}
	for _, n := range s.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

func (s *Stack) containerName() string { return s.Name }

// Drawer is a set of panes, each a stack, switched through a side panel.
type Drawer struct {
	Name  string
	Panes []*Stack
}

func (d *Drawer) containerName() string { return d.Name }

func (d *Drawer) Pane(name string) (int, *Stack) {
	for i, p := range d.Panes {
		if p.Name == name {
			return i, p
		}
	}
	return -1, nil
}

// PaneFor returns the first pane that declares route name.
func (d *Drawer) PaneFor(name string) (int, *Stack) {
	for i, p := range d.Panes {
		if p.Has(name) {
			return i, p
		}
	}
	return -1, nil
}

// Switch shows exactly one pane at a time and keeps no history between panes.
type Switch struct {
	Name    string
	Panes   []*Stack
	Initial string
}

func (s *Switch) containerName() string { return s.Name }

func (s *Switch) Pane(name string) *Stack {
	for _, p := range s.Panes {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (s *Switch) PaneFor(name string) *Stack {
	for _, p := range s.Panes {
		if p.Has(name) {
			return p
		}
	}
	return nil
}

// Layer is one entry of a ModalStack: either a nested container or a bare screen.
type Layer struct {
	Name      string
	Container Container
	Node      *Node
}

// ModalStack presents its layers on top of each other; layer 0 is the base.
// Dismissing a layer returns to whatever is underneath with its state intact.
type ModalStack struct {
	Name   string
	Layers []Layer
}

func (m *ModalStack) containerName() string { return m.Name }

func (m *ModalStack) Layer(name string) (int, *Layer) {
	for i := range m.Layers {
		if m.Layers[i].Name == name {
			return i, &m.Layers[i]
		}
	}
	return -1, nil
}

// Container is implemented by *Stack, *Drawer, *Switch and *ModalStack.
type Container interface {
	containerName() string
}

// ContainerName returns the declared name of c.
func ContainerName(c Container) string {
	if c == nil {
		return ""
	}
	return c.containerName()
}
