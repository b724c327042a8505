package nav

import (
	"relay-cli/internal/routes"
)

// RouteEntry is one screen instance on a stack.
type RouteEntry struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

// StackState is the history of one stack. Routes[0] is the entry screen and is
// never popped.
type StackState struct {
	Name   string       `json:"name"`
	Routes []RouteEntry `json:"routes"`

	def *routes.Stack
}

func newStackState(def *routes.Stack) *StackState {
	return &StackState{
		Name:   def.Name,
		Routes: []RouteEntry{{Name: def.Entry()}},
		def:    def,
	}
}

func (s *StackState) Index() int { return len(s.Routes) - 1 }

func (s *StackState) Top() RouteEntry { return s.Routes[len(s.Routes)-1] }

// Options derives the stack's navigation options from its current index.
func (s *StackState) Options() routes.Options {
	return s.def.NavigationOptions(s.Index())
}

func (s *StackState) push(name string, params map[string]string) {
	s.Routes = append(s.Routes, RouteEntry{Name: name, Params: copyParams(params)})
}

// navigate returns to an existing instance of name when there is one, refreshing
// its params, and pushes otherwise.
func (s *StackState) navigate(name string, params map[string]string) {
	for i := len(s.Routes) - 1; i >= 0; i-- {
		if s.Routes[i].Name != name {
			continue
		}
		s.Routes = s.Routes[:i+1]
		if params != nil {
			s.Routes[i].Params = copyParams(params)
		}
		return
	}
	s.push(name, params)
}

func (s *StackState) pop() bool {
	if len(s.Routes) <= 1 {
		return false
	}
	s.Routes = s.Routes[:len(s.Routes)-1]
	return true
}

func (s *StackState) popToTop() bool {
	if len(s.Routes) <= 1 {
		return false
	}
	s.Routes = s.Routes[:1]
	return true
}

func (s *StackState) clone() *StackState {
	if s == nil {
		return nil
	}
	out := &StackState{Name: s.Name, def: s.def, Routes: make([]RouteEntry, len(s.Routes))}
	for i, r := range s.Routes {
		out.Routes[i] = RouteEntry{Name: r.Name, Params: copyParams(r.Params)}
	}
	return out
}

func copyParams(p map[string]string) map[string]string {
	if p == nil {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// DrawerState tracks the active pane and each pane's own history.
type DrawerState struct {
	Open   bool          `json:"open"`
	Active int           `json:"active"`
	Panes  []*StackState `json:"panes"`

	def *routes.Drawer
}

func newDrawerState(def *routes.Drawer) *DrawerState {
	d := &DrawerState{def: def}
	for _, p := range def.Panes {
		d.Panes = append(d.Panes, newStackState(p))
	}
	return d
}

func (d *DrawerState) ActivePane() *StackState { return d.Panes[d.Active] }

// LockMode is recomputed from the active pane on every call. Panes that do not
// declare a lock mode leave the drawer unlocked.
func (d *DrawerState) LockMode() routes.LockMode {
	opts := d.ActivePane().Options()
	if !opts.HasLockMode {
		return routes.LockUnlocked
	}
	return opts.DrawerLockMode
}

// layeredState is the runtime state of a routes.ModalStack.
type layeredState struct {
	def       *routes.ModalStack
	presented []string
	stacks    map[string]*StackState
	drawers   map[string]*DrawerState
}

func newLayeredState(def *routes.ModalStack) *layeredState {
	l := &layeredState{
		def:     def,
		stacks:  map[string]*StackState{},
		drawers: map[string]*DrawerState{},
	}
	l.present(def.Layers[0].Name)
	return l
}

func (l *layeredState) present(name string) {
	_, layer := l.def.Layer(name)
	if layer == nil {
		return
	}
	switch c := layer.Container.(type) {
	case *routes.Stack:
		l.stacks[name] = newStackState(c)
	case *routes.Drawer:
		l.drawers[name] = newDrawerState(c)
	}
	l.presented = append(l.presented, name)
}

// dismissAbove drops every layer presented above name.
func (l *layeredState) dismissAbove(name string) {
	for i, p := range l.presented {
		if p != name {
			continue
		}
		for _, gone := range l.presented[i+1:] {
			delete(l.stacks, gone)
			delete(l.drawers, gone)
		}
		l.presented = l.presented[:i+1]
		return
	}
}

func (l *layeredState) top() string { return l.presented[len(l.presented)-1] }

func (l *layeredState) isPresented(name string) bool {
	for _, p := range l.presented {
		if p == name {
			return true
		}
	}
	return false
}

// focusedStack returns the stack that currently has focus in the top layer, or
// nil when the top layer is a bare screen.
func (l *layeredState) focusedStack() *StackState {
	top := l.top()
	if d, ok := l.drawers[top]; ok {
		return d.ActivePane()
	}
	return l.stacks[top]
}

func (l *layeredState) focusedRoute() RouteEntry {
	if s := l.focusedStack(); s != nil {
		return s.Top()
	}
	return RouteEntry{Name: l.top()}
}

// layerFor finds the layer declaring route name.
func (l *layeredState) layerFor(name string) string {
	for _, layer := range l.def.Layers {
		switch c := layer.Container.(type) {
		case *routes.Stack:
			if c.Has(name) {
				return layer.Name
			}
		case *routes.Drawer:
			if i, _ := c.PaneFor(name); i >= 0 {
				return layer.Name
			}
		default:
			if layer.Node != nil && layer.Node.Name == name {
				return layer.Name
			}
		}
	}
	return ""
}

func (l *layeredState) navigate(name string, params map[string]string) bool {
	// Prefer the focused context so shared route names stay where the user is.
	if s := l.focusedStack(); s != nil && s.def.Has(name) {
		s.navigate(name, params)
		if d := l.drawer(); d != nil {
			d.Open = false
		}
		return true
	}
	layer := l.layerFor(name)
	if layer == "" {
		return false
	}
	if l.isPresented(layer) {
		l.dismissAbove(layer)
	} else {
		l.present(layer)
	}
	if d, ok := l.drawers[layer]; ok {
		if d.def.Panes[d.Active].Has(name) {
			d.ActivePane().navigate(name, params)
		} else {
			i, _ := d.def.PaneFor(name)
			d.Active = i
			d.Panes[i].navigate(name, params)
		}
		d.Open = false
		return true
	}
	if s, ok := l.stacks[layer]; ok {
		s.navigate(name, params)
	}
	return true
}

func (l *layeredState) back() bool {
	top := l.top()
	if d, ok := l.drawers[top]; ok {
		if d.Open {
			d.Open = false
			return true
		}
		if d.ActivePane().pop() {
			return true
		}
	} else if s, ok := l.stacks[top]; ok && s.pop() {
		return true
	}
	if len(l.presented) > 1 {
		l.dismissAbove(l.presented[len(l.presented)-2])
		return true
	}
	return false
}

func (l *layeredState) drawer() *DrawerState {
	return l.drawers[l.top()]
}
