package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"go.uber.org/atomic"

	"relay-cli/internal/keycmd"
	"relay-cli/internal/layout"
	"relay-cli/internal/locale"
	"relay-cli/internal/nav"
	"relay-cli/internal/routes"
	"relay-cli/internal/state"
)

// Deps is everything the TUI drives. Store, Nav and Table are required.
type Deps struct {
	Store    *state.Store
	Nav      *nav.Navigator
	Table    *routes.Table
	Registry *routes.Registry
	Locale   *locale.Translator
	Emitter  *keycmd.Emitter
	Keys     *keycmd.Dispatcher
	Bindings keycmd.Bindings
	Layout   *layout.Detector
}

// stateChangedMsg is sent whenever the store applies an action outside Update,
// e.g. a deep link arriving over the local socket.
type stateChangedMsg struct{ action string }

const drawerWidth = 26

type model struct {
	d    Deps
	keys keyMap
	help help.Model

	width  int
	height int

	routes    list.Model
	listStack string

	status    string
	statusErr bool

	// animate asks the next frame to render as a transition.
	animate *atomic.Bool
}

func newModel(d Deps) model {
	if d.Registry == nil {
		d.Registry = routes.NewRegistry(d.Table)
	}
	m := model{
		d:       d,
		keys:    defaultKeyMap(),
		help:    help.New(),
		animate: atomic.NewBool(false),
	}
	if d.Layout != nil && d.Layout.Animator == nil {
		anim := m.animate
		d.Layout.Animator = layout.AnimatorFunc(func() { anim.Store(true) })
	}
	m.routes = newRouteList()
	m.syncRoutes()
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.d.Layout != nil {
			m.d.Layout.OnLayout(msg.Width, msg.Height)
		}
		m.syncKeyCommands()
		m.resize()

	case stateChangedMsg:
		m.syncKeyCommands()

	case tea.KeyMsg:
		var done bool
		m, cmd, done = m.handleKey(msg)
		if !done {
			m.routes, cmd = m.routes.Update(msg)
		}
	}
	m.syncRoutes()
	return m, cmd
}

func (m *model) syncKeyCommands() {
	if m.d.Keys != nil {
		m.d.Keys.Sync(m.d.Store.State().Tablet)
	}
}

// handleKey reports done when the key was consumed and must not reach the list.
func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd, bool) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit, true
	}

	if ev, ok := keycmd.FromTeaKey(msg, m.d.Bindings); ok {
		modal := m.d.Store.State().ShowModal
		if m.d.Emitter != nil {
			m.d.Emitter.Emit(keycmd.KeyCommand, ev)
		}
		if ev.Input != keycmd.InputEscape {
			return m, nil, false
		}
		if modal && !m.d.Store.State().ShowModal {
			m.setStatus("modal closed", false)
			return m, nil, true
		}
		m.back()
		return m, nil, true
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.back()
	case key.Matches(msg, m.keys.Top):
		if !m.d.Nav.PopToTop() {
			m.setStatus("already at the top", false)
		}
	case key.Matches(msg, m.keys.Drawer):
		wasOpen := m.drawerOpen()
		if !m.d.Nav.ToggleDrawer() && !wasOpen && m.d.Nav.DrawerLockMode() == routes.LockLockedClosed {
			m.setStatus("drawer is locked here", false)
		}
	case key.Matches(msg, m.keys.Modal):
		st := m.d.Store.State()
		if !st.Tablet || st.Root != state.RootInside {
			m.setStatus("modals need the split layout", true)
			break
		}
		m.d.Store.Dispatch(state.SetModal{Show: !st.ShowModal})
	case key.Matches(msg, m.keys.Open):
		it, ok := m.routes.SelectedItem().(routeItem)
		if !ok {
			break
		}
		if err := m.d.Nav.Navigate(it.name, nil); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus("", false)
		}
	default:
		for i, b := range m.keys.Panes {
			if !key.Matches(msg, b) {
				continue
			}
			if err := m.d.Nav.JumpToPane(drawerPanes[i]); err != nil {
				m.setStatus(err.Error(), true)
			}
			return m, nil, true
		}
		return m, nil, false
	}
	return m, nil, true
}

func (m *model) back() {
	if !m.d.Nav.Back() {
		m.setStatus("nothing to go back to", false)
		return
	}
	m.setStatus("", false)
}

func (m *model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m model) drawerOpen() bool {
	snap := m.d.Nav.Snapshot()
	return snap.Drawer != nil && snap.Drawer.Open
}

// focusedStack is the stack whose routes the list offers: the modal pane when a
// real one is mounted, else the root tree's focus.
func focusedStack(snap nav.Snapshot) string {
	if snap.Modal != nil && snap.Modal.Pane != routes.ModalIdle {
		return snap.Modal.Pane
	}
	return snap.Stack
}

func (m *model) syncRoutes() {
	snap := m.d.Nav.Snapshot()
	name := focusedStack(snap)
	if name == m.listStack {
		return
	}
	m.listStack = name
	var items []list.Item
	for _, n := range stackNodes(m.d.Table, name) {
		items = append(items, routeItem{name: n.Name, title: m.title(n)})
	}
	m.routes.SetItems(items)
	m.routes.Select(0)
	m.routes.Title = name
}

// stackNodes returns the distinct nodes declared directly in the stack named name.
func stackNodes(t *routes.Table, name string) []routes.Node {
	if name == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []routes.Node
	t.Walk(func(e routes.Entry) {
		if len(e.Path) == 0 || e.Path[len(e.Path)-1] != name || seen[e.Node.Name] {
			return
		}
		seen[e.Node.Name] = true
		out = append(out, e.Node)
	})
	return out
}

func (m model) title(n routes.Node) string {
	if m.d.Locale == nil {
		return n.Name
	}
	return m.d.Locale.Title(n)
}

func (m model) routeTitle(name string) string {
	e, ok := m.d.Table.Lookup(name)
	if !ok {
		return name
	}
	return m.title(e.Node)
}

func (m *model) resize() {
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	m.routes.SetSize(m.masterWidth(), h/2)
	m.help.Width = m.width
}

func (m model) masterWidth() int {
	if m.d.Store.State().Tablet {
		return m.width * 2 / 5
	}
	return m.width
}

func (m model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	snap := m.d.Nav.Snapshot()

	header := m.viewHeader(snap)
	footer := m.viewFooter()
	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 1 {
		bodyH = 1
	}
	body := m.viewBody(snap, m.width, bodyH)
	if m.animate.Swap(false) {
		body = styleMuted().Render(xansi.Strip(body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m model) viewHeader(snap nav.Snapshot) string {
	parts := []string{styleBadge().Render("relay"), styleHeader().Render(snap.Root.String())}
	for _, l := range snap.Layers {
		parts = append(parts, styleMuted().Render(l))
	}
	parts = append(parts, styleHeader().Render(m.routeTitle(snap.Route)))
	if snap.Tablet {
		parts = append(parts, styleMuted().Render("[split]"))
	}
	return normalizePane(strings.Join(parts, " › "), m.width, 1)
}

func (m model) viewFooter() string {
	status := ""
	if m.status != "" {
		status = styleMuted().Render(m.status)
		if m.statusErr {
			status = styleError().Render(m.status)
		}
	}
	return normalizePane(status, m.width, 1) + "\n" + normalizePane(m.help.View(m.keys), m.width, 1)
}

func (m model) viewBody(snap nav.Snapshot, width, height int) string {
	masterW := width
	var cols []string

	if snap.Drawer != nil && snap.Drawer.Open {
		cols = append(cols, normalizePane(m.viewDrawer(snap), drawerWidth, height))
		masterW -= drawerWidth
	}
	roomW := 0
	if snap.Tablet && len(snap.Room) > 0 {
		roomW = width * 3 / 5
		masterW -= roomW
	}
	if masterW < 1 {
		masterW = 1
	}
	cols = append(cols, normalizePane(m.viewMaster(snap, masterW, height), masterW, height))
	if roomW > 0 {
		room := snap.Room[len(snap.Room)-1]
		cols = append(cols, normalizePane(m.viewRoom(room, roomW, height), roomW, height))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	if snap.Modal != nil && snap.Modal.Pane != routes.ModalIdle {
		body = overlayCenter(body, m.viewModal(snap, width, height), width, height)
	}
	return body
}

func (m model) viewDrawer(snap nav.Snapshot) string {
	lines := []string{styleHeader().Render("Drawer"), styleMuted().Render(snap.Drawer.LockMode)}
	for i, p := range drawerPanes {
		label := fmt.Sprintf("%d %s", i+1, p)
		if p == snap.Drawer.Pane {
			label = styleBadge().Render(label)
		}
		lines = append(lines, label)
	}
	return stylePane(true).Width(drawerWidth - 2).Render(strings.Join(lines, "\n"))
}

func (m model) viewMaster(snap nav.Snapshot, width, height int) string {
	listH := m.routes.Height()
	screenH := height - listH - 1
	if screenH < 1 {
		screenH = 1
	}
	top := m.viewScreen(snap.Route, snap.Params, width, screenH)
	return top + "\n" + m.routes.View()
}

func (m model) viewRoom(room nav.RouteEntry, width, height int) string {
	inner := width - 2
	if inner < 1 {
		inner = 1
	}
	var content string
	if room.Params["rid"] == "" {
		content = normalizePane(styleMuted().Render("No room selected"), inner, height-2)
	} else {
		content = m.viewScreen(room.Name, room.Params, inner, height-2)
	}
	return stylePane(false).Render(content)
}

func (m model) viewModal(snap nav.Snapshot, width, height int) string {
	w := width * 3 / 5
	h := height * 3 / 5
	if w < 20 {
		w = width
	}
	if h < 5 {
		h = height
	}
	inner := m.viewScreen(snap.Modal.Route, nil, w-4, h-2)
	return styleModal().Render(inner)
}

func (m model) viewScreen(name string, params map[string]string, width, height int) string {
	if m.d.Registry == nil {
		return normalizePane(name, width, height)
	}
	scr, err := m.d.Registry.Screen(name)
	if err != nil {
		return normalizePane(styleError().Render(err.Error()), width, height)
	}
	if scr == nil {
		return normalizePane(m.routeTitle(name), width, height)
	}
	if p := paramsMarkdown(params); p != "" {
		view := scr.View(width, 0)
		return normalizePane(strings.TrimRight(view, " \n")+"\n"+renderMarkdown(p, width), width, height)
	}
	return scr.View(width, height)
}

type routeItem struct {
	name  string
	title string
}

func (i routeItem) Title() string       { return i.title }
func (i routeItem) Description() string { return i.name }
func (i routeItem) FilterValue() string { return i.title }

func newRouteList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(true)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	// Escape and q are handled by the model.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}
