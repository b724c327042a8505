package routes

// Route names used outside this package.
const (
	AuthLoadingView       = "AuthLoadingView"
	OnboardingView        = "OnboardingView"
	NewServerView         = "NewServerView"
	LoginView             = "LoginView"
	AuthenticationWebView = "AuthenticationWebView"
	RoomsListView         = "RoomsListView"
	RoomView              = "RoomView"
	ThreadMessagesView    = "ThreadMessagesView"
	TableView             = "TableView"
	NewMessageView        = "NewMessageView"
	DirectoryView         = "DirectoryView"
	SidebarView           = "SidebarView"
	RoomActionsView       = "RoomActionsView"
	ProfileView           = "ProfileView"
	SettingsView          = "SettingsView"
	AdminPanelView        = "AdminPanelView"
	SetUsernameView       = "SetUsernameView"
	JitsiMeetView         = "JitsiMeetView"

	// ModalIdle is the modal switch's initial pane; it renders nothing.
	ModalIdle = "Idle"
)

// Container names.
const (
	OutsideStackModal          = "OutsideStackModal"
	OutsideStack               = "OutsideStack"
	AuthenticationWebViewStack = "AuthenticationWebViewStack"
	InsideStackModal           = "InsideStackModal"
	MainDrawer                 = "Main"
	ChatsStack                 = "ChatsStack"
	ProfileStack               = "ProfileStack"
	SettingsStack              = "SettingsStack"
	AdminPanelStack            = "AdminPanelStack"
	NewMessageStack            = "NewMessageStack"
	RoomStack                  = "RoomStack"
	SetUsernameStack           = "SetUsernameStack"
	ModalSwitch                = "ModalSwitch"
	MessagesStack              = "MessagesStack"
	DirectoryStack             = "DirectoryStack"
	SidebarStack               = "SidebarStack"
	RoomActionsStack           = "RoomActionsStack"
)

// Factory builds the screen implementation identified by view.
type Factory func(view string) Screen

// Table is the complete, immutable route declaration of the client.
type Table struct {
	AuthLoading Node
	Outside     *ModalStack
	Inside      *ModalStack
	SetUsername *Stack
	// Room is the room pane shown beside the master pane in tablet mode.
	Room  *Stack
	Modal *Switch
}

type builder struct {
	factory Factory
}

func (b builder) node(name, view string) Node {
	if view == "" {
		view = name
	}
	f := b.factory
	return Node{
		Name:    name,
		View:    view,
		Resolve: func() Screen { return f(view) },
		Header:  DefaultHeader,
	}
}

func (b builder) stack(name string, lock bool, nodes ...Node) *Stack {
	return &Stack{Name: name, Nodes: nodes, LockMode: lock, Mode: PresentCard}
}

// NewTable declares every tree. factory is captured by the node resolvers and is
// not called here.
func NewTable(factory Factory) *Table {
	b := builder{factory: factory}

	outside := b.stack(OutsideStack, false,
		withHeader(b.node(OnboardingView, ""), HeaderConfig{Hidden: true}),
		b.node(NewServerView, ""),
		b.node("LoginSignupView", ""),
		b.node(LoginView, ""),
		b.node("ForgotPasswordView", ""),
		b.node("RegisterView", ""),
		b.node("LegalView", ""),
	)
	authWebView := b.stack(AuthenticationWebViewStack, false, b.node(AuthenticationWebView, ""))

	chatsRoutes := func() []Node {
		return []Node{
			b.node(RoomView, ""),
			b.node(ThreadMessagesView, ""),
			b.node(TableView, ""),
		}
	}
	roomInteraction := func() []Node {
		return []Node{
			b.node(RoomActionsView, ""),
			b.node("RoomInfoView", ""),
			b.node("RoomInfoEditView", ""),
			b.node("RoomMembersView", ""),
			b.node("SearchMessagesView", ""),
			b.node("SelectedUsersView", ""),
			b.node("MessagesView", ""),
			b.node("AutoTranslateView", ""),
			b.node("ReadReceiptsView", "ReadReceiptView"),
		}
	}
	newMessage := func(name string) *Stack {
		return b.stack(name, false,
			b.node(NewMessageView, ""),
			b.node("SelectedUsersViewCreateChannel", "SelectedUsersView"),
			b.node("CreateChannelView", ""),
		)
	}

	chatsNodes := []Node{b.node(RoomsListView, "")}
	chatsNodes = append(chatsNodes, roomInteraction()...)
	chatsNodes = append(chatsNodes,
		b.node(DirectoryView, ""),
		b.node("NotificationPrefView", "NotificationPreferencesView"),
	)
	chatsNodes = append(chatsNodes, chatsRoutes()...)
	chats := b.stack(ChatsStack, true, chatsNodes...)

	profile := b.stack(ProfileStack, true, b.node(ProfileView, ""))
	settings := b.stack(SettingsStack, true, b.node(SettingsView, ""), b.node("LanguageView", ""))
	admin := b.stack(AdminPanelStack, false, b.node(AdminPanelView, ""))

	drawer := &Drawer{Name: MainDrawer, Panes: []*Stack{chats, profile, settings, admin}}
	jitsi := b.node(JitsiMeetView, "")

	roomActionsNodes := append(roomInteraction(), b.node("NotificationPrefView", "NotificationPreferencesView"))

	return &Table{
		AuthLoading: b.node(AuthLoadingView, ""),
		Outside: &ModalStack{Name: OutsideStackModal, Layers: []Layer{
			{Name: OutsideStack, Container: outside},
			{Name: AuthenticationWebViewStack, Container: authWebView},
		}},
		Inside: &ModalStack{Name: InsideStackModal, Layers: []Layer{
			{Name: MainDrawer, Container: drawer},
			{Name: NewMessageStack, Container: newMessage(NewMessageStack)},
			{Name: JitsiMeetView, Node: &jitsi},
		}},
		SetUsername: b.stack(SetUsernameStack, false, b.node(SetUsernameView, "")),
		Room:        b.stack(RoomStack, false, chatsRoutes()...),
		Modal: &Switch{
			Name: ModalSwitch,
			Panes: []*Stack{
				newMessage(MessagesStack),
				b.stack(DirectoryStack, false, b.node(DirectoryView, "")),
				b.stack(SidebarStack, false, b.node(SidebarView, "")),
				b.stack(RoomActionsStack, false, roomActionsNodes...),
				profile,
				settings,
				admin,
				b.stack(ModalIdle, false, b.node(ModalIdle, "")),
			},
			Initial: ModalIdle,
		},
	}
}

func withHeader(n Node, h HeaderConfig) Node {
	n.Header = h
	return n
}

// Entry describes one declared node and where it sits in the table.
type Entry struct {
	Path []string
	Node Node
}

// Walk calls fn for every node in declaration order. Nodes shared between trees
// are reported once per location.
func (t *Table) Walk(fn func(Entry)) {
	if t == nil {
		return
	}
	fn(Entry{Path: []string{"App"}, Node: t.AuthLoading})
	walkContainer([]string{"App"}, t.Outside, fn)
	walkContainer([]string{"App"}, t.Inside, fn)
	walkContainer([]string{"App"}, t.SetUsername, fn)
	walkContainer([]string{"RoomContainer"}, t.Room, fn)
	walkContainer([]string{"ModalContainer"}, t.Modal, fn)
}

func walkContainer(prefix []string, c Container, fn func(Entry)) {
	path := append(append([]string{}, prefix...), ContainerName(c))
	switch c := c.(type) {
	case *Stack:
		for _, n := range c.Nodes {
			fn(Entry{Path: path, Node: n})
		}
	case *Drawer:
		for _, p := range c.Panes {
			walkContainer(path, p, fn)
		}
	case *Switch:
		for _, p := range c.Panes {
			walkContainer(path, p, fn)
		}
	case *ModalStack:
		for _, l := range c.Layers {
			if l.Container != nil {
				walkContainer(path, l.Container, fn)
			} else if l.Node != nil {
				fn(Entry{Path: path, Node: *l.Node})
			}
		}
	}
}

// Names returns every distinct route name in the table.
func (t *Table) Names() []string {
	seen := map[string]bool{}
	var out []string
	t.Walk(func(e Entry) {
		if seen[e.Node.Name] {
			return
		}
		seen[e.Node.Name] = true
		out = append(out, e.Node.Name)
	})
	return out
}

// Lookup returns the first declaration of route name.
func (t *Table) Lookup(name string) (Entry, bool) {
	var found Entry
	ok := false
	t.Walk(func(e Entry) {
		if ok || e.Node.Name != name {
			return
		}
		found, ok = e, true
	})
	return found, ok
}
