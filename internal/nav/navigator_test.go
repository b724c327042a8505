package nav

import (
	"errors"
	"sync"
	"testing"
	"time"

	"relay-cli/internal/routes"
	"relay-cli/internal/state"
)

type stubScreen string

func (s stubScreen) Title() string        { return string(s) }
func (s stubScreen) View(int, int) string { return string(s) }

func newTable() *routes.Table {
	return routes.NewTable(func(view string) routes.Screen { return stubScreen(view) })
}

func insideNavigator(t *testing.T) *Navigator {
	t.Helper()
	n := New(newTable(), Options{})
	if err := n.SwitchRoot(state.RootInside); err != nil {
		t.Fatalf("SwitchRoot: %v", err)
	}
	return n
}

func TestNavigator_StartsInAuthLoading(t *testing.T) {
	t.Parallel()

	n := New(newTable(), Options{})
	if n.Root() != state.RootAuthLoading {
		t.Fatalf("expected AuthLoading; got %v", n.Root())
	}
	if got := n.CurrentRouteName(); got != routes.AuthLoadingView {
		t.Fatalf("expected %s; got %s", routes.AuthLoadingView, got)
	}
	if err := n.Navigate(routes.RoomView, nil); !errors.Is(err, ErrNoActiveTree) {
		t.Fatalf("expected ErrNoActiveTree; got %v", err)
	}
	// Staying in AuthLoading is not a re-entry.
	if err := n.SwitchRoot(state.RootAuthLoading); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNavigator_AuthLoadingIsNeverReentered(t *testing.T) {
	t.Parallel()

	for _, r := range []state.Root{state.RootOutside, state.RootInside, state.RootSetUsername} {
		n := New(newTable(), Options{})
		if err := n.SwitchRoot(r); err != nil {
			t.Fatalf("SwitchRoot(%v): %v", r, err)
		}
		if err := n.SwitchRoot(state.RootAuthLoading); !errors.Is(err, ErrAuthLoadingReentry) {
			t.Fatalf("from %v: expected ErrAuthLoadingReentry; got %v", r, err)
		}
		if n.Root() != r {
			t.Fatalf("root should stay %v; got %v", r, n.Root())
		}
	}
}

func TestNavigator_DrawerLockModeFollowsEachStack(t *testing.T) {
	t.Parallel()

	n := insideNavigator(t)
	if n.DrawerLockMode() != routes.LockUnlocked {
		t.Fatalf("expected unlocked at RoomsListView")
	}

	chats := []string{routes.RoomView, routes.ThreadMessagesView, "RoomMembersView", "ReadReceiptsView"}
	for i, name := range chats {
		if err := n.Push(name, nil); err != nil {
			t.Fatalf("Push(%s): %v", name, err)
		}
		snap := n.Snapshot()
		if snap.Index != i+1 {
			t.Fatalf("expected index %d; got %d", i+1, snap.Index)
		}
		if got := n.DrawerLockMode(); got != routes.LockLockedClosed {
			t.Fatalf("index %d: expected locked-closed; got %v", snap.Index, got)
		}
	}

	// Switching panes uses the other stack's own index.
	if err := n.JumpToPane(routes.SettingsStack); err != nil {
		t.Fatalf("JumpToPane: %v", err)
	}
	if got := n.DrawerLockMode(); got != routes.LockUnlocked {
		t.Fatalf("settings at index 0: expected unlocked; got %v", got)
	}
	if err := n.Navigate("LanguageView", nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if got := n.DrawerLockMode(); got != routes.LockLockedClosed {
		t.Fatalf("settings at index 1: expected locked-closed; got %v", got)
	}

	// Chats kept its own history.
	if err := n.JumpToPane(routes.ChatsStack); err != nil {
		t.Fatalf("JumpToPane: %v", err)
	}
	if snap := n.Snapshot(); snap.Index != len(chats) || snap.Route != "ReadReceiptsView" {
		t.Fatalf("chats history lost: %#v", snap)
	}

	for i := len(chats); i > 0; i-- {
		if !n.Back() {
			t.Fatalf("Back at %d should pop", i)
		}
	}
	if got := n.DrawerLockMode(); got != routes.LockUnlocked {
		t.Fatalf("back at entry: expected unlocked; got %v", got)
	}

	// Admin panel declares no lock mode.
	if err := n.JumpToPane(routes.AdminPanelStack); err != nil {
		t.Fatalf("JumpToPane: %v", err)
	}
	if got := n.DrawerLockMode(); got != routes.LockUnlocked {
		t.Fatalf("admin: expected unlocked; got %v", got)
	}
}

func TestNavigator_OpenDrawerRespectsLock(t *testing.T) {
	t.Parallel()

	n := insideNavigator(t)
	if !n.OpenDrawer() {
		t.Fatalf("drawer should open at index 0")
	}
	if n.OpenDrawer() {
		t.Fatalf("already open")
	}
	if !n.Back() {
		t.Fatalf("back should close the drawer")
	}
	if n.Snapshot().Drawer.Open {
		t.Fatalf("drawer should be closed")
	}

	if err := n.Navigate(routes.RoomView, map[string]string{"rid": "r1"}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if n.OpenDrawer() || n.ToggleDrawer() {
		t.Fatalf("drawer must stay closed while locked")
	}
	if lm := n.Snapshot().Drawer.LockMode; lm != "locked-closed" {
		t.Fatalf("unexpected snapshot lock mode %q", lm)
	}
}

func TestNavigator_NavigateReusesExistingRoute(t *testing.T) {
	t.Parallel()

	n := insideNavigator(t)
	_ = n.Navigate(routes.RoomView, map[string]string{"rid": "a"})
	_ = n.Navigate(routes.RoomActionsView, nil)
	_ = n.Navigate(routes.RoomView, map[string]string{"rid": "b"})

	snap := n.Snapshot()
	if snap.Route != routes.RoomView || snap.Index != 1 || snap.Params["rid"] != "b" {
		t.Fatalf("expected to pop back to RoomView with new params; got %#v", snap)
	}
	if !n.PopToTop() || n.CurrentRouteName() != routes.RoomsListView {
		t.Fatalf("PopToTop should land on RoomsListView")
	}
	if n.PopToTop() {
		t.Fatalf("PopToTop at entry should report no change")
	}
}

func TestNavigator_UnknownAndUnreachable(t *testing.T) {
	t.Parallel()

	n := insideNavigator(t)
	var unk *routes.UnknownRouteError
	if err := n.Navigate("RoomVeiw", nil); !errors.As(err, &unk) || unk.Suggestion != routes.RoomView {
		t.Fatalf("expected suggestion; got %v", err)
	}
	if err := n.Navigate(routes.LoginView, nil); !errors.Is(err, ErrNotReachable) {
		t.Fatalf("expected ErrNotReachable; got %v", err)
	}
	if err := n.Push(routes.LoginView, nil); !errors.As(err, &unk) {
		t.Fatalf("Push outside focused stack: expected UnknownRouteError; got %v", err)
	}
	if err := n.JumpToPane("Nope"); !errors.As(err, &unk) {
		t.Fatalf("expected UnknownRouteError; got %v", err)
	}
}

func TestNavigator_OutsideModalLayers(t *testing.T) {
	t.Parallel()

	n := New(newTable(), Options{})
	if err := n.SwitchRoot(state.RootOutside); err != nil {
		t.Fatalf("SwitchRoot: %v", err)
	}
	_ = n.Navigate(routes.NewServerView, nil)
	_ = n.Navigate(routes.LoginView, nil)
	if err := n.Navigate(routes.AuthenticationWebView, map[string]string{"url": "https://sso"}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	snap := n.Snapshot()
	if len(snap.Layers) != 2 || snap.Route != routes.AuthenticationWebView {
		t.Fatalf("expected web view presented over outside stack; got %#v", snap)
	}

	// Dismissing returns to the outside screen underneath, history intact.
	if !n.Back() {
		t.Fatalf("Back should dismiss the web view")
	}
	if got := n.CurrentRouteName(); got != routes.LoginView {
		t.Fatalf("expected LoginView; got %s", got)
	}

	// Navigating to an outside route from the web view also dismisses it.
	_ = n.Navigate(routes.AuthenticationWebView, nil)
	_ = n.Navigate(routes.NewServerView, nil)
	snap = n.Snapshot()
	if len(snap.Layers) != 1 || snap.Route != routes.NewServerView || snap.Index != 1 {
		t.Fatalf("unexpected state: %#v", snap)
	}
}

func TestNavigator_InsideModalLayers(t *testing.T) {
	t.Parallel()

	n := insideNavigator(t)
	_ = n.Navigate(routes.NewMessageView, nil)
	_ = n.Navigate("CreateChannelView", nil)
	snap := n.Snapshot()
	if snap.Stack != routes.NewMessageStack || snap.Index != 1 {
		t.Fatalf("expected new message stack; got %#v", snap)
	}
	if snap.Drawer != nil || n.DrawerLockMode() != routes.LockUnlocked || n.OpenDrawer() {
		t.Fatalf("the drawer is covered by the new message layer; got %#v", snap.Drawer)
	}
	_ = n.Navigate(routes.JitsiMeetView, nil)
	if got := n.CurrentRouteName(); got != routes.JitsiMeetView {
		t.Fatalf("expected jitsi; got %s", got)
	}
	n.Back()
	if got := n.CurrentRouteName(); got != "CreateChannelView" {
		t.Fatalf("expected CreateChannelView after dismiss; got %s", got)
	}
	n.Back()
	n.Back()
	if snap := n.Snapshot(); snap.Drawer == nil || snap.Drawer.Pane != routes.ChatsStack {
		t.Fatalf("the drawer should be reported again once it is on top; got %#v", snap)
	}
}

func TestNavigator_ModalRemountStartsFresh(t *testing.T) {
	t.Parallel()

	n := insideNavigator(t)
	n.SetTablet(true)
	n.SetModalVisible(true)
	if snap := n.Snapshot(); snap.Modal == nil || snap.Modal.Pane != routes.ModalIdle {
		t.Fatalf("expected modal at idle pane; got %#v", snap.Modal)
	}

	_ = n.Navigate(routes.RoomActionsView, nil)
	_ = n.Navigate("RoomMembersView", nil)
	if snap := n.Snapshot(); snap.Modal.Pane != routes.RoomActionsStack || snap.Modal.Index != 1 {
		t.Fatalf("expected modal sub-navigation; got %#v", snap.Modal)
	}

	n.SetModalVisible(false)
	if n.ModalMounted() {
		t.Fatalf("modal should be unmounted")
	}
	n.SetModalVisible(true)
	snap := n.Snapshot()
	if snap.Modal == nil || snap.Modal.Pane != routes.ModalIdle || snap.Modal.Index != 0 {
		t.Fatalf("reopen should land on the initial pane; got %#v", snap.Modal)
	}
	if snap.ScreenName() != snap.Route {
		t.Fatalf("idle modal should not own the screen name")
	}
}

type recordingDispatcher struct {
	mu      sync.Mutex
	actions []state.Action
}

func (d *recordingDispatcher) Dispatch(a state.Action) {
	d.mu.Lock()
	d.actions = append(d.actions, a)
	d.mu.Unlock()
}

func TestNavigator_TabletRouting(t *testing.T) {
	t.Parallel()

	d := &recordingDispatcher{}
	n := New(newTable(), Options{Dispatch: d})
	_ = n.SwitchRoot(state.RootInside)
	n.SetTablet(true)

	if err := n.Navigate(routes.RoomView, map[string]string{"rid": "r1"}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	snap := n.Snapshot()
	if len(snap.Room) != 1 || snap.Room[0].Params["rid"] != "r1" {
		t.Fatalf("room should open in the room pane; got %#v", snap.Room)
	}
	if snap.Route != routes.RoomsListView {
		t.Fatalf("master pane should stay on the list; got %s", snap.Route)
	}

	_ = n.Navigate(routes.ThreadMessagesView, nil)
	_ = n.Navigate(routes.RoomView, map[string]string{"rid": "r2"})
	if snap := n.Snapshot(); len(snap.Room) != 1 || snap.Room[0].Params["rid"] != "r2" {
		t.Fatalf("opening another room replaces the room pane; got %#v", snap.Room)
	}

	if err := n.Navigate(routes.DirectoryView, nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if snap := n.Snapshot(); snap.Modal == nil || snap.Modal.Pane != routes.DirectoryStack {
		t.Fatalf("directory should open in the modal; got %#v", snap.Modal)
	}
	if len(d.actions) != 1 || d.actions[0] != (state.SetModal{Show: true}) {
		t.Fatalf("expected SetModal{true} dispatch; got %#v", d.actions)
	}

	n.SetTablet(false)
	if n.ModalMounted() {
		t.Fatalf("leaving tablet mode unmounts the modal")
	}
}

func TestNavigator_IdleModalDoesNotTakeFocus(t *testing.T) {
	t.Parallel()

	n := insideNavigator(t)
	if err := n.Navigate(routes.DirectoryView, nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	n.SetTablet(true)
	_ = n.Navigate(routes.RoomView, map[string]string{"rid": "r1"})
	_ = n.Navigate(routes.ThreadMessagesView, nil)

	n.SetModalVisible(true)
	if snap := n.Snapshot(); snap.Modal == nil || snap.Modal.Pane != routes.ModalIdle {
		t.Fatalf("modal should mount on its idle pane; got %#v", snap.Modal)
	}

	if !n.Back() {
		t.Fatalf("back should pop the room pane behind an idle modal")
	}
	if snap := n.Snapshot(); len(snap.Room) != 1 || snap.Room[0].Name != routes.RoomView {
		t.Fatalf("expected the room pane back at RoomView; got %#v", snap.Room)
	}

	if err := n.Push(routes.ThreadMessagesView, nil); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if snap := n.Snapshot(); len(snap.Room) != 2 {
		t.Fatalf("push should land on the room pane; got %#v", snap.Room)
	}
	if !n.PopToTop() {
		t.Fatalf("pop to top should reach the room pane")
	}
	if snap := n.Snapshot(); len(snap.Room) != 1 {
		t.Fatalf("expected the room pane at its entry; got %#v", snap.Room)
	}

	if !n.PopToTop() || n.CurrentRouteName() != routes.RoomsListView {
		t.Fatalf("pop to top should then reach the drawer stack; got %s", n.CurrentRouteName())
	}
	if !n.ModalMounted() {
		t.Fatalf("the idle modal should stay mounted")
	}
}

func TestNavigator_AppliesGlobalState(t *testing.T) {
	t.Parallel()

	st := state.NewStore()
	n := New(newTable(), Options{Dispatch: st})
	st.Subscribe(n.Subscriber())

	st.Dispatch(state.AppStart{Root: state.RootInside})
	if n.Root() != state.RootInside {
		t.Fatalf("expected inside; got %v", n.Root())
	}
	st.Dispatch(state.SetTablet{Tablet: true})
	st.Dispatch(state.SetModal{Show: true})
	if !n.ModalMounted() {
		t.Fatalf("showModal should mount the modal")
	}
	_ = n.Navigate(routes.SidebarView, nil)
	st.Dispatch(state.SetModal{Show: false})
	st.Dispatch(state.SetModal{Show: true})
	if snap := n.Snapshot(); snap.Modal.Pane != routes.ModalIdle {
		t.Fatalf("expected fresh modal; got %#v", snap.Modal)
	}

	// Tablet routing goes through the store and comes back through Apply.
	st.Dispatch(state.SetModal{Show: false})
	if err := n.Navigate(routes.ProfileView, nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if !st.State().ShowModal {
		t.Fatalf("global state should show the modal")
	}
	if snap := n.Snapshot(); snap.Modal == nil || snap.Modal.Pane != routes.ProfileStack {
		t.Fatalf("modal should stay on the profile pane; got %#v", snap.Modal)
	}

	st.Dispatch(state.AppStart{Root: state.RootOutside})
	if n.ModalMounted() || n.Root() != state.RootOutside {
		t.Fatalf("leaving inside should drop the modal")
	}
}

func TestTracker_ReportsTransitionsWithoutBlocking(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var mu sync.Mutex
	var seen []Snapshot
	tr := NewTracker(func(prev, next Snapshot) {
		<-release
		mu.Lock()
		seen = append(seen, next)
		mu.Unlock()
	})

	n := New(newTable(), Options{Tracker: tr})
	n.SetTablet(true)
	done := make(chan struct{})
	go func() {
		_ = n.SwitchRoot(state.RootInside)
		for i := 0; i < 20; i++ {
			_ = n.Navigate(routes.RoomView, map[string]string{"rid": "r1"})
			_ = n.Navigate(routes.ThreadMessagesView, nil)
			_ = n.Back()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("navigation blocked on the state change callback")
	}
	close(release)
	tr.Close()

	mu.Lock()
	defer mu.Unlock()
	// Tablet toggle, root switch and the first room open, then a push and a pop
	// per round. Reopening the same room changes nothing.
	want := 2 + 1 + 20*2
	if len(seen) != want || tr.Delivered() != int64(want) {
		t.Fatalf("expected every transition delivered; got %d (delivered=%d), want %d", len(seen), tr.Delivered(), want)
	}
	if seen[1].Root != state.RootInside {
		t.Fatalf("second transition should be the root switch; got %#v", seen[1])
	}
	if last := seen[len(seen)-1]; len(last.Room) != 1 || last.Room[0].Name != routes.RoomView {
		t.Fatalf("transitions should arrive in order; last was %#v", last.Room)
	}
}

func TestTracker_PanicDoesNotBreakNavigation(t *testing.T) {
	t.Parallel()

	calls := 0
	tr := NewTracker(func(prev, next Snapshot) {
		calls++
		panic("boom")
	})
	n := New(newTable(), Options{Tracker: tr})
	if err := n.SwitchRoot(state.RootOutside); err != nil {
		t.Fatalf("SwitchRoot: %v", err)
	}
	if err := n.Navigate(routes.LoginView, nil); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	tr.Close()
	if calls != 2 {
		t.Fatalf("expected 2 callbacks; got %d", calls)
	}
	tr.Track(Snapshot{}, Snapshot{})
	var nilTracker *Tracker
	nilTracker.Track(Snapshot{}, Snapshot{})
	nilTracker.Close()
}
