package locale

import (
	"testing"

	"relay-cli/internal/routes"
)

func TestMatch(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{in: "", want: "en"},
		{in: "de", want: "de"},
		{in: "de-AT", want: "de"},
		{in: "fr", want: "en"},
		{in: "!!", want: "en"},
	}
	for _, tc := range cases {
		if got := Match(tc.in).String(); got != tc.want {
			t.Fatalf("Match(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestTranslator_Title(t *testing.T) {
	t.Parallel()

	de, err := New("de")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table := routes.NewTable(func(string) routes.Screen { return nil })

	e, ok := table.Lookup("ReadReceiptsView")
	if !ok {
		t.Fatalf("ReadReceiptsView missing")
	}
	if got := de.Title(e.Node); got != "Lesebestätigungen" {
		t.Fatalf("expected title from the shared view; got %q", got)
	}

	en, err := New("en-US")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := en.Text(routes.RoomsListView); got != "Messages" {
		t.Fatalf("unexpected english title %q", got)
	}
	if got := en.Text("NoSuchView"); got != "NoSuchView" {
		t.Fatalf("missing ids should fall back to the id; got %q", got)
	}
	n := routes.Node{Name: "X", Header: routes.HeaderConfig{TitleID: routes.ProfileView}}
	if got := en.Title(n); got != "Profile" {
		t.Fatalf("TitleID should win; got %q", got)
	}
}

func TestEveryViewHasATitle(t *testing.T) {
	t.Parallel()

	tr, err := New("de")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	table := routes.NewTable(func(string) routes.Screen { return nil })
	table.Walk(func(e routes.Entry) {
		if e.Node.Name == routes.ModalIdle {
			return
		}
		if got := tr.Title(e.Node); got == e.Node.View {
			t.Fatalf("no german title for %s (view %s)", e.Node.Name, e.Node.View)
		}
	})
}
