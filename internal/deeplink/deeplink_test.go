package deeplink

import (
	"reflect"
	"testing"
)

func TestResolve_KnownPrefixes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want *Route
	}{
		{"relay://room?rid=abc", &Route{Kind: KindRoom, Params: map[string]string{"rid": "abc"}}},
		{"https://go.relay.chat/auth?token=xyz", &Route{Kind: KindAuth, Params: map[string]string{"token": "xyz"}}},
		{"room?rid=abc&host=open.relay.chat", &Route{Kind: KindRoom, Params: map[string]string{"rid": "abc", "host": "open.relay.chat"}}},
		{"relay://auth?host=a.example&token=t1  ", &Route{Kind: KindAuth, Params: map[string]string{"host": "a.example", "token": "t1"}}},
		{"relay://room?rid=a&rid=b", &Route{Kind: KindRoom, Params: map[string]string{"rid": "b"}}},
	}
	for _, tc := range cases {
		got := Resolve(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Resolve(%q): want %#v; got %#v", tc.in, tc.want, got)
		}
	}
}

func TestResolve_RejectsForeignAndEmpty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"",
		"   ",
		"relay://room?",
		"relay://auth?   ",
		"https://go.relay.chat/room?",
		"relay://rooms?rid=abc",
		"relay://settings?x=1",
		"https://example.com/room?rid=abc",
		"mailto:someone@example.com",
		"xroom?rid=abc",
		"relay://relay://room?rid=abc",
	} {
		if got := Resolve(in); got != nil {
			t.Fatalf("Resolve(%q): expected nil; got %#v", in, got)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()

	a := Resolve("relay://room?rid=abc")
	b := Resolve("relay://room?rid=abc")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected equal results; got %#v and %#v", a, b)
	}
	a.Params["rid"] = "mutated"
	if b.Params["rid"] != "abc" {
		t.Fatalf("results share state: %#v", b)
	}
}

type fixedParser map[string]string

func (p fixedParser) Parse(string) map[string]string { return p }

func TestResolver_UsesParser(t *testing.T) {
	t.Parallel()

	r := Resolver{Parser: fixedParser{"custom": "1"}}
	got := r.Resolve("relay://auth?anything")
	if got == nil || got.Kind != KindAuth || got.Param("custom") != "1" {
		t.Fatalf("unexpected route: %#v", got)
	}
}

func TestRoute_Clone(t *testing.T) {
	t.Parallel()

	var nilRoute *Route
	if nilRoute.Clone() != nil || nilRoute.Param("x") != "" {
		t.Fatalf("nil route helpers should be no-ops")
	}
	r := &Route{Kind: KindRoom, Params: map[string]string{"rid": "1"}}
	c := r.Clone()
	c.Params["rid"] = "2"
	if r.Params["rid"] != "1" {
		t.Fatalf("clone shares params")
	}
}
