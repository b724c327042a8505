package state

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"relay-cli/internal/deeplink"
)

func TestReduce(t *testing.T) {
	t.Parallel()

	s := Initial()
	if s.Root != RootAuthLoading || s.ShowModal || s.Initialized {
		t.Fatalf("unexpected initial state: %#v", s)
	}

	s = Reduce(s, AppInit{})
	if !s.Initialized {
		t.Fatalf("AppInit should mark initialized")
	}

	route := &deeplink.Route{Kind: deeplink.KindRoom, Params: map[string]string{"rid": "r1"}}
	s = Reduce(s, DeepLinkingOpen{Route: route})
	route.Params["rid"] = "mutated"
	if s.DeepLink.Param("rid") != "r1" {
		t.Fatalf("reducer must not alias the dispatched route; got %#v", s.DeepLink)
	}

	s = Reduce(s, AppStart{Root: RootInside})
	if s.Root != RootInside || !s.Inside {
		t.Fatalf("expected inside; got %#v", s)
	}
	s = Reduce(s, SetTablet{Tablet: true})
	s = Reduce(s, SetModal{Show: true})
	if !s.ShowModal {
		t.Fatalf("expected modal shown")
	}
	s = Reduce(s, AppStart{Root: RootOutside})
	if s.Inside || s.ShowModal {
		t.Fatalf("leaving inside should hide the modal; got %#v", s)
	}
	s = Reduce(s, SetModal{Show: true})
	s = Reduce(s, SetTablet{Tablet: false})
	if s.ShowModal || s.Tablet {
		t.Fatalf("leaving tablet should hide the modal; got %#v", s)
	}
}

func TestRoot_ParseAndMarshal(t *testing.T) {
	t.Parallel()

	for _, r := range []Root{RootAuthLoading, RootOutside, RootInside, RootSetUsername} {
		got, err := ParseRoot(r.String())
		if err != nil || got != r {
			t.Fatalf("ParseRoot(%q): %v %v", r.String(), got, err)
		}
	}
	if _, err := ParseRoot("sideways"); err == nil {
		t.Fatalf("expected error")
	}
	b, err := json.Marshal(State{Root: RootInside})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"root":"InsideStack"`) {
		t.Fatalf("unexpected json: %s", b)
	}
}

func TestStore_EffectsQueueBehindCurrentAction(t *testing.T) {
	t.Parallel()

	st := NewStore()
	var seen []string
	st.Subscribe(func(prev, next State, a Action) {
		seen = append(seen, a.Type())
	})
	st.Use(func(a Action, s State, d Dispatcher) {
		if _, ok := a.(AppInit); ok {
			d.Dispatch(AppStart{Root: RootOutside})
		}
	})
	st.Use(func(a Action, s State, d Dispatcher) {
		if _, ok := a.(AppInit); ok {
			seen = append(seen, "second-effect")
		}
	})

	st.Dispatch(AppInit{})

	want := "APP.INIT,second-effect,APP.START"
	if got := strings.Join(seen, ","); got != want {
		t.Fatalf("order: want %s; got %s", want, got)
	}
	if st.State().Root != RootOutside {
		t.Fatalf("expected outside; got %v", st.State().Root)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	t.Parallel()

	st := NewStore()
	n := 0
	off := st.Subscribe(func(State, State, Action) { n++ })
	st.Dispatch(SetTablet{Tablet: true})
	off()
	off()
	st.Dispatch(SetTablet{Tablet: false})
	st.Dispatch(nil)
	if n != 1 {
		t.Fatalf("expected 1 notification; got %d", n)
	}
}

func TestStore_RecoversFromPanickingSubscriber(t *testing.T) {
	t.Parallel()

	st := NewStore()
	fail := true
	st.Subscribe(func(State, State, Action) {
		if fail {
			fail = false
			panic("subscriber failed")
		}
	})

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected the subscriber panic to reach the caller")
			}
		}()
		st.Dispatch(SetModal{Show: true})
	}()
	if !st.State().ShowModal {
		t.Fatalf("the action should be applied before subscribers run")
	}

	st.Dispatch(SetTablet{Tablet: true})
	if !st.State().Tablet {
		t.Fatalf("dispatch should keep working after a panic")
	}
}

func TestStore_ConcurrentDispatchIsTotallyOrdered(t *testing.T) {
	t.Parallel()

	st := NewStore()
	var mu sync.Mutex
	var last State
	applied := 0
	st.Subscribe(func(prev, next State, a Action) {
		mu.Lock()
		defer mu.Unlock()
		if applied > 0 && prev != last {
			t.Errorf("subscriber saw a gap: prev=%#v last=%#v", prev, last)
		}
		last = next
		applied++
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st.Dispatch(SetModal{Show: i%2 == 0})
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if applied != 50 {
		t.Fatalf("expected 50 applied actions; got %d", applied)
	}
}
