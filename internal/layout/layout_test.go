package layout

import (
	"testing"

	"relay-cli/internal/state"
)

type recorder struct {
	actions []state.Action
}

func (r *recorder) Dispatch(a state.Action) { r.actions = append(r.actions, a) }

func TestParseMode(t *testing.T) {
	t.Parallel()

	cases := map[string]Mode{"": ModeAuto, "auto": ModeAuto, " ON ": ModeOn, "never": ModeOff, "bogus": ModeAuto}
	for in, want := range cases {
		if got := ParseMode(in); got != want {
			t.Fatalf("ParseMode(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestDetector_AutoFollowsWidth(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	animations := 0
	d := &Detector{Mode: ModeAuto, MinWidth: 100, Dispatcher: r, Animator: AnimatorFunc(func() { animations++ })}

	d.OnLayout(80, 24)
	d.OnLayout(90, 30)
	d.OnLayout(140, 40)
	d.OnLayout(150, 40)
	d.OnLayout(99, 40)

	want := []state.Action{
		state.SetTablet{Tablet: false},
		state.SetTablet{Tablet: true},
		state.SetTablet{Tablet: false},
	}
	if len(r.actions) != len(want) {
		t.Fatalf("expected %d actions; got %#v", len(want), r.actions)
	}
	for i := range want {
		if r.actions[i] != want[i] {
			t.Fatalf("action %d: expected %#v; got %#v", i, want[i], r.actions[i])
		}
	}
	if animations != 3 {
		t.Fatalf("expected one animation per change; got %d", animations)
	}
	if !d.IsTablet(false) || d.IsTablet(true) {
		t.Fatalf("narrow auto terminal: capable but not split")
	}
}

func TestDetector_ForcedModes(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	off := &Detector{Mode: ModeOff, Dispatcher: r}
	off.OnLayout(300, 80)
	if len(r.actions) != 0 || off.IsTablet(false) {
		t.Fatalf("off mode must never dispatch; got %#v", r.actions)
	}

	on := &Detector{Mode: ModeOn, Dispatcher: r}
	on.OnLayout(40, 10)
	if len(r.actions) != 1 || r.actions[0] != (state.SetTablet{Tablet: true}) {
		t.Fatalf("on mode should report tablet; got %#v", r.actions)
	}
	if on.Width() != 40 {
		t.Fatalf("expected width to be recorded")
	}
}
