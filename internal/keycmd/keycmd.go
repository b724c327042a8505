// Package keycmd turns hardware key presses into navigation commands. In split
// (tablet) layout the escape key closes the modal overlay.
package keycmd

import (
	"sync"

	"relay-cli/internal/logging"
	"relay-cli/internal/state"
)

// KeyCommand is the emitter channel key events are published on.
const KeyCommand = "onKeyCommand"

// Key inputs, named the way hardware keyboards report them.
const (
	InputEscape     = "UIKeyInputEscape"
	InputUpArrow    = "UIKeyInputUpArrow"
	InputDownArrow  = "UIKeyInputDownArrow"
	InputLeftArrow  = "UIKeyInputLeftArrow"
	InputRightArrow = "UIKeyInputRightArrow"
)

type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

type Event struct {
	Input     string
	Modifiers Modifier
}

// Handle reports whether ev is input pressed with exactly mods held.
func Handle(ev Event, input string, mods ...Modifier) bool {
	var want Modifier
	for _, m := range mods {
		want |= m
	}
	return ev.Input == input && ev.Modifiers == want
}

// Listener receives whatever was emitted; payloads are not typed.
type Listener func(payload any)

// Emitter is a named-channel event bus.
type Emitter struct {
	mu     sync.Mutex
	next   int
	byChan map[string][]listenerEntry
}

type listenerEntry struct {
	id int
	fn Listener
}

func NewEmitter() *Emitter {
	return &Emitter{byChan: map[string][]listenerEntry{}}
}

// On registers fn on channel and returns a function removing it.
func (e *Emitter) On(channel string, fn Listener) (off func()) {
	e.mu.Lock()
	id := e.next
	e.next++
	e.byChan[channel] = append(e.byChan[channel], listenerEntry{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			ls := e.byChan[channel]
			for i, l := range ls {
				if l.id == id {
					e.byChan[channel] = append(ls[:i:i], ls[i+1:]...)
					break
				}
			}
		})
	}
}

// Emit calls the channel's listeners in registration order and returns how
// many there were.
func (e *Emitter) Emit(channel string, payload any) int {
	e.mu.Lock()
	ls := append([]listenerEntry(nil), e.byChan[channel]...)
	e.mu.Unlock()
	for _, l := range ls {
		l.fn(payload)
	}
	return len(ls)
}

func (e *Emitter) Listeners(channel string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.byChan[channel])
}

// Dispatcher closes the modal when the escape key command arrives. It only
// listens while the layout is split.
type Dispatcher struct {
	Emitter *Emitter
	Store   state.Dispatcher
	// Input defaults to InputEscape.
	Input string

	mu  sync.Mutex
	off func()
}

// Attach registers the listener when tablet is true. Attaching twice keeps a
// single registration. It reports whether the listener is registered.
func (d *Dispatcher) Attach(tablet bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !tablet || d.Emitter == nil {
		return d.off != nil
	}
	if d.off == nil {
		d.off = d.Emitter.On(KeyCommand, d.handle)
	}
	return true
}

// Sync follows a layout change: attach when split, detach otherwise.
func (d *Dispatcher) Sync(tablet bool) {
	if tablet {
		d.Attach(true)
		return
	}
	d.Detach()
}

func (d *Dispatcher) Detach() {
	d.mu.Lock()
	off := d.off
	d.off = nil
	d.mu.Unlock()
	if off != nil {
		off()
	}
}

func (d *Dispatcher) Attached() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.off != nil
}

func (d *Dispatcher) handle(payload any) {
	ev, ok := payload.(Event)
	if !ok {
		return
	}
	input := d.Input
	if input == "" {
		input = InputEscape
	}
	if !Handle(ev, input) {
		return
	}
	logging.For("keycmd").Debug("close modal", "input", ev.Input)
	d.Store.Dispatch(state.SetModal{Show: false})
}
