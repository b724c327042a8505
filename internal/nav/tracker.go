package nav

import (
	"sync"

	"go.uber.org/atomic"

	"relay-cli/internal/logging"
)

// StateChangeFunc observes navigation transitions (screen-view analytics).
type StateChangeFunc func(prev, next Snapshot)

type transition struct {
	prev, next Snapshot
}

// Tracker delivers transitions to a StateChangeFunc on its own goroutine, in
// order. Track never blocks and never drops: transitions wait in an unbounded
// queue until the callback catches up. A panicking callback is recovered and
// logged.
type Tracker struct {
	fn StateChangeFunc

	mu      sync.Mutex
	pending []transition
	wake    chan struct{}
	closed  atomic.Bool

	delivered atomic.Int64
	done      chan struct{}
	once      sync.Once
}

func NewTracker(fn StateChangeFunc) *Tracker {
	t := &Tracker{
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Tracker) run() {
	defer close(t.done)
	for {
		t.mu.Lock()
		batch := t.pending
		t.pending = nil
		closed := t.closed.Load()
		t.mu.Unlock()

		for _, tr := range batch {
			t.deliver(tr)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-t.wake
	}
}

func (t *Tracker) deliver(tr transition) {
	defer t.delivered.Inc()
	defer func() {
		if r := recover(); r != nil {
			logging.For("nav").Error("state change callback panicked", "panic", r)
		}
	}()
	if t.fn != nil {
		t.fn(tr.prev, tr.next)
	}
}

func (t *Tracker) signal() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Track queues a transition. Safe on a nil or closed tracker.
func (t *Tracker) Track(prev, next Snapshot) {
	if t == nil {
		return
	}
	t.mu.Lock()
	if t.closed.Load() {
		t.mu.Unlock()
		return
	}
	t.pending = append(t.pending, transition{prev: prev, next: next})
	t.mu.Unlock()
	t.signal()
}

// Delivered counts transitions handed to the callback, panicking ones included.
func (t *Tracker) Delivered() int64 {
	if t == nil {
		return 0
	}
	return t.delivered.Load()
}

// Close stops accepting transitions and waits for queued ones to be delivered.
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		t.mu.Lock()
		t.closed.Store(true)
		t.mu.Unlock()
		t.signal()
	})
	<-t.done
}
