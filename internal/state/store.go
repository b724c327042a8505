package state

import (
	"sync"

	"relay-cli/internal/logging"
)

// Dispatcher is the write side of the store.
type Dispatcher interface {
	Dispatch(Action)
}

// Subscriber observes every applied action with the state before and after it.
type Subscriber func(prev, next State, a Action)

// Effect runs after an action has been applied. Actions it dispatches are queued
// behind the current one.
type Effect func(a Action, s State, d Dispatcher)

// Store is the single authority over State. Dispatches are applied one at a time
// in FIFO order, regardless of which goroutine issued them.
type Store struct {
	mu       sync.Mutex
	state    State
	queue    []Action
	draining bool

	nextSub int
	subs    map[int]Subscriber
	subIDs  []int
	effects []Effect
}

func NewStore() *Store {
	return &Store{state: Initial(), subs: map[int]Subscriber{}}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Subscriber) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subIDs = append(s.subIDs, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			for i, v := range s.subIDs {
				if v == id {
					s.subIDs = append(s.subIDs[:i], s.subIDs[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		})
	}
}

// Use registers an effect. Effects run in registration order.
func (s *Store) Use(e Effect) {
	s.mu.Lock()
	s.effects = append(s.effects, e)
	s.mu.Unlock()
}

// Dispatch queues a and, unless another call is already draining the queue,
// applies queued actions until it is empty. A panicking subscriber or effect
// propagates to the caller; actions still queued are applied by the next
// Dispatch.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, a)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	drained := false
	defer func() {
		if !drained {
			s.mu.Lock()
			s.draining = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			drained = true
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue = s.queue[1:]

		prev := s.state
		s.state = Reduce(prev, next)
		cur := s.state
		subs := make([]Subscriber, 0, len(s.subIDs))
		for _, id := range s.subIDs {
			subs = append(subs, s.subs[id])
		}
		effects := append([]Effect(nil), s.effects...)
		s.mu.Unlock()

		logging.For("state").Debug("dispatch", "action", next.Type(), "root", cur.Root, "showModal", cur.ShowModal)
		for _, fn := range subs {
			fn(prev, cur, next)
		}
		for _, e := range effects {
			e(next, cur, s)
		}
	}
}
