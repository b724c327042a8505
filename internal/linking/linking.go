// Package linking delivers URLs to the client: the one it was launched with and
// the ones other `relay open` invocations send to the running instance.
package linking

import (
	"context"
	"strings"
	"sync"
)

// Source yields the URL the client was launched with, or "".
type Source interface {
	InitialURL(ctx context.Context) (string, error)
}

// StaticSource serves a URL known up front (command-line flag, env).
type StaticSource struct {
	URL string
	Err error
}

func (s StaticSource) InitialURL(context.Context) (string, error) {
	return strings.TrimSpace(s.URL), s.Err
}

// Event is one URL-open request.
type Event struct {
	URL string `json:"url"`
}

// Events is a subscription to URL-open requests.
type Events interface {
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Hub fans published events out to subscribers, in subscription order.
type Hub struct {
	mu   sync.Mutex
	next int
	ids  []int
	subs map[int]func(Event)
}

func NewHub() *Hub {
	return &Hub{subs: map[int]func(Event){}}
}

func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.ids = append(h.ids, id)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			for i, v := range h.ids {
				if v == id {
					h.ids = append(h.ids[:i], h.ids[i+1:]...)
					break
				}
			}
			h.mu.Unlock()
		})
	}
}

// Publish delivers ev and reports how many subscribers received it.
func (h *Hub) Publish(ev Event) int {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.ids))
	for _, id := range h.ids {
		fns = append(fns, h.subs[id])
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
	return len(fns)
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ids)
}
