package routes

import (
	"fmt"
	"sync"

	"github.com/agnivade/levenshtein"
	"go.uber.org/atomic"
)

// UnknownRouteError is returned for route names the table does not declare.
type UnknownRouteError struct {
	Name       string
	Suggestion string
}

func (e *UnknownRouteError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown route %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown route %q", e.Name)
}

// Suggest returns the candidate closest to name, or "" when nothing is close enough.
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(name, c)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > len(name)/2+1 {
		return ""
	}
	return best
}

type registryEntry struct {
	once   sync.Once
	built  atomic.Bool
	node   Node
	screen Screen
}

// Registry resolves screens lazily and caches them by route name.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	names   []string
}

func NewRegistry(t *Table) *Registry {
	r := &Registry{entries: map[string]*registryEntry{}}
	t.Walk(func(e Entry) {
		if _, ok := r.entries[e.Node.Name]; ok {
			return
		}
		r.entries[e.Node.Name] = &registryEntry{node: e.Node}
		r.names = append(r.names, e.Node.Name)
	})
	return r
}

// Screen returns the screen for name, building it on first use.
func (r *Registry) Screen(name string) (Screen, error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return nil, &UnknownRouteError{Name: name, Suggestion: Suggest(name, r.names)}
	}
	e.once.Do(func() {
		if e.node.Resolve != nil {
			e.screen = e.node.Resolve()
		}
		e.built.Store(true)
	})
	return e.screen, nil
}

// Resolved reports whether name has been built already.
func (r *Registry) Resolved(name string) bool {
	r.mu.Lock()
	e, ok := r.entries[name]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return e.built.Load()
}

func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}
