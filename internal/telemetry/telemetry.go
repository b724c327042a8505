// Package telemetry holds the crash reporter and the analytics collector. Both
// only log locally; they exist so the user's crash-report permission has
// something to switch off.
package telemetry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/atomic"

	"relay-cli/internal/logging"
)

// Report is one crash report about to be sent.
type Report struct {
	Err  error
	Meta map[string]any
	At   time.Time
}

// BeforeSendFunc may veto a report by returning false.
type BeforeSendFunc func(*Report) bool

type Reporter struct {
	autoNotify atomic.Bool
	sent       atomic.Int64
	suppressed atomic.Int64

	mu         sync.Mutex
	beforeSend []BeforeSendFunc
}

func NewReporter() *Reporter {
	r := &Reporter{}
	r.autoNotify.Store(true)
	return r
}

// AutoNotify reports whether unhandled panics are reported automatically.
func (r *Reporter) AutoNotify() bool { return r.autoNotify.Load() }

func (r *Reporter) SetAutoNotify(on bool) { r.autoNotify.Store(on) }

func (r *Reporter) RegisterBeforeSend(fn BeforeSendFunc) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.beforeSend = append(r.beforeSend, fn)
	r.mu.Unlock()
}

// Notify sends a report unless a before-send callback vetoes it. It reports
// whether the report went out.
func (r *Reporter) Notify(err error, meta map[string]any) bool {
	if err == nil {
		return false
	}
	rep := &Report{Err: err, Meta: meta, At: time.Now().UTC()}

	r.mu.Lock()
	callbacks := append([]BeforeSendFunc(nil), r.beforeSend...)
	r.mu.Unlock()
	for _, fn := range callbacks {
		if !fn(rep) {
			r.suppressed.Inc()
			return false
		}
	}

	kv := []any{"err", rep.Err}
	keys := make([]string, 0, len(rep.Meta))
	for k := range rep.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, k, rep.Meta[k])
	}
	logging.For("crash").Error("crash report", kv...)
	r.sent.Inc()
	return true
}

// Recover reports a panic in progress when auto-notify is on, then re-panics.
// Use as `defer reporter.Recover()`.
func (r *Reporter) Recover() {
	v := recover()
	if v == nil {
		return
	}
	if r.AutoNotify() {
		r.Notify(fmt.Errorf("panic: %v", v), map[string]any{"unhandled": true})
	}
	panic(v)
}

func (r *Reporter) Sent() int64       { return r.sent.Load() }
func (r *Reporter) Suppressed() int64 { return r.suppressed.Load() }

// Analytics counts screen views.
type Analytics struct {
	enabled atomic.Bool

	mu      sync.Mutex
	screens map[string]int
	last    string
}

func NewAnalytics() *Analytics {
	a := &Analytics{screens: map[string]int{}}
	a.enabled.Store(true)
	return a
}

func (a *Analytics) Enabled() bool { return a.enabled.Load() }

func (a *Analytics) SetEnabled(on bool) { a.enabled.Store(on) }

// LogScreenView records a view of name. Disabled collectors drop it.
func (a *Analytics) LogScreenView(name string) {
	if name == "" || !a.Enabled() {
		return
	}
	a.mu.Lock()
	a.screens[name]++
	a.last = name
	a.mu.Unlock()
	logging.For("analytics").Debug("screen view", "screen", name)
}

// ScreenViews returns a copy of the per-screen counters.
func (a *Analytics) ScreenViews() map[string]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int, len(a.screens))
	for k, v := range a.screens {
		out[k] = v
	}
	return out
}

func (a *Analytics) LastScreen() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}
