// Package app wires the side effects behind the startup actions: where app init
// lands, and what opening a deep link does.
package app

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"relay-cli/internal/deeplink"
	"relay-cli/internal/logging"
	"relay-cli/internal/routes"
	"relay-cli/internal/state"
	"relay-cli/internal/store"
)

// Sessions is the part of the store the effects read and write.
type Sessions interface {
	CurrentSession(ctx context.Context) (*store.Session, error)
	SaveSession(ctx context.Context, sess store.Session) error
}

// Navigator is the part of the navigator the effects drive.
type Navigator interface {
	Navigate(name string, params map[string]string) error
}

type navRequest struct {
	root   state.Root
	name   string
	params map[string]string
}

// Effects reacts to AppInit, DeepLinkingOpen and AppStart. Navigation requested
// by a deep link is held until the matching AppStart has been applied, so it
// lands in the tree the root switch just mounted.
type Effects struct {
	Sessions Sessions
	Nav      Navigator
	// Timeout bounds each store access. Zero means 5s.
	Timeout time.Duration

	mu      sync.Mutex
	pending *navRequest
}

// Register installs the effects on st.
func (e *Effects) Register(st *state.Store) {
	st.Use(e.Handle)
}

func (e *Effects) Handle(a state.Action, s state.State, d state.Dispatcher) {
	switch a := a.(type) {
	case state.AppInit:
		e.appInit(d)
	case state.DeepLinkingOpen:
		e.deepLinkingOpen(a.Route, d)
	case state.AppStart:
		e.appStart(a.Root)
	}
}

func (e *Effects) ctx() (context.Context, context.CancelFunc) {
	t := e.Timeout
	if t <= 0 {
		t = 5 * time.Second
	}
	return context.WithTimeout(context.Background(), t)
}

func (e *Effects) currentSession() *store.Session {
	if e.Sessions == nil {
		return nil
	}
	ctx, cancel := e.ctx()
	defer cancel()
	sess, err := e.Sessions.CurrentSession(ctx)
	if err != nil {
		logging.For("app").Warn("read session", "err", err)
		return nil
	}
	return sess
}

func (e *Effects) appInit(d state.Dispatcher) {
	sess := e.currentSession()
	switch {
	case sess == nil:
		d.Dispatch(state.AppStart{Root: state.RootOutside})
	case strings.TrimSpace(sess.Username) == "":
		d.Dispatch(state.AppStart{Root: state.RootSetUsername})
	default:
		d.Dispatch(state.AppStart{Root: state.RootInside})
	}
}

func (e *Effects) deepLinkingOpen(r *deeplink.Route, d state.Dispatcher) {
	if r == nil {
		e.appInit(d)
		return
	}
	host := NormalizeHost(r.Param("host"))

	switch r.Kind {
	case deeplink.KindAuth:
		token := strings.TrimSpace(r.Param("token"))
		if host != "" && token != "" && e.Sessions != nil {
			ctx, cancel := e.ctx()
			err := e.Sessions.SaveSession(ctx, store.Session{
				Server:   host,
				UserID:   r.Param("userId"),
				Username: r.Param("username"),
				Token:    token,
			})
			cancel()
			if err == nil {
				d.Dispatch(state.AppStart{Root: state.RootInside})
				return
			}
			logging.For("app").Error("save session from auth link", "host", host, "err", err)
		}
		e.toNewServer(host, d)

	case deeplink.KindRoom:
		sess := e.currentSession()
		if sess == nil || (host != "" && !sameServer(host, sess.Server)) {
			e.toNewServer(host, d)
			return
		}
		params := make(map[string]string, len(r.Params))
		for k, v := range r.Params {
			if k != "host" {
				params[k] = v
			}
		}
		e.setPending(&navRequest{root: state.RootInside, name: routes.RoomView, params: params})
		d.Dispatch(state.AppStart{Root: state.RootInside})

	default:
		e.appInit(d)
	}
}

func (e *Effects) toNewServer(host string, d state.Dispatcher) {
	var params map[string]string
	if host != "" {
		params = map[string]string{"host": host}
	}
	e.setPending(&navRequest{root: state.RootOutside, name: routes.NewServerView, params: params})
	d.Dispatch(state.AppStart{Root: state.RootOutside})
}

func (e *Effects) setPending(r *navRequest) {
	e.mu.Lock()
	e.pending = r
	e.mu.Unlock()
}

func (e *Effects) appStart(root state.Root) {
	e.mu.Lock()
	req := e.pending
	if req != nil && req.root == root {
		e.pending = nil
	} else {
		req = nil
	}
	e.mu.Unlock()

	if req == nil || e.Nav == nil {
		return
	}
	if err := e.Nav.Navigate(req.name, req.params); err != nil {
		logging.For("app").Error("navigate after start", "route", req.name, "err", err)
	}
}

// NormalizeHost turns a bare host into an https URL without a trailing slash.
func NormalizeHost(host string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return host
}

func sameServer(a, b string) bool {
	ua, errA := url.Parse(NormalizeHost(a))
	ub, errB := url.Parse(NormalizeHost(b))
	if errA != nil || errB != nil {
		return NormalizeHost(a) == NormalizeHost(b)
	}
	return strings.EqualFold(ua.Host, ub.Host)
}
