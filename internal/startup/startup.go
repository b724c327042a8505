// Package startup decides how the client opens: from the notification it was
// launched with, from a deep link, or through a plain app init. It also arms
// the listener for URLs opened while the client is running.
package startup

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"relay-cli/internal/deeplink"
	"relay-cli/internal/linking"
	"relay-cli/internal/logging"
	"relay-cli/internal/push"
	"relay-cli/internal/state"
)

// DefaultListenerDelay is how long after startup URL-open events start being
// handled. Anything earlier is covered by the launch URL.
const DefaultListenerDelay = 5 * time.Second

var ErrAlreadyStarted = errors.New("startup: already started")

// Path names the branch startup took.
type Path int

const (
	PathNone Path = iota
	PathNotification
	PathDeepLink
	PathAppInit
)

func (p Path) String() string {
	switch p {
	case PathNotification:
		return "notification"
	case PathDeepLink:
		return "deep-link"
	case PathAppInit:
		return "app-init"
	default:
		return "none"
	}
}

type Outcome struct {
	Path  Path
	URL   string
	Route *deeplink.Route
}

// Resolver turns a raw URL into a deep link, or nil.
type Resolver interface {
	Resolve(raw string) *deeplink.Route
}

type Coordinator struct {
	Notifications push.Source
	Opener        push.Opener
	URLs          linking.Source
	Resolver      Resolver
	Dispatcher    state.Dispatcher
	// ListenerDelay defaults to DefaultListenerDelay.
	ListenerDelay time.Duration
	Logger        *log.Logger

	once sync.Once

	mu          sync.Mutex
	timer       *time.Timer
	unsubscribe func()
	torn        bool
}

func (c *Coordinator) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logging.For("startup")
}

func (c *Coordinator) resolve(raw string) *deeplink.Route {
	if c.Resolver != nil {
		return c.Resolver.Resolve(raw)
	}
	return deeplink.Resolve(raw)
}

// Run performs startup once. Both launch inputs are fetched concurrently and
// the decision is taken only after both have resolved; a failed fetch counts
// as absent. Exactly one of the three paths fires.
func (c *Coordinator) Run(ctx context.Context) (Outcome, error) {
	ran := false
	var (
		out Outcome
		err error
	)
	c.once.Do(func() {
		ran = true
		out, err = c.run(ctx)
	})
	if !ran {
		return Outcome{}, ErrAlreadyStarted
	}
	return out, err
}

func (c *Coordinator) run(ctx context.Context) (Outcome, error) {
	var (
		payload push.Payload
		rawURL  string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if c.Notifications == nil {
			return nil
		}
		p, err := c.Notifications.Initialize(gctx)
		if err != nil {
			c.logger().Warn("initial notification unavailable", "err", err)
			return nil
		}
		payload = p
		return nil
	})
	g.Go(func() error {
		if c.URLs == nil {
			return nil
		}
		u, err := c.URLs.InitialURL(gctx)
		if err != nil {
			c.logger().Warn("initial url unavailable", "err", err)
			return nil
		}
		rawURL = u
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	if len(payload) > 0 && c.Opener != nil {
		c.logger().Info("startup", "path", PathNotification)
		c.Opener.OnNotification(payload)
		return Outcome{Path: PathNotification, URL: rawURL}, nil
	}
	if route := c.resolve(rawURL); route != nil {
		c.logger().Info("startup", "path", PathDeepLink, "kind", route.Kind)
		c.Dispatcher.Dispatch(state.DeepLinkingOpen{Route: route})
		return Outcome{Path: PathDeepLink, URL: rawURL, Route: route}, nil
	}
	c.logger().Info("startup", "path", PathAppInit)
	c.Dispatcher.Dispatch(state.AppInit{})
	return Outcome{Path: PathAppInit, URL: rawURL}, nil
}

// ArmURLListener subscribes to events after ListenerDelay. It arms at most
// once; Teardown cancels it.
func (c *Coordinator) ArmURLListener(events linking.Events) {
	if events == nil {
		return
	}
	delay := c.ListenerDelay
	if delay <= 0 {
		delay = DefaultListenerDelay
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn || c.timer != nil {
		return
	}
	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.torn {
			return
		}
		c.unsubscribe = events.Subscribe(c.handleURL)
		c.logger().Debug("url listener registered")
	})
}

func (c *Coordinator) handleURL(ev linking.Event) {
	route := c.resolve(ev.URL)
	if route == nil {
		c.logger().Debug("ignoring url", "url", ev.URL)
		return
	}
	c.Dispatcher.Dispatch(state.DeepLinkingOpen{Route: route})
}

// Listening reports whether the URL listener is registered.
func (c *Coordinator) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribe != nil
}

// Teardown cancels a pending listener registration, or removes the listener if
// it was already registered. Safe to call more than once.
func (c *Coordinator) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.torn = true
	if c.timer != nil {
		c.timer.Stop()
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
