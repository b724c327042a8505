package linking

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type eventLog struct {
	mu   sync.Mutex
	urls []string
}

func (l *eventLog) add(ev Event) {
	l.mu.Lock()
	l.urls = append(l.urls, ev.URL)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.urls...)
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	s, err := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, strings.TrimPrefix(ts.URL, "http://")
}

func TestNewServer_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(ServerConfig{Addr: " "}, nil); err == nil {
		t.Fatalf("expected error for missing addr")
	}
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	h := NewHub()
	var a, b eventLog
	offA := h.Subscribe(a.add)
	h.Subscribe(b.add)

	if n := h.Publish(Event{URL: "one"}); n != 2 {
		t.Fatalf("expected 2 deliveries; got %d", n)
	}
	offA()
	offA()
	h.Publish(Event{URL: "two"})

	if got := a.snapshot(); len(got) != 1 || got[0] != "one" {
		t.Fatalf("unsubscribed listener got %v", got)
	}
	if got := b.snapshot(); len(got) != 2 {
		t.Fatalf("expected both events; got %v", got)
	}
	if h.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber; got %d", h.Subscribers())
	}
}

func TestSend_DeliversOverWebsocket(t *testing.T) {
	t.Parallel()

	s, addr := newTestServer(t)
	var log eventLog
	s.Hub().Subscribe(log.add)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := Send(ctx, addr, "  relay://room?rid=GENERAL  ")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 delivery; got %d", n)
	}
	if got := log.snapshot(); len(got) != 1 || got[0] != "relay://room?rid=GENERAL" {
		t.Fatalf("unexpected events %v", got)
	}

	if _, err := Send(ctx, addr, " "); err == nil {
		t.Fatalf("expected error for an empty url")
	}
}

func TestSend_NoInstance(t *testing.T) {
	t.Parallel()

	// Grab a free port and release it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := Send(ctx, addr, "relay://room?rid=1"); !errors.Is(err, ErrNoInstance) {
		t.Fatalf("expected ErrNoInstance; got %v", err)
	}
}

func TestHandler_HealthzAndOpen(t *testing.T) {
	t.Parallel()

	s, addr := newTestServer(t)
	var log eventLog
	s.Hub().Subscribe(log.add)

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Post("http://"+addr+"/v1/open", "application/json", strings.NewReader(`{"url":"https://go.relay.chat/auth?host=h&token=t"}`))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("open status %d", resp.StatusCode)
	}

	resp, err = http.Post("http://"+addr+"/v1/open", "application/json", strings.NewReader(`{"url":""}`))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty url; got %d", resp.StatusCode)
	}

	if got := log.snapshot(); len(got) != 1 {
		t.Fatalf("expected exactly one event; got %v", got)
	}
}

func TestServer_StartShutdown(t *testing.T) {
	t.Parallel()

	s, err := NewServer(ServerConfig{Addr: "127.0.0.1:0"}, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if strings.HasSuffix(s.Addr(), ":0") {
		t.Fatalf("expected a bound port; got %s", s.Addr())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := Send(ctx, s.Addr(), "relay://room?rid=1"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
