package linking

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"relay-cli/internal/logging"
)

// DefaultAddr is where a running client listens for URL-open requests.
const DefaultAddr = "127.0.0.1:7787"

type ServerConfig struct {
	Addr string
}

// Server accepts URL-open requests over a websocket (`relay open`) or a plain
// POST and publishes them on its Hub.
type Server struct {
	cfg ServerConfig
	hub *Hub

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

func NewServer(cfg ServerConfig, hub *Hub) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("linking: missing addr")
	}
	if hub == nil {
		hub = NewHub()
	}
	return &Server{cfg: cfg, hub: hub}, nil
}

func (s *Server) Hub() *Hub { return s.hub }

// Addr is the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return strings.TrimSpace(s.cfg.Addr)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Route("/v1", func(r chi.Router) {
		r.Get("/url", s.handleWS)
		r.Post("/open", s.handleOpen)
	})
	return r
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", strings.TrimSpace(s.cfg.Addr))
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	s.mu.Lock()
	s.ln, s.srv = ln, srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.For("linking").Error("serve", "addr", ln.Addr().String(), "err", err)
		}
	}()
	logging.For("linking").Info("listening for url-open requests", "addr", ln.Addr().String())
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var ev Event
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be {\"url\": ...}")
		return
	}
	ev.URL = strings.TrimSpace(ev.URL)
	if ev.URL == "" {
		writeError(w, http.StatusBadRequest, "missing_url", "url is required")
		return
	}
	n := s.hub.Publish(ev)
	writeSuccess(w, http.StatusAccepted, map[string]any{"url": ev.URL, "delivered": n})
}

type apiError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"status":  "success",
		"message": message,
	})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, apiError{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}
