// Package logging owns the process logger. The terminal belongs to the TUI, so
// output goes to a file unless none can be opened.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	logger  *log.Logger
	logFile *os.File
	out     io.Writer = io.Discard
)

// Options configures Setup.
type Options struct {
	// Path is the log file path; parent directories are created.
	Path string
	// Level is one of debug|info|warn|error (default info).
	Level string
	// Writer overrides Path when set (tests, `--log-stderr`).
	Writer io.Writer
}

// Setup (re)configures the process logger.
func Setup(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	w := opts.Writer
	if w == nil && strings.TrimSpace(opts.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = f
		w = f
	}
	if w == nil {
		w = io.Discard
	}
	out = w

	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "relay",
	})
	l.SetLevel(ParseLevel(opts.Level))
	logger = l
	return nil
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(raw string) log.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "warning":
		return log.WarnLevel
	case "":
		return log.InfoLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Logger returns the process logger. Before Setup it discards everything.
func Logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = log.NewWithOptions(out, log.Options{Prefix: "relay"})
	}
	return logger
}

// For returns a logger tagged with the component name.
func For(component string) *log.Logger {
	return Logger().With("component", component)
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
