package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// Tests in this package mutate the process logger and must not run in parallel.

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Level{
		"":        log.InfoLevel,
		"debug":   log.DebugLevel,
		"DEBUG":   log.DebugLevel,
		"warn":    log.WarnLevel,
		"warning": log.WarnLevel,
		"error":   log.ErrorLevel,
		"bogus":   log.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q): want %v; got %v", in, want, got)
		}
	}
}

func TestSetup_WriterAndComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(Options{Writer: &buf, Level: "debug"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	For("startup").Debug("decided", "path", "app-init")
	got := buf.String()
	if !strings.Contains(got, "component=startup") || !strings.Contains(got, "path=app-init") {
		t.Fatalf("unexpected log output: %q", got)
	}

	buf.Reset()
	if err := Setup(Options{Writer: &buf, Level: "error"}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	For("startup").Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered; got %q", buf.String())
	}
}

func TestSetup_FileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "relay.log")
	if err := Setup(Options{Path: path}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	Logger().Info("hello")
	Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "hello") {
		t.Fatalf("expected log line; got %q", string(b))
	}
	if err := Setup(Options{Writer: &bytes.Buffer{}}); err != nil {
		t.Fatalf("reset: %v", err)
	}
}
