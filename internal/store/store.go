// Package store is the client's local sqlite database: preferences, the active
// session and the queue of notifications waiting to be opened.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const dbFileName = "relay.sqlite"

// Store opens the database per call, so separate processes (the TUI and
// `relay notify`) can share it.
type Store struct {
	Path string
}

// DefaultPath is the database path inside the config directory.
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, dbFileName)
}

var migrated sync.Map // path -> struct{}

func (s Store) path() (string, error) {
	p := strings.TrimSpace(s.Path)
	if p == "" {
		return "", errors.New("store: missing db path")
	}
	return p, nil
}

func (s Store) open(ctx context.Context) (*sql.DB, error) {
	p, err := s.path()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, err
	}
	if _, done := migrated.Load(p); !done {
		if err := Migrate(p); err != nil {
			return nil, err
		}
		migrated.Store(p, struct{}{})
	}

	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pr := range pragmas {
		if _, err := db.ExecContext(ctx, pr); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Migrate applies the embedded schema migrations to the database at path. The
// migrate driver closes its connection, so it gets one of its own.
func Migrate(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
