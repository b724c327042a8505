package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Session is the signed-in account the client restores on startup.
type Session struct {
	Server    string    `json:"server"`
	UserID    string    `json:"userId,omitempty"`
	Username  string    `json:"username,omitempty"`
	Token     string    `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CurrentSession returns the active session, or nil when signed out.
func (s Store) CurrentSession(ctx context.Context) (*Session, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var (
		sess Session
		ms   int64
	)
	err = db.QueryRowContext(ctx, `SELECT server, user_id, username, token, updated_at_unixms FROM sessions WHERE active = 1 ORDER BY updated_at_unixms DESC LIMIT 1`).
		Scan(&sess.Server, &sess.UserID, &sess.Username, &sess.Token, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.UnixMilli(ms).UTC()
	return &sess, nil
}

// SaveSession stores sess and makes it the only active one.
func (s Store) SaveSession(ctx context.Context, sess Session) error {
	server := strings.TrimSpace(sess.Server)
	if server == "" {
		return errors.New("session: missing server")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET active = 0`); err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO sessions(server, user_id, username, token, active, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
		server, strings.TrimSpace(sess.UserID), strings.TrimSpace(sess.Username), sess.Token, boolToInt(true), nowMs); err != nil {
		return err
	}
	return tx.Commit()
}

// ClearSession signs out. Stored servers are kept.
func (s Store) ClearSession(ctx context.Context) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `UPDATE sessions SET active = 0, token = ''`)
	return err
}
