package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PendingNotification is a push payload waiting for the client to start.
type PendingNotification struct {
	ID        string    `json:"id"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// EnqueueNotification stores payload and returns its id.
func (s Store) EnqueueNotification(ctx context.Context, payload []byte) (string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return "", err
	}
	defer db.Close()

	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `INSERT INTO pending_notifications(id, payload, created_at_unixms) VALUES(?, ?, ?)`,
		id, string(payload), time.Now().UTC().UnixMilli())
	if err != nil {
		return "", err
	}
	return id, nil
}

// TakeNotification removes the whole queue and returns its newest entry. Only
// the notification the user tapped last is opened.
func (s Store) TakeNotification(ctx context.Context) (*PendingNotification, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		n       PendingNotification
		payload string
		ms      int64
	)
	err = tx.QueryRowContext(ctx, `SELECT id, payload, created_at_unixms FROM pending_notifications ORDER BY created_at_unixms DESC, rowid DESC LIMIT 1`).
		Scan(&n.ID, &payload, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pending_notifications`); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	n.Payload = []byte(payload)
	n.CreatedAt = time.UnixMilli(ms).UTC()
	return &n, nil
}

func (s Store) PendingNotifications(ctx context.Context) (int, error) {
	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_notifications`).Scan(&n)
	return n, err
}
