package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
)

// PrefCrashReport holds the user's crash-report permission ("true"/"false").
const PrefCrashReport = "crash_report.allowed"

func (s Store) Pref(ctx context.Context, key string) (string, bool, error) {
	db, err := s.open(ctx)
	if err != nil {
		return "", false, err
	}
	defer db.Close()

	var v string
	err = db.QueryRowContext(ctx, `SELECT v FROM prefs WHERE k = ?`, strings.TrimSpace(key)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s Store) SetPref(ctx context.Context, key, value string) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO prefs(k, v) VALUES(?, ?)`, strings.TrimSpace(key), value)
	return err
}

// CrashReportAllowed reads the crash-report permission. Reporting is allowed
// until the user turns it off.
func (s Store) CrashReportAllowed(ctx context.Context) (bool, error) {
	v, ok, err := s.Pref(ctx, PrefCrashReport)
	if err != nil || !ok {
		return true, err
	}
	allowed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return true, invalidPrefError{key: PrefCrashReport, value: v}
	}
	return allowed, nil
}

func (s Store) SetCrashReportAllowed(ctx context.Context, allowed bool) error {
	return s.SetPref(ctx, PrefCrashReport, strconv.FormatBool(allowed))
}

type invalidPrefError struct {
	key   string
	value string
}

func (e invalidPrefError) Error() string {
	return "invalid value for pref " + e.key + ": " + strconv.Quote(e.value)
}
