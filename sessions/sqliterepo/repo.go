// Package sqliterepo stores serialized sessions in a SQLite file.
package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/sessions"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_slots (
	slot_key   TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

type Repo struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ sessions.Repo   = (*Repo)(nil)
	_ sessions.Pinger = (*Repo)(nil)
)

// New opens (or creates) the database at dsn and ensures the schema exists.
func New(ctx context.Context, dsn string) (*Repo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("[sqliterepo New] open: %w", err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("[sqliterepo New] schema: %w", err)
	}
	return &Repo{db: db, now: time.Now}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

// Ping verifies the database connection is still alive.
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM session_slots WHERE slot_key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[sqliterepo Get] %w", err)
	}
	return value, nil
}

func (r *Repo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_slots (slot_key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, r.now().Unix())
	if err != nil {
		return fmt.Errorf("[sqliterepo Put] %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, key string, value []byte) error {
	res, err := r.db.ExecContext(ctx, `UPDATE session_slots SET value = ?, updated_at = ? WHERE slot_key = ?`,
		value, r.now().Unix(), key)
	if err != nil {
		return fmt.Errorf("[sqliterepo Update] %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("[sqliterepo Update] %w", err)
	}
	if n == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_slots WHERE slot_key = ?`, key); err != nil {
		return fmt.Errorf("[sqliterepo Delete] %w", err)
	}
	return nil
}

// DeleteOlderThan removes slots not written since cutoff. Returns the number removed.
func (r *Repo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_slots WHERE updated_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("[sqliterepo DeleteOlderThan] %w", err)
	}
	return res.RowsAffected()
}
