// Package sqlite provides a Storage persisted in a SQLite database through
// the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ggoodman/mcp-toolkit-go/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	namespace TEXT NOT NULL,
	key TEXT NOT NULL,
	data BLOB NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER,
	PRIMARY KEY (namespace, key)
);`

// Storage implements storage.Storage on a SQLite table.
type Storage struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at dsn. Use ":memory:" for a private
// in-process database.
func Open(dsn string) (*Storage, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite: dsn is required")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if dsn == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	return &Storage{db: db, now: time.Now}, nil
}

func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Item, error) {
	o := storage.Apply(opts...)

	var (
		data      []byte
		createdAt int64
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT data, created_at, expires_at FROM kv WHERE namespace = ? AND key = ?`,
		o.Namespace, key,
	).Scan(&data, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s: %w", key, err)
	}

	item := &storage.Item{Data: data, CreatedAt: time.Unix(0, createdAt)}
	if expiresAt.Valid {
		exp := time.Unix(0, expiresAt.Int64)
		item.ExpiresAt = &exp
	}
	if item.IsExpired() {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE namespace = ? AND key = ?`, o.Namespace, key); err != nil {
			return nil, fmt.Errorf("sqlite: delete expired %s: %w", key, err)
		}
		return nil, nil
	}
	return item, nil
}

func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	o := storage.Apply(opts...)
	now := s.now()
	var exp sql.NullInt64
	if e := o.Expiry(now); e != nil {
		exp = sql.NullInt64{Int64: e.UnixNano(), Valid: true}
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv (namespace, key, data, created_at, expires_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (namespace, key) DO UPDATE SET
	data = excluded.data,
	created_at = excluded.created_at,
	expires_at = excluded.expires_at`,
		o.Namespace, key, data, now.UnixNano(), exp,
	)
	if err != nil {
		return fmt.Errorf("sqlite: set %s: %w", key, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	o := storage.Apply(opts...)
	var err error
	if o.Key != nil {
		_, err = s.db.ExecContext(ctx, `DELETE FROM kv WHERE namespace = ? AND key = ?`, o.Namespace, *o.Key)
	} else {
		_, err = s.db.ExecContext(ctx, `DELETE FROM kv WHERE namespace = ?`, o.Namespace)
	}
	if err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	return nil
}

func (s *Storage) Keys(ctx context.Context, opts ...storage.Option) ([]string, error) {
	o := storage.Apply(opts...)
	rows, err := s.db.QueryContext(ctx, `
SELECT key FROM kv
WHERE namespace = ? AND (expires_at IS NULL OR expires_at > ?)
ORDER BY key ASC`, o.Namespace, s.now().UnixNano())
	if err != nil {
		return nil, fmt.Errorf("sqlite: list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sqlite: scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: key rows: %w", err)
	}
	return keys, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

var _ storage.Storage = (*Storage)(nil)
