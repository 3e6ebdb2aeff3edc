// Package sqlstore implements storage.Store on a single SQL table.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"todo-notes/internal/storage"
)

// Dialect selects the placeholder style of the driver.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS kv (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createKVTable); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT value FROM kv WHERE name = ?`), key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
INSERT INTO kv (name, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
		key,
		value,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM kv WHERE name = ?`), key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM kv ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	return keys, nil
}

var (
	_ storage.Store  = (*Store)(nil)
	_ storage.Lister = (*Store)(nil)
)
