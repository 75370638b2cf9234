// Package sqlite stores keys in a single kv table of a SQLite database,
// using the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/aretw0/jotter/pkg/core"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// Option configures a Medium.
type Option func(*Medium)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Medium) {
		m.logger = logger
	}
}

// Medium is a SQLite-backed core.Medium.
type Medium struct {
	Path   string
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Medium, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite medium: empty path")
	}
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// A single connection serializes writers and keeps ":memory:" databases
	// from splitting across connections.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize %s: %w", path, err)
		}
	}

	m := &Medium{Path: path, db: db}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger != nil {
		m.logger.Debug("sqlite medium opened", "path", path)
	}
	return m, nil
}

// Get implements core.Medium.
func (m *Medium) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := m.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set implements core.Medium.
func (m *Medium) Set(ctx context.Context, key string, value []byte) error {
	_, err := m.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Remove implements core.Medium.
func (m *Medium) Remove(ctx context.Context, key string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in sorted order.
func (m *Medium) Keys(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close implements core.Closer.
func (m *Medium) Close() error {
	return m.db.Close()
}

var (
	_ core.Medium = (*Medium)(nil)
	_ core.Closer = (*Medium)(nil)
)
