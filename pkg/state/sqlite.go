package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStateStore is the development-profile durable StateStore: a single
// file under the configured data directory, persisting across restarts on
// local disk (§4.7 "persistent queue and stores on local disk").
type SQLiteStateStore struct {
	db *sql.DB
}

// NewSQLiteStateStore opens (creating if absent) a sqlite-backed state
// store at dir/state.db.
func NewSQLiteStateStore(dir string) (*SQLiteStateStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("state: create sqlite dir: %w", err)
	}
	path := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("state: open sqlite: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS state_entries (
	partition TEXT NOT NULL,
	key TEXT NOT NULL,
	value BLOB NOT NULL,
	version INTEGER NOT NULL,
	PRIMARY KEY (partition, key)
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("state: migrate sqlite schema: %w", err)
	}

	return &SQLiteStateStore{db: db}, nil
}

func (s *SQLiteStateStore) Get(ctx context.Context, partition, key string) ([]byte, int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT value, version FROM state_entries WHERE partition = ? AND key = ?`, partition, key)
	var value []byte
	var version int
	if err := row.Scan(&value, &version); err != nil {
		if err == sql.ErrNoRows {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("state: sqlite get: %w", err)
	}
	return value, version, nil
}

func (s *SQLiteStateStore) Set(ctx context.Context, partition, key string, value []byte, version int) error {
	if version == 0 {
		version = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO state_entries (partition, key, value, version) VALUES (?, ?, ?, ?)
		 ON CONFLICT(partition, key) DO UPDATE SET value = excluded.value, version = excluded.version`,
		partition, key, value, version)
	if err != nil {
		return fmt.Errorf("state: sqlite set: %w", err)
	}
	return nil
}

func (s *SQLiteStateStore) Delete(ctx context.Context, partition, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM state_entries WHERE partition = ? AND key = ?`, partition, key)
	if err != nil {
		return fmt.Errorf("state: sqlite delete: %w", err)
	}
	return nil
}

func (s *SQLiteStateStore) ListKeys(ctx context.Context, partition string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM state_entries WHERE partition = ?`, partition)
	if err != nil {
		return nil, fmt.Errorf("state: sqlite list keys: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *SQLiteStateStore) ListVersionsBelow(ctx context.Context, partition string, v int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, version FROM state_entries WHERE partition = ? AND version < ?`, partition, v)
	if err != nil {
		return nil, fmt.Errorf("state: sqlite list versions below: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.Version); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStateStore) ClearPartition(ctx context.Context, partition string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM state_entries WHERE partition = ?`, partition)
	if err != nil {
		return fmt.Errorf("state: sqlite clear partition: %w", err)
	}
	return nil
}

func (s *SQLiteStateStore) Close() error { return s.db.Close() }
