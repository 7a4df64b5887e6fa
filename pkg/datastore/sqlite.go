package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
)

// SQLiteDataStore is the development-profile durable DataStore: items live
// in a single sqlite file under the configured data directory.
type SQLiteDataStore struct {
	db *sql.DB
}

// NewSQLiteDataStore opens (creating if absent) a sqlite-backed data store
// at dir/datastore.db.
func NewSQLiteDataStore(dir string) (*SQLiteDataStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("datastore: create sqlite dir: %w", err)
	}
	path := filepath.Join(dir, "datastore.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("datastore: open sqlite: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	source_url TEXT UNIQUE,
	metadata TEXT NOT NULL,
	content BLOB,
	cache_ids TEXT NOT NULL DEFAULT ''
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("datastore: migrate sqlite schema: %w", err)
	}

	return &SQLiteDataStore{db: db}, nil
}

func marshalMetadata(md metadata.Metadata) ([]byte, error) {
	return json.Marshal(md)
}

func unmarshalMetadata(data []byte) (metadata.Metadata, error) {
	var md metadata.Metadata
	err := json.Unmarshal(data, &md)
	return md, err
}

func joinCacheIDs(cacheIDs []ids.CacheId) string {
	parts := make([]string, len(cacheIDs))
	for i, id := range cacheIDs {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

func splitCacheIDs(raw string) []ids.CacheId {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]ids.CacheId, len(parts))
	for i, p := range parts {
		out[i] = ids.CacheId(p)
	}
	return out
}

func scanItem(row interface{ Scan(...any) error }) (Item, error) {
	var id, sourceURL, cacheIDs string
	var mdJSON, content []byte
	if err := row.Scan(&id, &sourceURL, &mdJSON, &content, &cacheIDs); err != nil {
		return Item{}, err
	}
	md, err := unmarshalMetadata(mdJSON)
	if err != nil {
		return Item{}, fmt.Errorf("datastore: decode metadata: %w", err)
	}
	return Item{ID: ids.ItemId(id), Metadata: md, Content: content, CacheIDs: splitCacheIDs(cacheIDs)}, nil
}

func (d *SQLiteDataStore) AddItem(ctx context.Context, content []byte, md metadata.Metadata) (ids.ItemId, error) {
	if existing, err := d.GetBySourceURL(ctx, md.SourceURL); err == nil {
		mdJSON, merr := marshalMetadata(md)
		if merr != nil {
			return "", fmt.Errorf("datastore: encode metadata: %w", merr)
		}
		_, err := d.db.ExecContext(ctx, `UPDATE items SET metadata = ?, content = ? WHERE id = ?`, mdJSON, content, existing.ID)
		if err != nil {
			return "", fmt.Errorf("datastore: sqlite update existing: %w", err)
		}
		return existing.ID, nil
	}

	id := ids.NewItemId()
	mdJSON, err := marshalMetadata(md)
	if err != nil {
		return "", fmt.Errorf("datastore: encode metadata: %w", err)
	}
	var sourceURL any
	if md.SourceURL != "" {
		sourceURL = md.SourceURL
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO items (id, source_url, metadata, content, cache_ids) VALUES (?, ?, ?, ?, '')`,
		string(id), sourceURL, mdJSON, content)
	if err != nil {
		return "", fmt.Errorf("datastore: sqlite insert: %w", err)
	}
	return id, nil
}

func (d *SQLiteDataStore) GetItem(ctx context.Context, id ids.ItemId) (Item, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(source_url, ''), metadata, content, cache_ids FROM items WHERE id = ?`, string(id))
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("datastore: sqlite get item: %w", err)
	}
	return item, nil
}

func (d *SQLiteDataStore) GetBySourceURL(ctx context.Context, sourceURL string) (Item, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, COALESCE(source_url, ''), metadata, content, cache_ids FROM items WHERE source_url = ?`, sourceURL)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("datastore: sqlite get by source url: %w", err)
	}
	return item, nil
}

func (d *SQLiteDataStore) UpdateMetadata(ctx context.Context, id ids.ItemId, patch metadata.Patch) (metadata.Metadata, error) {
	item, err := d.GetItem(ctx, id)
	if err != nil {
		return metadata.Metadata{}, err
	}
	merged := item.Metadata.Merge(patch)
	mdJSON, err := marshalMetadata(merged)
	if err != nil {
		return metadata.Metadata{}, fmt.Errorf("datastore: encode metadata: %w", err)
	}
	var sourceURL any
	if merged.SourceURL != "" {
		sourceURL = merged.SourceURL
	}
	_, err = d.db.ExecContext(ctx, `UPDATE items SET metadata = ?, source_url = ? WHERE id = ?`, mdJSON, sourceURL, string(id))
	if err != nil {
		return metadata.Metadata{}, fmt.Errorf("datastore: sqlite update metadata: %w", err)
	}
	return merged, nil
}

func (d *SQLiteDataStore) RemoveItem(ctx context.Context, id ids.ItemId) ([]ids.CacheId, error) {
	item, err := d.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, string(id)); err != nil {
		return nil, fmt.Errorf("datastore: sqlite remove item: %w", err)
	}
	return item.CacheIDs, nil
}

func (d *SQLiteDataStore) AssociateCache(ctx context.Context, id ids.ItemId, cacheID ids.CacheId) error {
	item, err := d.GetItem(ctx, id)
	if err != nil {
		return err
	}
	updated := append(item.CacheIDs, cacheID)
	_, err = d.db.ExecContext(ctx, `UPDATE items SET cache_ids = ? WHERE id = ?`, joinCacheIDs(updated), string(id))
	if err != nil {
		return fmt.Errorf("datastore: sqlite associate cache: %w", err)
	}
	return nil
}

func (d *SQLiteDataStore) ListItems(ctx context.Context) ([]ids.ItemId, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("datastore: sqlite list items: %w", err)
	}
	defer rows.Close()

	var out []ids.ItemId
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, ids.ItemId(id))
	}
	return out, rows.Err()
}

func (d *SQLiteDataStore) Close() error { return d.db.Close() }
