package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/platinummonkey/paise/pkg/ids"
	"github.com/platinummonkey/paise/pkg/metadata"
)

// PostgresDataStore is the production-profile durable DataStore, grounded
// on the teacher's postgres.ConnectionManager connection setup
// (pkg/storage/postgres/connection.go) narrowed to a single primary pool —
// this core has no read-replica fan-out requirement.
type PostgresDataStore struct {
	db    *sql.DB
	blobs *S3BlobStore // optional; nil means content is stored inline
}

// PostgresConfig configures the connection pool.
type PostgresConfig struct {
	URL        string
	MaxConns   int
	MaxIdle    int
	PingTimeout time.Duration
}

// NewPostgresDataStore opens a connection pool and migrates the items
// table if absent. blobs may be nil to store content bytes inline.
func NewPostgresDataStore(cfg PostgresConfig, blobs *S3BlobStore) (*PostgresDataStore, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("datastore: open postgres: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.MaxIdle)
	}

	timeout := cfg.PingTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("datastore: ping postgres: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	source_url TEXT UNIQUE,
	metadata JSONB NOT NULL,
	content BYTEA,
	blob_location TEXT,
	cache_ids TEXT[] NOT NULL DEFAULT '{}'
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("datastore: migrate postgres schema: %w", err)
	}

	return &PostgresDataStore{db: db, blobs: blobs}, nil
}

func (d *PostgresDataStore) storeContent(ctx context.Context, id ids.ItemId, content []byte) (inline []byte, location string, err error) {
	if d.blobs == nil || len(content) == 0 {
		return content, "", nil
	}
	loc, err := d.blobs.Put(ctx, string(id), content)
	if err != nil {
		return nil, "", fmt.Errorf("datastore: put blob: %w", err)
	}
	return nil, loc, nil
}

func (d *PostgresDataStore) loadContent(ctx context.Context, inline []byte, location string) ([]byte, error) {
	if location == "" {
		return inline, nil
	}
	return d.blobs.Get(ctx, location)
}

func (d *PostgresDataStore) AddItem(ctx context.Context, content []byte, md metadata.Metadata) (ids.ItemId, error) {
	if existing, err := d.GetBySourceURL(ctx, md.SourceURL); err == nil {
		return existing.ID, d.replaceItem(ctx, existing.ID, content, md)
	}

	id := ids.NewItemId()
	inline, location, err := d.storeContent(ctx, id, content)
	if err != nil {
		return "", err
	}
	mdJSON, err := marshalMetadata(md)
	if err != nil {
		return "", fmt.Errorf("datastore: encode metadata: %w", err)
	}
	var sourceURL any
	if md.SourceURL != "" {
		sourceURL = md.SourceURL
	}
	_, err = d.db.ExecContext(ctx,
		`INSERT INTO items (id, source_url, metadata, content, blob_location, cache_ids) VALUES ($1, $2, $3, $4, $5, '{}')`,
		string(id), sourceURL, mdJSON, inline, nullableString(location))
	if err != nil {
		return "", fmt.Errorf("datastore: postgres insert: %w", err)
	}
	return id, nil
}

func (d *PostgresDataStore) replaceItem(ctx context.Context, id ids.ItemId, content []byte, md metadata.Metadata) error {
	inline, location, err := d.storeContent(ctx, id, content)
	if err != nil {
		return err
	}
	mdJSON, err := marshalMetadata(md)
	if err != nil {
		return fmt.Errorf("datastore: encode metadata: %w", err)
	}
	_, err = d.db.ExecContext(ctx,
		`UPDATE items SET metadata = $1, content = $2, blob_location = $3 WHERE id = $4`,
		mdJSON, inline, nullableString(location), string(id))
	if err != nil {
		return fmt.Errorf("datastore: postgres update existing: %w", err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (d *PostgresDataStore) GetItem(ctx context.Context, id ids.ItemId) (Item, error) {
	return d.queryOne(ctx, `SELECT id, COALESCE(source_url, ''), metadata, content, COALESCE(blob_location, ''), cache_ids FROM items WHERE id = $1`, string(id))
}

func (d *PostgresDataStore) GetBySourceURL(ctx context.Context, sourceURL string) (Item, error) {
	return d.queryOne(ctx, `SELECT id, COALESCE(source_url, ''), metadata, content, COALESCE(blob_location, ''), cache_ids FROM items WHERE source_url = $1`, sourceURL)
}

func (d *PostgresDataStore) queryOne(ctx context.Context, query string, arg any) (Item, error) {
	row := d.db.QueryRowContext(ctx, query, arg)

	var id, sourceURL, location string
	var mdJSON, content []byte
	var cacheIDs pq.StringArray
	if err := row.Scan(&id, &sourceURL, &mdJSON, &content, &location, &cacheIDs); err != nil {
		if err == sql.ErrNoRows {
			return Item{}, ErrNotFound
		}
		return Item{}, fmt.Errorf("datastore: postgres query: %w", err)
	}
	md, err := unmarshalMetadata(mdJSON)
	if err != nil {
		return Item{}, fmt.Errorf("datastore: decode metadata: %w", err)
	}
	full, err := d.loadContent(ctx, content, location)
	if err != nil {
		return Item{}, err
	}
	itemCacheIDs := make([]ids.CacheId, len(cacheIDs))
	for i, c := range cacheIDs {
		itemCacheIDs[i] = ids.CacheId(c)
	}
	return Item{ID: ids.ItemId(id), Metadata: md, Content: full, CacheIDs: itemCacheIDs}, nil
}

func (d *PostgresDataStore) UpdateMetadata(ctx context.Context, id ids.ItemId, patch metadata.Patch) (metadata.Metadata, error) {
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
	_, err = d.db.ExecContext(ctx, `UPDATE items SET metadata = $1, source_url = $2 WHERE id = $3`, mdJSON, sourceURL, string(id))
	if err != nil {
		return metadata.Metadata{}, fmt.Errorf("datastore: postgres update metadata: %w", err)
	}
	return merged, nil
}

func (d *PostgresDataStore) RemoveItem(ctx context.Context, id ids.ItemId) ([]ids.CacheId, error) {
	item, err := d.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := d.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, string(id)); err != nil {
		return nil, fmt.Errorf("datastore: postgres remove item: %w", err)
	}
	return item.CacheIDs, nil
}

func (d *PostgresDataStore) AssociateCache(ctx context.Context, id ids.ItemId, cacheID ids.CacheId) error {
	_, err := d.db.ExecContext(ctx, `UPDATE items SET cache_ids = array_append(cache_ids, $1) WHERE id = $2`, string(cacheID), string(id))
	if err != nil {
		return fmt.Errorf("datastore: postgres associate cache: %w", err)
	}
	return nil
}

func (d *PostgresDataStore) ListItems(ctx context.Context) ([]ids.ItemId, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("datastore: postgres list items: %w", err)
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

func (d *PostgresDataStore) Close() error { return d.db.Close() }
