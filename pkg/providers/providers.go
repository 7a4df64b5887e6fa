// Package providers supplies the infrastructure-provider implementations
// cmd/paise registers per profile (§4.7): memory backends for test,
// embedded sqlite for development, and postgres/redis/s3 for production.
// Each provider is a thin adapter from config.Config to the concrete
// constructor in pkg/state, pkg/cache, pkg/datastore, or pkg/tasks.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/platinummonkey/paise/pkg/cache"
	"github.com/platinummonkey/paise/pkg/config"
	"github.com/platinummonkey/paise/pkg/datastore"
	"github.com/platinummonkey/paise/pkg/state"
	"github.com/platinummonkey/paise/pkg/tasks"
)

// StateStoreProvider picks the profile's StateStore implementation.
type StateStoreProvider struct{}

func (StateStoreProvider) Create(cfg *config.Config) (state.StateStore, error) {
	switch cfg.Profile {
	case config.ProfileTest:
		return state.NewMemoryStateStore(), nil
	case config.ProfileProduction:
		return state.NewRedisStateStore(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
	default:
		return state.NewSQLiteStateStore(cfg.Storage.SqliteDir)
	}
}

// CacheProvider picks the profile's Cache implementation.
type CacheProvider struct{}

func (CacheProvider) Create(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Profile {
	case config.ProfileProduction:
		return cache.NewRedisCache(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
	default:
		size := cfg.Storage.MemoryCacheSize
		if size <= 0 {
			size = 4096
		}
		return cache.NewMemoryCache(size), nil
	}
}

// DataStoreProvider picks the profile's DataStore implementation. In
// production, large content is addressed through S3BlobStore rather than
// stored inline in postgres.
type DataStoreProvider struct{}

func (DataStoreProvider) Create(cfg *config.Config) (datastore.DataStore, error) {
	switch cfg.Profile {
	case config.ProfileTest:
		return datastore.NewMemoryDataStore(), nil
	case config.ProfileProduction:
		var blobs *datastore.S3BlobStore
		if cfg.Storage.S3Bucket != "" {
			var err error
			blobs, err = datastore.NewS3BlobStore(context.Background(), datastore.S3Config{
				Bucket:       cfg.Storage.S3Bucket,
				Region:       cfg.Storage.S3Region,
				Endpoint:     cfg.Storage.S3Endpoint,
				AccessKey:    cfg.Storage.S3AccessKey,
				SecretKey:    cfg.Storage.S3SecretKey,
				UsePathStyle: cfg.Storage.S3UsePathStyle,
			})
			if err != nil {
				return nil, fmt.Errorf("providers: data store blobs: %w", err)
			}
		}
		return datastore.NewPostgresDataStore(datastore.PostgresConfig{
			URL:         cfg.Storage.PostgresURL,
			MaxConns:    cfg.Storage.PostgresMaxConns,
			PingTimeout: cfg.Storage.PostgresTimeout,
		}, blobs)
	default:
		return datastore.NewSQLiteDataStore(cfg.Storage.SqliteDir)
	}
}

// TaskQueueProvider picks the profile's task Handle: inline execution for
// tests (no goroutines, no retries, deterministic ordering) and the
// backoff-driven queued handle everywhere else.
type TaskQueueProvider struct {
	Concurrency int
	BackoffMax  time.Duration
}

func (p TaskQueueProvider) Create(cfg *config.Config) (tasks.Handle, error) {
	if cfg.Profile == config.ProfileTest {
		return tasks.NewInlineHandle(), nil
	}
	return tasks.NewQueuedHandle(p.Concurrency, p.BackoffMax), nil
}

// CoreConfigurationProvider supplies the core's own default document: the
// dirsource root/rescan interval and the HTTP fetcher timeout, all
// overridable from the user configuration directory (§4.1, §4.2).
type CoreConfigurationProvider struct{}

func (CoreConfigurationProvider) ID() string { return "core" }

func (CoreConfigurationProvider) DefaultDocument() string {
	return `
dirsource:
  root: ""
  rescan_interval: 10m
http_fetcher:
  timeout: 30s
`
}
