package state

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

// RedisStateStore is the production-profile durable StateStore, grounded on
// the teacher's postgres.RedisCache wrapper (pkg/storage/postgres/cache.go):
// the same client construction and key-prefixing idiom, repointed from a
// read-through cache in front of Postgres to being the store of record.
// Keys are namespaced "state:{partition}:{key}"; the version rides
// alongside the value as "{version}\x00{value}" since redis has no native
// per-key version column.
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore connects to addr and verifies reachability with Ping,
// matching the teacher's NewRedisCache connection check.
func NewRedisStateStore(addr, password string, db int) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("state: connect to redis: %w", err)
	}

	return &RedisStateStore{client: client}, nil
}

func redisStateKey(partition, key string) string {
	return "state:" + partition + ":" + key
}

func encodeVersioned(value []byte, version int) string {
	return strconv.Itoa(version) + "\x00" + string(value)
}

func decodeVersioned(raw string) ([]byte, int, error) {
	idx := strings.IndexByte(raw, 0)
	if idx < 0 {
		return nil, 0, fmt.Errorf("state: malformed redis entry")
	}
	version, err := strconv.Atoi(raw[:idx])
	if err != nil {
		return nil, 0, fmt.Errorf("state: malformed redis version: %w", err)
	}
	return []byte(raw[idx+1:]), version, nil
}

func (s *RedisStateStore) Get(ctx context.Context, partition, key string) ([]byte, int, error) {
	raw, err := s.client.Get(ctx, redisStateKey(partition, key)).Result()
	if err == redis.Nil {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("state: redis get: %w", err)
	}
	return decodeVersioned(raw)
}

func (s *RedisStateStore) Set(ctx context.Context, partition, key string, value []byte, version int) error {
	if version == 0 {
		version = 1
	}
	if err := s.client.Set(ctx, redisStateKey(partition, key), encodeVersioned(value, version), 0).Err(); err != nil {
		return fmt.Errorf("state: redis set: %w", err)
	}
	return s.client.SAdd(ctx, redisPartitionIndexKey(partition), key).Err()
}

func (s *RedisStateStore) Delete(ctx context.Context, partition, key string) error {
	if err := s.client.Del(ctx, redisStateKey(partition, key)).Err(); err != nil {
		return fmt.Errorf("state: redis delete: %w", err)
	}
	return s.client.SRem(ctx, redisPartitionIndexKey(partition), key).Err()
}

func redisPartitionIndexKey(partition string) string {
	return "state-keys:" + partition
}

func (s *RedisStateStore) ListKeys(ctx context.Context, partition string) ([]string, error) {
	keys, err := s.client.SMembers(ctx, redisPartitionIndexKey(partition)).Result()
	if err != nil {
		return nil, fmt.Errorf("state: redis list keys: %w", err)
	}
	return keys, nil
}

func (s *RedisStateStore) ListVersionsBelow(ctx context.Context, partition string, v int) ([]Entry, error) {
	keys, err := s.ListKeys(ctx, partition)
	if err != nil {
		return nil, err
	}
	var out []Entry
	for _, k := range keys {
		value, version, err := s.Get(ctx, partition, k)
		if err != nil {
			continue
		}
		if version < v {
			out = append(out, Entry{Key: k, Value: value, Version: version})
		}
	}
	return out, nil
}

func (s *RedisStateStore) ClearPartition(ctx context.Context, partition string) error {
	keys, err := s.ListKeys(ctx, partition)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.Delete(ctx, partition, k); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, redisPartitionIndexKey(partition)).Err()
}

func (s *RedisStateStore) Close() error { return s.client.Close() }
