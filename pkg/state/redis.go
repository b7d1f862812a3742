package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is an optional distributed backend for the snapshot,
// useful when multiple orchestrator processes share state. It keeps
// the snapshot under a single key: Save/Load marshal and unmarshal the
// whole Snapshot document as JSON, same as the file backend.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore returns a RedisStore writing Snapshot documents to key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Save writes snap to Redis, replacing any prior value.
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot to redis: %w", err)
	}
	return nil
}

// Load reads the snapshot from Redis, returning an empty Snapshot if
// the key does not exist.
func (s *RedisStore) Load(ctx context.Context, maxHistory int) (Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Empty(), nil
	}
	if err != nil {
		return Empty(), fmt.Errorf("failed to read snapshot from redis: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Empty(), nil
	}
	if snap.Version != CurrentVersion {
		return Empty(), nil
	}
	snap.PerformanceRecords = capHistory(snap.PerformanceRecords, maxHistory)
	return snap, nil
}
