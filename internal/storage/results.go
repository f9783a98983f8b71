package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	store "github.com/jwebster45206/rando-engine/pkg/storage"
)

// Result operations (Redis-backed)

func (r *RedisStorage) SaveResult(ctx context.Context, q store.Query, rec *store.ResultRecord) error {
	if rec == nil {
		return errors.New("result cannot be nil")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal result", "id", rec.ID, "error", err)
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	key := q.Key()
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save result", "key", key, "error", err)
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadResult(ctx context.Context, q store.Query) (*store.ResultRecord, error) {
	key := q.Key()
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Result not cached", "key", key)
			return nil, nil
		}
		r.logger.Error("Failed to load result", "key", key, "error", err)
		return nil, fmt.Errorf("failed to load result: %w", err)
	}

	var rec store.ResultRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Error("Failed to unmarshal result", "key", key, "error", err)
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &rec, nil
}
