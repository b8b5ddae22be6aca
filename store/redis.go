// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic transaction retries per operation
const maxTxRetries = 10

// RedisStore keeps each document as a JSON string under its path.
// Merge and Claim use WATCH/MULTI optimistic transactions.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at redisURL
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	if redisURL == "" {
		return nil, errors.New("redis URL is required")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	val, err := r.client.Get(ctx, path).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return json.RawMessage(val), nil
}

func (r *RedisStore) Write(ctx context.Context, path string, value any) error {
	enc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := r.client.Set(ctx, path, enc, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (r *RedisStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	return r.update(ctx, path, mergeFields(fields))
}

func (r *RedisStore) Claim(ctx context.Context, path, key string) (bool, error) {
	var claimed bool
	err := r.update(ctx, path, claimKey(key, &claimed))
	return claimed, err
}

func (r *RedisStore) update(ctx context.Context, path string, fn mutation) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, path).Bytes()
		if err != nil && err != redis.Nil {
			return err
		}

		updated, changed, err := fn(current)
		if err != nil || !changed {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, path, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, path)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("failed to update %s: %w", path, err)
	}
	return fmt.Errorf("%s: %w", path, ErrConflict)
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}
