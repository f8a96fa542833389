// Package redis provides a domain.KVStore backed by Redis.
// Each key is a hash holding the JSON value and its write version.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/msomdec/memory-gallery/internal/domain"
)

const (
	fieldValue   = "value"
	fieldVersion = "version"
)

// Store implements domain.KVStore and domain.Database.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to the Redis server at redisURL. All keys are namespaced with prefix.
func New(ctx context.Context, redisURL, prefix string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string) (domain.Entry, error) {
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return domain.Entry{}, fmt.Errorf("redis hgetall failed: %w", err)
	}
	if len(fields) == 0 {
		return domain.Entry{}, domain.ErrNotFound
	}

	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("parse version of %s: %w", key, err)
	}
	return domain.Entry{Value: []byte(fields[fieldValue]), Version: version}, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	k := s.key(key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldValue, value)
		pipe.HIncrBy(ctx, k, fieldVersion, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *Store) CompareAndSwap(ctx context.Context, key string, value []byte, expectedVersion int64) (int64, error) {
	k := s.key(key)
	next := expectedVersion + 1

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, k, fieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expectedVersion {
			return domain.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, fieldValue, value, fieldVersion, next)
			return nil
		})
		return err
	}, k)

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, domain.ErrConflict), errors.Is(err, redis.TxFailedErr):
		return 0, domain.ErrConflict
	default:
		return 0, fmt.Errorf("redis compare-and-swap failed: %w", err)
	}
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

// Migrate is a no-op; Redis hashes need no schema.
func (s *Store) Migrate(ctx context.Context) error { return nil }

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
