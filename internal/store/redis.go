package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps values in Redis under a key prefix
type RedisStore struct {
	client   *redis.Client
	prefix   string
	capacity int64
}

// NewRedisStore connects to redisURL; capacity <= 0 leaves limits to the server's maxmemory
func NewRedisStore(redisURL, prefix string, capacity int64) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, prefix, capacity), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, prefix string, capacity int64) *RedisStore {
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		capacity: capacity,
	}
}

// Get retrieves a value from Redis
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

// Set stores a value without expiration
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if s.capacity > 0 {
		used, err := s.usedExcept(ctx, key)
		if err != nil {
			return err
		}
		if used+int64(len(key)+len(value)) > s.capacity {
			return fmt.Errorf("%w: %d of %d bytes used", ErrQuotaExceeded, used, s.capacity)
		}
	}

	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", classifyRedisError(err))
	}
	return nil
}

// Delete removes a value from Redis
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Clear removes every key under the store prefix
func (s *RedisStore) Clear(ctx context.Context) error {
	keys, err := s.keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

func (s *RedisStore) usedExcept(ctx context.Context, skip string) (int64, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return 0, err
	}
	var used int64
	for _, k := range keys {
		if k == skip {
			continue
		}
		n, err := s.client.StrLen(ctx, k).Result()
		if err != nil {
			return 0, fmt.Errorf("redis strlen: %w", err)
		}
		used += int64(len(k)) + n
	}
	return used, nil
}

// classifyRedisError maps the server's maxmemory rejection onto ErrQuotaExceeded
func classifyRedisError(err error) error {
	if strings.HasPrefix(err.Error(), "OOM ") {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}
