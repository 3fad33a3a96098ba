// Package redis provides a Redis-backed implementation of the storage KV interface.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/coremem/coremem/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// Config holds connection settings for RedisStorage.
type Config struct {
	Address      string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client is the subset of go-redis the storage needs. *redis.Client and
// redis.UniversalClient both satisfy it.
type Client interface {
	redis.Cmdable
	Close() error
}

// RedisStorage implements storage.KV on top of Redis string keys.
type RedisStorage struct {
	client Client
}

// NewRedisStorage connects to Redis and verifies the connection with a ping.
func NewRedisStorage(ctx context.Context, cfg *Config) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	s := NewWithClient(client)
	if err := s.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client Client) *RedisStorage {
	return &RedisStorage{client: client}
}

// Get returns the value stored under key.
func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &storage.NotFoundError{Key: key}
		}
		return nil, &storage.StorageUnavailableError{Cause: err}
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// Set stores value under key without expiry.
func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return &storage.StorageUnavailableError{Cause: err}
	}
	return nil
}

// Delete removes key.
func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return &storage.StorageUnavailableError{Cause: err}
	}
	return nil
}

// Ping checks the Redis connection.
func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return &storage.StorageUnavailableError{Cause: err}
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
