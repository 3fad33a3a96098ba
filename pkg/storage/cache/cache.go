// Package cache provides a read-through ristretto cache in front of any
// storage.KV. Writes go to the backing store first and then invalidate the
// cached entry.
package cache

import (
	"context"

	"github.com/coremem/coremem/pkg/storage"
	"github.com/dgraph-io/ristretto/v2"
)

// Config sizes the cache.
type Config struct {
	// NumCounters is the number of keys tracked for admission (about 10x MaxCost items).
	NumCounters int64
	// MaxCost is the total byte budget of cached values.
	MaxCost int64
	// BufferItems is the per-Get buffer size; 64 is the ristretto default.
	BufferItems int64
}

// DefaultConfig returns a cache sized for a handful of collection blobs.
func DefaultConfig() Config {
	return Config{
		NumCounters: 1000,
		MaxCost:     64 << 20,
		BufferItems: 64,
	}
}

// Stats are hit/miss counters for the cache.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// CachedKV decorates a KV with an in-process read cache.
type CachedKV struct {
	next  storage.KV
	cache *ristretto.Cache[string, []byte]
}

// New wraps next with a cache built from cfg.
func New(next storage.KV, cfg Config) (*CachedKV, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}
	return &CachedKV{next: next, cache: c}, nil
}

// Get serves from cache when possible and fills the cache on a miss.
func (c *CachedKV) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := c.cache.Get(key); ok {
		return append([]byte{}, value...), nil
	}

	value, err := c.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, append([]byte{}, value...), cost(value))
	c.cache.Wait()
	return value, nil
}

// Set writes through and drops the cached entry.
func (c *CachedKV) Set(ctx context.Context, key string, value []byte) error {
	c.cache.Del(key)
	if err := c.next.Set(ctx, key, value); err != nil {
		return err
	}
	c.cache.Del(key)
	return nil
}

// Delete removes the key from both layers.
func (c *CachedKV) Delete(ctx context.Context, key string) error {
	c.cache.Del(key)
	return c.next.Delete(ctx, key)
}

// Ping checks the backing store.
func (c *CachedKV) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

// Stats returns cache hit and miss counts.
func (c *CachedKV) Stats() Stats {
	if c.cache.Metrics == nil {
		return Stats{}
	}
	return Stats{Hits: c.cache.Metrics.Hits(), Misses: c.cache.Metrics.Misses()}
}

// Close closes the cache and the backing store.
func (c *CachedKV) Close() error {
	c.cache.Close()
	return c.next.Close()
}

func cost(value []byte) int64 {
	if len(value) == 0 {
		return 1
	}
	return int64(len(value))
}
