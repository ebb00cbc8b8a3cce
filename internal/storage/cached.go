package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/coocood/freecache"
)

const megabyte = 1024 * 1024

// Cached is a read-through, write-through cache in front of another Store.
// Reads of hot keys (settings, history) skip the database.
type Cached struct {
	inner Store
	cache *freecache.Cache
}

// NewCached wraps inner with a cache of sizeMB megabytes. freecache enforces a 512KB minimum.
func NewCached(inner Store, sizeMB int) *Cached {
	return &Cached{
		inner: inner,
		cache: freecache.NewCache(sizeMB * megabyte),
	}
}

func (c *Cached) Load(ctx context.Context, key string) ([]byte, error) {
	if v, err := c.cache.Get([]byte(key)); err == nil {
		return v, nil
	}
	v, err := c.inner.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	// An entry larger than the cache allows is simply not cached.
	if err := c.cache.Set([]byte(key), v, 0); err != nil && !errors.Is(err, freecache.ErrLargeEntry) {
		return nil, fmt.Errorf("caching %s: %w", key, err)
	}
	return v, nil
}

func (c *Cached) Save(ctx context.Context, key string, value []byte) error {
	// Drop first so a failed write can never leave a stale cached value behind.
	c.cache.Del([]byte(key))
	if err := c.inner.Save(ctx, key, value); err != nil {
		return err
	}
	_ = c.cache.Set([]byte(key), value, 0)
	return nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	c.cache.Del([]byte(key))
	return c.inner.Delete(ctx, key)
}

func (c *Cached) Close() error {
	c.cache.Clear()
	return c.inner.Close()
}

// HitCount and MissCount expose the cache counters for metrics.
func (c *Cached) HitCount() int64  { return c.cache.HitCount() }
func (c *Cached) MissCount() int64 { return c.cache.MissCount() }
