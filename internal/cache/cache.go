// Package cache provides a bounded in-memory cache whose entries expire.
package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultSize = 1024

// Cache is a size-bounded LRU whose entries expire after a fixed TTL.
type Cache[K comparable, V any] struct {
	items *expirable.LRU[K, V]
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	size int
}

// WithSize bounds the number of entries kept.
func WithSize(size int) Option {
	return func(o *options) {
		o.size = size
	}
}

// New creates a cache whose entries live for ttl. A non-positive ttl keeps
// entries until they are evicted by size.
func New[K comparable, V any](ttl time.Duration, opts ...Option) *Cache[K, V] {
	o := options{size: defaultSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.size <= 0 {
		o.size = defaultSize
	}

	return &Cache[K, V]{
		items: expirable.NewLRU[K, V](o.size, nil, ttl),
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache[K, V]) Get(_ context.Context, key K) (V, bool) {
	return c.items.Get(key)
}

// Set stores value under key for the cache TTL.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V) {
	c.items.Add(key, value)
}

// Delete removes key.
func (c *Cache[K, V]) Delete(_ context.Context, key K) {
	c.items.Remove(key)
}

// Len reports the number of entries, expired ones included until swept.
func (c *Cache[K, V]) Len() int {
	return c.items.Len()
}

// Close drops every entry.
func (c *Cache[K, V]) Close() {
	c.items.Purge()
}
