// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package cache provides a small thread-safe keyed cache used for compiled
// shader modules and pipelines. Entries are keyed by a content hash of
// their WGSL source, so identical kernels compile once per device.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// Hash computes the FNV-1a content hash of a shader source.
func Hash(src string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(src)) // fnv.Write never returns an error
	return h.Sum64()
}

// Stats holds cache counters, readable without locking.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Cache is a thread-safe map for build-once values. Unlike an LRU it never
// evicts: the working set (one entry per pass kind) is small and bounded,
// so entries live until Purge.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[uint64]V

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[uint64]V)}
}

// Get retrieves a cached value by key.
func (c *Cache[V]) Get(key uint64) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// GetOrCreate returns the cached value for key, building and storing it
// with build on a miss. When two goroutines race on the same missing key,
// both may build but only one result is kept and returned to both.
func (c *Cache[V]) GetOrCreate(key uint64, build func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := build()
	if err != nil {
		var zero V
		return zero, err
	}
	c.mu.Lock()
	if existing, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.entries[key] = v
	c.mu.Unlock()
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the hit and miss counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Purge drops every entry, calling dispose for each held value first.
// dispose may be nil.
func (c *Cache[V]) Purge(dispose func(V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if dispose != nil {
		for _, v := range c.entries {
			dispose(v)
		}
	}
	clear(c.entries)
}
