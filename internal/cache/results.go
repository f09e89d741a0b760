// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Package cache provides the bounded recommendation result cache.
//
// The cache is a doubly-linked-list LRU with optional TTL, keyed by the
// request fingerprint. It is process-scoped: nothing survives a
// restart. Stored results are never mutated after insertion; both Put
// and Get copy the item slice so callers cannot alias cached state.
package cache

import (
	"sync"
	"time"

	"github.com/steamlens/steamlens/internal/recommend"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 200

// resultEntry is a node in the LRU list.
type resultEntry struct {
	key        string
	value      recommend.Result
	expiration time.Time
	prev       *resultEntry
	next       *resultEntry
}

// ResultCache is a thread-safe bounded LRU over recommendation results.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	items    map[string]*resultEntry
	head     *resultEntry // sentinel: most recently used side
	tail     *resultEntry // sentinel: least recently used side
	hits     uint64
	misses   uint64
}

// NewResultCache creates a cache holding at most capacity entries. A
// non-positive capacity falls back to DefaultCapacity. A zero ttl
// disables expiry; entries then leave only by LRU eviction.
func NewResultCache(capacity int, ttl time.Duration) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	head := &resultEntry{}
	tail := &resultEntry{}
	head.next = tail
	tail.prev = head
	return &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*resultEntry, capacity),
		head:     head,
		tail:     tail,
	}
}

// Get returns the cached result for key, marking it most recently used.
func (c *ResultCache) Get(key string) (recommend.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return recommend.Result{}, false
	}
	if c.ttl > 0 && time.Now().After(e.expiration) {
		c.remove(e)
		c.misses++
		return recommend.Result{}, false
	}

	c.moveToFront(e)
	c.hits++
	return copyResult(e.value), true
}

// Put stores a result, evicting the least recently used entry when the
// cache is full.
func (c *ResultCache) Put(key string, value recommend.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value = copyResult(value)
	if e, ok := c.items[key]; ok {
		e.value = value
		if c.ttl > 0 {
			e.expiration = time.Now().Add(c.ttl)
		}
		c.moveToFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		c.remove(c.tail.prev)
	}

	e := &resultEntry{key: key, value: value}
	if c.ttl > 0 {
		e.expiration = time.Now().Add(c.ttl)
	}
	c.items[key] = e
	c.addToFront(e)
}

// Clear drops every entry. Counters are preserved.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*resultEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Size     int     `json:"size"`
	Capacity int     `json:"capacity"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
}

// Stats returns a snapshot of the cache counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:     len(c.items),
		Capacity: c.capacity,
		Hits:     c.hits,
		Misses:   c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// addToFront inserts e just after the head sentinel (must hold mu).
func (c *ResultCache) addToFront(e *resultEntry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

// moveToFront marks e most recently used (must hold mu).
func (c *ResultCache) moveToFront(e *resultEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	c.addToFront(e)
}

// remove unlinks e and deletes it from the index (must hold mu).
func (c *ResultCache) remove(e *resultEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

// copyResult deep-copies the item slice so cached results stay
// independent of caller mutations.
func copyResult(r recommend.Result) recommend.Result {
	if r.Items == nil {
		return r
	}
	items := make([]recommend.ScoredItem, len(r.Items))
	copy(items, r.Items)
	return recommend.Result{Items: items, Unresolved: r.Unresolved}
}
