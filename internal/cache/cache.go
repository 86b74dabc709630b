// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// DefaultTTL is applied by Set when the caller passes a non-positive TTL.
const DefaultTTL = 60 * time.Second

// ErrClosed is returned by GetOrLoad once the cache has been disposed.
var ErrClosed = errors.New("cache is closed")

// Entry is a single cached response.
type Entry struct {
	Key      string
	Value    any
	StoredAt time.Time
	TTL      time.Duration
}

// ExpiresAt is the first instant at which the entry is no longer valid.
func (e Entry) ExpiresAt() time.Time {
	return e.StoredAt.Add(e.TTL)
}

// Valid reports whether now < StoredAt + TTL.
func (e Entry) Valid(now time.Time) bool {
	return now.Before(e.ExpiresAt())
}

// Loader fetches the value for a missing key.
type Loader func(ctx context.Context) (any, error)

// Option customizes a Cache at construction.
type Option func(*Cache)

// WithClock replaces time.Now. Tests use it to move time deterministically.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithDefaultTTL overrides DefaultTTL for this cache.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// Cache maps string keys to values with a per-entry TTL. It is safe for use
// from multiple goroutines but does not coalesce concurrent loads.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]Entry
	hits       uint64
	misses     uint64
	startTime  time.Time
	defaultTTL time.Duration
	now        func() time.Time
	subs       map[string]*Subscription
	closed     bool
}

// New creates an empty cache. The returned cache must be disposed with Close.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]Entry),
		defaultTTL: DefaultTTL,
		now:        time.Now,
		subs:       make(map[string]*Subscription),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.startTime = c.now()
	return c
}

// Get returns the value for key if present and unexpired. An expired entry is
// removed as a side effect. Hit and miss counters are updated on every call.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	now := c.now()
	if !e.Valid(now) {
		delete(c.entries, key)
		c.misses++
		log.WithField("key", key).Debug("cache entry expired")
		c.publishLocked(Event{Type: EventExpire, Key: key, At: now})
		return nil, false
	}

	c.hits++
	return e.Value, true
}

// Set stores value under key. A non-positive ttl means the default TTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := c.now()
	c.entries[key] = Entry{Key: key, Value: value, StoredAt: now, TTL: ttl}
	c.publishLocked(Event{Type: EventSet, Key: key, At: now})
}

// GetOrLoad returns the cached value for key or, on a miss, runs loader and
// stores its result with ttl. Loader errors are returned and never cached.
// Concurrent callers missing on the same key each run their own loader.
func (c *Cache) GetOrLoad(ctx context.Context, key string, loader Loader, ttl time.Duration) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if c.Closed() {
		return nil, ErrClosed
	}

	v, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	c.Set(key, v, ttl)
	return v, nil
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	c.publishLocked(Event{Type: EventDelete, Key: key, At: c.now()})
	return true
}

// DeletePattern removes every entry whose key starts with prefix and returns
// how many were removed.
func (c *Cache) DeletePattern(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			count++
		}
	}

	if count > 0 {
		log.WithFields(log.Fields{"prefix": prefix, "count": count}).Debug("cache pattern deleted")
		c.publishLocked(Event{Type: EventDelete, Key: prefix, At: c.now()})
	}
	return count
}

// Clear drops every entry. Hit and miss counters survive.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	c.publishLocked(Event{Type: EventClear, At: c.now()})
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Items:     len(c.entries),
		StartTime: c.startTime,
	}
}

// Entries returns a copy of all stored entries, expired ones included, sorted
// by key. It does not touch the counters.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Keys returns the stored keys in sorted order.
func (c *Cache) Keys() []string {
	entries := c.Entries()
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Now exposes the cache clock so collaborators agree on time.
func (c *Cache) Now() time.Time {
	return c.now()
}

// Closed reports whether Close has been called.
func (c *Cache) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close disposes the cache: entries are dropped and every subscription
// channel is closed. Close is idempotent.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.entries = make(map[string]Entry)

	for id, sub := range c.subs {
		sub.closeOnce()
		delete(c.subs, id)
	}
}
