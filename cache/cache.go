// Package cache provides a generic, concurrency-safe, sharded LRU cache.
//
// quill memoises expensive derived data with it: rasterized glyphs, font
// files read from disk, font resolutions and glyph classification. Keys are
// spread over a fixed number of shards by a hash so concurrent lookups on
// unrelated keys do not contend.
package cache

import (
	"container/list"
	"hash/maphash"
	"sync"
	"sync/atomic"
)

const (
	// shardCount must be a power of two.
	shardCount = 16
	shardMask  = shardCount - 1

	// DefaultCapacity is the per-shard capacity used when New is given a
	// non-positive capacity.
	DefaultCapacity = 64
)

// Hasher computes the shard hash of a key.
type Hasher[K any] func(K) uint64

// ComparableHasher returns a Hasher for any comparable key type, seeded
// once per call.
func ComparableHasher[K comparable]() Hasher[K] {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// Stats is a snapshot of cache statistics.
type Stats struct {
	Len       int
	Capacity  int // total across shards
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

type shard[K comparable, V any] struct {
	mu    sync.Mutex
	items map[K]*list.Element
	order *list.List // front is most recent
}

// Cache is a sharded LRU cache. Each shard evicts its least recently used
// entry once it holds more than the per-shard capacity.
type Cache[K comparable, V any] struct {
	shards   [shardCount]shard[K, V]
	hash     Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding up to capacity entries per shard. A nil hash
// uses ComparableHasher.
func New[K comparable, V any](capacity int, hash Hasher[K]) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if hash == nil {
		hash = ComparableHasher[K]()
	}
	c := &Cache[K, V]{hash: hash, capacity: capacity}
	for i := range c.shards {
		c.shards[i].items = make(map[K]*list.Element)
		c.shards[i].order = list.New()
	}
	return c
}

func (c *Cache[K, V]) shardFor(key K) *shard[K, V] {
	return &c.shards[c.hash(key)&shardMask]
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*entry[K, V]).value, true
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set stores value under key, evicting the least recently used entry of the
// shard when it is full.
func (c *Cache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.setLocked(s, key, value)
}

func (c *Cache[K, V]) setLocked(s *shard[K, V], key K, value V) {
	if el, ok := s.items[key]; ok {
		el.Value.(*entry[K, V]).value = value
		s.order.MoveToFront(el)
		return
	}
	for s.order.Len() >= c.capacity {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(*entry[K, V]).key)
		c.evictions.Add(1)
	}
	s.items[key] = s.order.PushFront(&entry[K, V]{key: key, value: value})
}

// GetOrCreate returns the cached value for key, calling create on a miss.
// create runs with the shard locked, so concurrent callers for the same key
// compute the value once; keep it free of calls back into the same cache.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.MoveToFront(el)
		c.hits.Add(1)
		return el.Value.(*entry[K, V]).value
	}
	c.misses.Add(1)
	v := create()
	c.setLocked(s, key, v)
	return v
}

// Delete removes key and reports whether it was present.
func (c *Cache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return false
	}
	s.order.Remove(el)
	delete(s.items, key)
	return true
}

// Purge removes every entry.
func (c *Cache[K, V]) Purge() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		clear(s.items)
		s.order.Init()
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *Cache[K, V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.items)
		s.mu.Unlock()
	}
	return n
}

// Stats returns a snapshot of the cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Len:       c.Len(),
		Capacity:  c.capacity * shardCount,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
