// Package evalcache remembers the deepest evaluation seen for each position.
package evalcache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/evalbar/internal/fen"
	"github.com/discochess/evalbar/internal/stats"
)

// DefaultSize is the number of positions kept when no size is given.
const DefaultSize = 4096

// Entry is a cached evaluation.
type Entry[V any] struct {
	Depth int
	Value V
}

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Cache is a thread-safe LRU of evaluations keyed by FEN.
type Cache[V any] struct {
	entries   *lru.Cache[string, Entry[V]]
	collector stats.Collector

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache holding up to size positions.
// The collector is optional; if nil, a no-op collector is used.
func New[V any](size int, collector stats.Collector) (*Cache[V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	entries, err := lru.New[string, Entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{entries: entries, collector: collector}, nil
}

// key maps a FEN onto its cache key. Positions that differ only in move
// counters share an entry; strings that do not parse are used as is.
func key(s string) string {
	if k, err := fen.Key(s); err == nil {
		return k
	}
	return s
}

// Get returns the cached entry for the position s.
func (c *Cache[V]) Get(s string) (Entry[V], bool) {
	e, ok := c.entries.Get(key(s))
	if ok {
		c.hits.Add(1)
		c.collector.IncCounter(stats.MetricCacheHits, 1)
		return e, true
	}
	c.misses.Add(1)
	c.collector.IncCounter(stats.MetricCacheMisses, 1)
	return Entry[V]{}, false
}

// Put stores value for the position s unless a deeper entry is already
// cached. It reports whether the entry was stored.
func (c *Cache[V]) Put(s string, depth int, value V) bool {
	k := key(s)
	if old, ok := c.entries.Peek(k); ok && old.Depth > depth {
		return false
	}
	c.entries.Add(k, Entry[V]{Depth: depth, Value: value})
	c.collector.SetGauge(stats.MetricCacheSize, int64(c.entries.Len()))
	return true
}

// Len returns the number of cached positions.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Stats returns current cache statistics.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.entries.Len(),
	}
}
