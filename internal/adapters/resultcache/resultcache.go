// Package resultcache memoizes computed results keyed by the catalog
// version, the spending vector, and the miles valuation. Invalidation
// is wholesale: a catalog reload flushes everything.
package resultcache

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/jwpang/cardwise/internal/domain/spend"
	"github.com/jwpang/cardwise/pkg/metrics"
)

// Key identifies one memoized computation.
type Key uint64

// NewKey hashes the catalog version, the spend vector, and the miles
// valuation into a cache key. Categories are folded in canonical order
// so equal vectors always hash equally.
func NewKey(version string, vec spend.Vector, milesRate float64) Key {
	h := xxhash.New()
	_, _ = h.WriteString(version)
	var buf [8]byte
	for _, c := range spend.All() {
		amt := vec.Amount(c)
		if amt == 0 {
			continue
		}
		_, _ = h.WriteString(string(c))
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(amt))
		_, _ = h.Write(buf[:])
	}
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(milesRate))
	_, _ = h.Write(buf[:])
	return Key(h.Sum64())
}

// Cache is a bounded memoization cache. When full it resets wholesale;
// entries are cheap to recompute and churn only on catalog reloads.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[Key]T
	maxSize int
}

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	maxSize int
}

// WithMaxSize bounds the number of cached entries. Non-positive means
// unbounded.
func WithMaxSize(n int) Option {
	return func(s *settings) {
		s.maxSize = n
	}
}

// New builds a Cache.
func New[T any](opts ...Option) *Cache[T] {
	s := settings{maxSize: 4096}
	for _, o := range opts {
		o(&s)
	}
	return &Cache[T]{
		entries: make(map[Key]T),
		maxSize: s.maxSize,
	}
}

// Get returns the cached value for key, if present.
func (c *Cache[T]) Get(key Key) (T, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		metrics.RecordCacheHit()
	} else {
		metrics.RecordCacheMiss()
	}
	return v, ok
}

// Put stores a value. A full cache resets before inserting.
func (c *Cache[T]) Put(key Key, value T) {
	c.mu.Lock()
	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		if _, exists := c.entries[key]; !exists {
			c.entries = make(map[Key]T)
			metrics.RecordCacheFlush()
		}
	}
	c.entries[key] = value
	metrics.UpdateCacheSize(len(c.entries))
	c.mu.Unlock()
}

// Invalidate drops every entry. Called on catalog reload.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[Key]T)
	metrics.RecordCacheFlush()
	metrics.UpdateCacheSize(0)
	c.mu.Unlock()
}

// Len reports the current entry count.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
