// Package cache provides an in-memory TTL cache with per-class
// lifetimes and single-flight miss coalescing. Entries are evicted
// lazily on read; there is no background sweeper.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/marketpulse/pulse/internal/metrics"
)

// Class names a TTL bucket.
type Class string

const (
	ClassQuote      Class = "quote"
	ClassPrediction Class = "prediction"
	ClassMarket     Class = "market"
)

// Default lifetimes per class.
const (
	DefaultQuoteTTL      = 5 * time.Second
	DefaultPredictionTTL = 30 * time.Second
	DefaultMarketTTL     = 30 * time.Second
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL-classed in-memory store. The zero value is not
// usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[Class]map[string]entry
	ttls    map[Class]time.Duration

	group   singleflight.Group
	metrics *metrics.Registry
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the lifetime of one class.
func WithTTL(class Class, ttl time.Duration) Option {
	return func(c *Cache) { c.ttls[class] = ttl }
}

// WithMetrics sets the metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Cache) { c.metrics = m }
}

// WithClock overrides the time source. Tests use this to force expiry
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache with the default per-class TTLs.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: map[Class]map[string]entry{
			ClassQuote:      {},
			ClassPrediction: {},
			ClassMarket:     {},
		},
		ttls: map[Class]time.Duration{
			ClassQuote:      DefaultQuoteTTL,
			ClassPrediction: DefaultPredictionTTL,
			ClassMarket:     DefaultMarketTTL,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key in class, or false when the
// key is absent or expired. Expired entries are removed on the spot.
func (c *Cache) Get(key string, class Class) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[class][key]
	c.mu.RUnlock()

	if ok && c.now().Before(e.expiresAt) {
		c.record(class, "hit")
		return e.value, true
	}
	if ok {
		c.mu.Lock()
		// Recheck under the write lock; a Put may have raced in.
		if e, ok := c.entries[class][key]; ok && !c.now().Before(e.expiresAt) {
			delete(c.entries[class], key)
		}
		c.mu.Unlock()
	}
	c.record(class, "miss")
	return nil, false
}

// Put stores value under key with the class TTL.
func (c *Cache) Put(key string, value any, class Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[class][key] = entry{
		value:     value,
		expiresAt: c.now().Add(c.ttls[class]),
	}
}

// Do returns the cached value for key, or runs fn exactly once across
// concurrent callers to compute and store it. A fn error is returned
// without caching.
func (c *Cache) Do(key string, class Class, fn func() (any, error)) (any, error) {
	if v, ok := c.Get(key, class); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(string(class)+":"+key, func() (any, error) {
		// A concurrent flight may have already filled the entry.
		if v, ok := c.Get(key, class); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return nil, err
		}
		c.Put(key, v, class)
		return v, nil
	})
	return v, err
}

// Values returns the unexpired values of a class in unspecified order.
func (c *Cache) Values(class Class) []any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	values := make([]any, 0, len(c.entries[class]))
	for _, e := range c.entries[class] {
		if now.Before(e.expiresAt) {
			values = append(values, e.value)
		}
	}
	return values
}

// Len returns the number of unexpired entries in a class.
func (c *Cache) Len(class Class) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	n := 0
	for _, e := range c.entries[class] {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *Cache) record(class Class, result string) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(string(class), result)
	}
}
