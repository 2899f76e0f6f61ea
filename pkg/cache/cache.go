// Package cache provides an in-memory LRU lookup cache in front of an
// envfile.Store.
//
// Only hits are cached. The store is append-only with first-wins lookup, so a
// value found once stays correct until the store is cleared; callers that
// clear or reload the store must call Purge. Misses are never cached because
// a later load may define the key.
package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/platinummonkey/envfile/pkg/envfile"
	"github.com/platinummonkey/envfile/pkg/observability"
)

// ErrNilStore is returned when the cache is created without a store
var ErrNilStore = errors.New("cache requires a store")

// Config configures a LookupCache
type Config struct {
	// MaxEntries is the maximum number of cached keys
	MaxEntries int
	// TTL is how long a cached value is served; 0 disables expiry
	TTL time.Duration
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MaxEntries: 1024,
		TTL:        5 * time.Minute,
	}
}

// Stats holds cache statistics
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	ItemCount int64   `json:"item_count"`
	HitRate   float64 `json:"hit_rate"`
}

// LookupCache memoizes Store.Get hits
type LookupCache struct {
	store   *envfile.Store
	cache   *lru.LRU[string, string]
	metrics *observability.Metrics

	// fill is read-held while a miss is copied from the store and write-held
	// by Purge, so a value read before a purge is never cached after it.
	fill sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a lookup cache over store. metrics may be nil.
func New(store *envfile.Store, config *Config, metrics *observability.Metrics) (*LookupCache, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if config == nil {
		config = DefaultConfig()
	}

	maxEntries := config.MaxEntries
	if maxEntries < 10 {
		maxEntries = 10 // Minimum 10 entries
	}

	return &LookupCache{
		store:   store,
		cache:   lru.NewLRU[string, string](maxEntries, nil, config.TTL),
		metrics: metrics,
	}, nil
}

// Get returns the store value for key, consulting the cache first
func (c *LookupCache) Get(key string) (string, bool) {
	if value, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		c.metrics.RecordCacheHit()
		return value, true
	}

	c.misses.Add(1)
	c.metrics.RecordCacheMiss()

	c.fill.RLock()
	defer c.fill.RUnlock()

	value, ok := c.store.Get(key)
	if ok {
		c.cache.Add(key, value)
	}
	return value, ok
}

// Purge drops every cached value
func (c *LookupCache) Purge() {
	c.fill.Lock()
	defer c.fill.Unlock()
	c.cache.Purge()
}

// Store returns the underlying store
func (c *LookupCache) Store() *envfile.Store {
	return c.store
}

// Stats returns cache statistics
func (c *LookupCache) Stats() Stats {
	stats := Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		ItemCount: int64(c.cache.Len()),
	}

	total := stats.Hits + stats.Misses
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	return stats
}
