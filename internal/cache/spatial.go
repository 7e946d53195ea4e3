// Package cache provides the bounded, time-expiring result cache for
// trending queries. Keys are derived from a geohash bucket plus the
// integer-truncated radius, so nearby queries intentionally collide: the
// lossy key trades exactness for hit rate.
package cache

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mmcloughlin/geohash"

	"github.com/jonesrussell/contextual-news/internal/domain"
)

// Default cache parameters.
const (
	// DefaultTTL is how long an entry stays valid after insertion.
	// Expiry is measured from insertion, not last access.
	DefaultTTL = 300 * time.Second

	// DefaultMaxEntries bounds the number of distinct keys; the least
	// recently used entry is evicted beyond this.
	DefaultMaxEntries = 1000

	// DefaultGeohashPrecision gives roughly sub-kilometer buckets.
	DefaultGeohashPrecision = 6
)

// Spatial caches fully-enriched ranked results keyed by spatial bucket.
// It is safe for concurrent use. Writes to an existing key overwrite in
// place and refresh the TTL. Concurrent misses for the same key may both
// compute and both write; last write wins.
type Spatial struct {
	entries   *lru.LRU[string, []domain.EnrichedArticle]
	precision uint
}

// NewSpatial creates a Spatial cache. Non-positive maxEntries, ttl, or
// precision fall back to the defaults.
func NewSpatial(maxEntries int, ttl time.Duration, precision int) *Spatial {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if precision <= 0 {
		precision = DefaultGeohashPrecision
	}

	return &Spatial{
		entries:   lru.NewLRU[string, []domain.EnrichedArticle](maxEntries, nil, ttl),
		precision: uint(precision),
	}
}

// Key derives the cache key for a query location and radius. Queries whose
// locations fall in the same geohash bucket with the same truncated radius
// share a key.
func (c *Spatial) Key(lat, lon, radiusKm float64) string {
	bucket := geohash.EncodeWithPrecision(lat, lon, c.precision)
	return fmt.Sprintf("trending:%s:radius:%d", bucket, int(radiusKm))
}

// Get returns the cached value for key, or ok=false if the key is absent
// or its TTL has elapsed.
func (c *Spatial) Get(key string) ([]domain.EnrichedArticle, bool) {
	return c.entries.Get(key)
}

// Set stores value under key, overwriting any existing entry and
// refreshing its TTL.
func (c *Spatial) Set(key string, value []domain.EnrichedArticle) {
	c.entries.Add(key, value)
}

// Len returns the number of live entries.
func (c *Spatial) Len() int {
	return c.entries.Len()
}
