package scraper

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"pricehound/models"
)

// ResultCache memoizes per-platform listings for a bounded time window.
// Built on go-cache with no janitor goroutine: expired entries sit in memory
// until the next read attempt, which is fine because entries are small and
// the TTL is short. Safe under concurrent access; a write race between two
// tasks computing the same key resolves as last write wins.
type ResultCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewResultCache creates a cache with the given TTL.
func NewResultCache(ttl time.Duration) *ResultCache {
	// Cleanup interval 0 disables active eviction; expiry is checked on read.
	return &ResultCache{store: gocache.New(ttl, 0), ttl: ttl}
}

// Get returns the cached listings for (platform, query), if fresh.
func (c *ResultCache) Get(platformKey, query string) ([]models.Listing, bool) {
	if c == nil {
		return nil, false
	}
	val, ok := c.store.Get(cacheKey(platformKey, query))
	if !ok {
		return nil, false
	}
	listings, ok := val.([]models.Listing)
	return listings, ok
}

// Set stores listings for (platform, query).
func (c *ResultCache) Set(platformKey, query string, listings []models.Listing) {
	if c == nil {
		return
	}
	c.store.Set(cacheKey(platformKey, query), listings, c.ttl)
}

// cacheKey normalizes the query so trivially different spellings share an
// entry.
func cacheKey(platformKey, query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return platformKey + "|" + normalized
}
