package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const listingKey = "listing"

// ListingCache holds the published first listing page for a limited time.
// Concurrent misses share one load; the lock is never held across it.
type ListingCache struct {
	mu       sync.Mutex
	page     Page
	loaded   bool
	loadedAt time.Time
	// gen changes on every Set and Invalidate so a slow load cannot
	// overwrite a newer entry.
	gen   uint64
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group
}

// NewListingCache caches for ttl; a non-positive ttl keeps entries until
// Invalidate is called.
func NewListingCache(ttl time.Duration) *ListingCache {
	return &ListingCache{ttl: ttl, now: time.Now}
}

func (c *ListingCache) fresh() bool {
	if !c.loaded {
		return false
	}
	return c.ttl <= 0 || c.now().Sub(c.loadedAt) < c.ttl
}

// lookup returns a copy of the entry when fresh, plus the current generation.
func (c *ListingCache) lookup() (Page, bool, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh() {
		return PaginationState(c.page).clone().page(), true, c.gen
	}
	return Page{}, false, c.gen
}

// GetOrLoad returns the cached page or loads it. The bool reports a cache hit.
func (c *ListingCache) GetOrLoad(ctx context.Context, load func(context.Context) (Page, error)) (Page, bool, error) {
	if page, hit, _ := c.lookup(); hit {
		return page, true, nil
	}

	v, err, _ := c.group.Do(listingKey, func() (any, error) {
		page, hit, gen := c.lookup()
		if hit {
			return page, nil
		}
		page, err := load(ctx)
		if err != nil {
			return Page{}, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.store(page)
		}
		c.mu.Unlock()
		return page, nil
	})
	if err != nil {
		return Page{}, false, err
	}
	return PaginationState(v.(Page)).clone().page(), false, nil
}

// Set replaces the cached page.
func (c *ListingCache) Set(page Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.store(page)
}

func (c *ListingCache) store(page Page) {
	c.page = PaginationState(page).clone().page()
	c.loaded = true
	c.loadedAt = c.now()
}

// Invalidate forces the next GetOrLoad to fetch.
func (c *ListingCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.loaded = false
	c.page = Page{}
}
