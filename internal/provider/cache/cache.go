package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"btctracker/internal/provider"
	"btctracker/internal/quote"
)

// flightKey is the singleflight key. There is one tracked asset, so one key.
const flightKey = "bitcoin:usd"

// entry stores the last successful fetch with the instant it happened.
type entry struct {
	fetchedAt time.Time
	q         quote.Quote
}

// Cache memoizes the last successful fetch for a TTL. Single entry: the
// cache is keyed implicitly by the one tracked asset.
//
// An expired entry stays in place until a later fetch succeeds; callers see
// "expired" and "never fetched" identically. A failed refresh never clears
// a previously good entry. Concurrent callers share one in-flight upstream
// fetch (single-flight), never issuing a duplicate request.
type Cache struct {
	TTL time.Duration

	mu     sync.Mutex
	flight singleflight.Group
	ent    *entry
}

func New(ttl time.Duration) *Cache {
	return &Cache{TTL: ttl}
}

// GetOrFetch returns the cached Quote when it is fresher than TTL,
// otherwise runs fetch and stores its result on success.
func (c *Cache) GetOrFetch(ctx context.Context, fetch provider.FetchFunc) (quote.Quote, error) {
	if q, ok := c.fresh(time.Now()); ok {
		return q, nil
	}
	return c.fetchShared(ctx, fetch)
}

// Refresh bypasses the TTL check and always runs fetch, writing a success
// into the cache exactly like a normal fetch. This is the force-refresh
// path; it shares the singleflight key with GetOrFetch so a forced refresh
// and a cache-miss fetch can never run upstream concurrently.
func (c *Cache) Refresh(ctx context.Context, fetch provider.FetchFunc) (quote.Quote, error) {
	return c.fetchShared(ctx, fetch)
}

// Quote returns the cached Quote if it is still fresh. ok is false for
// both "expired" and "never fetched".
func (c *Cache) Quote() (q quote.Quote, ok bool) {
	return c.fresh(time.Now())
}

func (c *Cache) fresh(now time.Time) (quote.Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ent == nil || c.TTL <= 0 {
		return quote.Quote{}, false
	}
	if now.Sub(c.ent.fetchedAt) >= c.TTL {
		return quote.Quote{}, false
	}
	return c.ent.q, true
}

func (c *Cache) fetchShared(ctx context.Context, fetch provider.FetchFunc) (quote.Quote, error) {
	v, err, _ := c.flight.Do(flightKey, func() (any, error) {
		q, err := fetch(ctx)
		if err != nil {
			// Keep the existing entry; a stale value is still the best
			// candidate for the next successful refresh window.
			return quote.Quote{}, err
		}
		c.mu.Lock()
		c.ent = &entry{fetchedAt: time.Now(), q: q}
		c.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return quote.Quote{}, err
	}
	return v.(quote.Quote), nil
}
