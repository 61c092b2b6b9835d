package tracker

import (
	"context"
	"fmt"

	"btctracker/internal/provider"
	"btctracker/internal/provider/cache"
	"btctracker/internal/provider/retry"
	"btctracker/internal/quote"
)

// Mode selects the fetch orchestration path. It replaces the original
// UI's ambient retry flag with an explicit request parameter.
type Mode int

const (
	// ModeCached serves from the TTL cache, fetching once on miss/expiry.
	ModeCached Mode = iota
	// ModeForceRetry bypasses the TTL and runs the bounded retry loop;
	// a success lands in the cache like any other fetch.
	ModeForceRetry
)

// Tracker orchestrates the fetch pipeline for the one tracked asset:
// source -> (retry) -> cache.
type Tracker struct {
	src   provider.Source
	cache *cache.Cache
	retry *retry.Controller
}

func New(src provider.Source, c *cache.Cache, r *retry.Controller) *Tracker {
	return &Tracker{src: src, cache: c, retry: r}
}

// Quote returns the current Quote for the requested mode.
func (t *Tracker) Quote(ctx context.Context, mode Mode) (quote.Quote, error) {
	switch mode {
	case ModeCached:
		return t.cache.GetOrFetch(ctx, t.src.FetchQuote)
	case ModeForceRetry:
		return t.cache.Refresh(ctx, func(ctx context.Context) (quote.Quote, error) {
			return t.retry.Do(ctx, t.src.FetchQuote)
		})
	default:
		return quote.Quote{}, fmt.Errorf("tracker: unknown mode %d", mode)
	}
}

// Snapshot bundles a Quote with its derived view for one render.
type Snapshot struct {
	Quote   quote.Quote       `json:"quote"`
	Derived quote.DerivedView `json:"derived"`
}

// Snapshot fetches per mode and derives the presentation values. The
// derivation is recomputed per call; it is a pure function of the Quote.
func (t *Tracker) Snapshot(ctx context.Context, mode Mode) (Snapshot, error) {
	q, err := t.Quote(ctx, mode)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Quote: q, Derived: quote.Derive(q)}, nil
}

// Source reports the underlying source name, for logs and metrics labels.
func (t *Tracker) Source() string { return t.src.Name() }
