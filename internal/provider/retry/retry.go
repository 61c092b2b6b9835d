package retry

import (
	"context"
	"time"

	"btctracker/internal/provider"
	"btctracker/internal/quote"
)

// Controller runs a fetch cycle up to MaxAttempts times with a fixed
// Delay between failed attempts. It returns on first success; when every
// attempt fails, the last attempt's error is returned and earlier errors
// are discarded. Callers needing the full attempt history must wrap it.
type Controller struct {
	MaxAttempts int
	Delay       time.Duration
}

func New(maxAttempts int, delay time.Duration) *Controller {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Controller{MaxAttempts: maxAttempts, Delay: delay}
}

// Do attempts fetch sequentially. The pause between attempts is
// cooperative: a canceled context wins the select, so an in-progress
// sequence stops at the next attempt boundary, never mid-request.
func (c *Controller) Do(ctx context.Context, fetch provider.FetchFunc) (quote.Quote, error) {
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 && c.Delay > 0 {
			t := time.NewTimer(c.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return quote.Quote{}, ctx.Err()
			case <-t.C:
			}
		}
		q, err := fetch(ctx)
		if err == nil {
			return q, nil
		}
		lastErr = err
	}
	return quote.Quote{}, lastErr
}
