package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"btctracker/internal/quote"
)

// countingFetch returns a fetch func that counts its invocations.
func countingFetch(calls *atomic.Int64, q quote.Quote, err error) func(context.Context) (quote.Quote, error) {
	return func(context.Context) (quote.Quote, error) {
		calls.Add(1)
		if err != nil {
			return quote.Quote{}, err
		}
		return q, nil
	}
}

func TestGetOrFetch_SecondCallWithinTTLHitsCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	want := quote.Quote{PriceUSD: 50000, Change24hPercent: 3.21}
	c := New(30 * time.Second)

	q1, err := c.GetOrFetch(t.Context(), countingFetch(&calls, want, nil))
	require.NoError(t, err)
	q2, err := c.GetOrFetch(t.Context(), countingFetch(&calls, want, nil))
	require.NoError(t, err)

	require.Equal(t, want, q1)
	require.Equal(t, q1, q2)
	require.EqualValues(t, 1, calls.Load(), "second call within TTL must not hit upstream")
}

func TestGetOrFetch_ExpiredEntryTriggersRefetch(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	want := quote.Quote{PriceUSD: 50000, Change24hPercent: 3.21}
	c := New(time.Nanosecond)

	_, err := c.GetOrFetch(t.Context(), countingFetch(&calls, want, nil))
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	_, err = c.GetOrFetch(t.Context(), countingFetch(&calls, want, nil))
	require.NoError(t, err)

	require.EqualValues(t, 2, calls.Load())
}

func TestGetOrFetch_FailedRefreshKeepsOldEntryAndPropagates(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	good := quote.Quote{PriceUSD: 50000, Change24hPercent: 3.21}
	fetchErr := quote.NewMissingFieldError("usd_24h_change")
	c := New(50 * time.Millisecond)

	_, err := c.GetOrFetch(t.Context(), countingFetch(&calls, good, nil))
	require.NoError(t, err)

	// Let the entry expire, then fail the refresh.
	time.Sleep(60 * time.Millisecond)
	_, err = c.GetOrFetch(t.Context(), countingFetch(&calls, quote.Quote{}, fetchErr))
	require.Error(t, err)
	kind, ok := quote.KindOf(err)
	require.True(t, ok)
	require.Equal(t, quote.KindMissingField, kind)

	// The expired entry is still structurally present (never served as
	// fresh), and a later success replaces it normally.
	_, fresh := c.Quote()
	require.False(t, fresh)
	q, err := c.GetOrFetch(t.Context(), countingFetch(&calls, good, nil))
	require.NoError(t, err)
	require.Equal(t, good, q)
}

func TestRefresh_BypassesTTLAndStoresResult(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	first := quote.Quote{PriceUSD: 50000, Change24hPercent: 3.21}
	second := quote.Quote{PriceUSD: 51000, Change24hPercent: 4.0}
	c := New(30 * time.Second)

	_, err := c.GetOrFetch(t.Context(), countingFetch(&calls, first, nil))
	require.NoError(t, err)

	// Entry is fresh; Refresh must go upstream anyway.
	q, err := c.Refresh(t.Context(), countingFetch(&calls, second, nil))
	require.NoError(t, err)
	require.Equal(t, second, q)
	require.EqualValues(t, 2, calls.Load())

	// The refresh result now serves the cached path.
	q, err = c.GetOrFetch(t.Context(), countingFetch(&calls, first, nil))
	require.NoError(t, err)
	require.Equal(t, second, q)
	require.EqualValues(t, 2, calls.Load())
}

func TestGetOrFetch_SingleFlight(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	want := quote.Quote{PriceUSD: 50000, Change24hPercent: 3.21}
	c := New(30 * time.Second)

	release := make(chan struct{})
	slowFetch := func(context.Context) (quote.Quote, error) {
		calls.Add(1)
		<-release
		return want, nil
	}

	const concurrency = 8
	var wg sync.WaitGroup
	results := make([]quote.Quote, concurrency)
	errs := make([]error, concurrency)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetOrFetch(context.Background(), slowFetch)
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight fetch.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load(), "concurrent callers must share one upstream fetch")
	for i := 0; i < concurrency; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, want, results[i])
	}
}

func TestGetOrFetch_ErrorNeverYieldsDefaultQuote(t *testing.T) {
	t.Parallel()

	c := New(30 * time.Second)
	q, err := c.GetOrFetch(t.Context(), func(context.Context) (quote.Quote, error) {
		return quote.Quote{}, errors.New("boom")
	})
	require.Error(t, err)
	require.Zero(t, q)
}
