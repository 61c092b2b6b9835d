package provider

import (
	"context"

	"btctracker/internal/quote"
)

// Source produces a fresh Quote for the tracked asset. An implementation
// performs one full fetch-then-validate cycle per call; retry and caching
// are layered on top of it.
type Source interface {
	Name() string
	FetchQuote(ctx context.Context) (quote.Quote, error)
}

// FetchFunc is the fetch half of Source as a bare function, for layers
// that compose fetch cycles without caring about the source name.
type FetchFunc func(ctx context.Context) (quote.Quote, error)
