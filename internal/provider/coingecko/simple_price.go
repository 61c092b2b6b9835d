package coingecko

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"

	"btctracker/internal/quote"
)

const (
	assetID    = "bitcoin"
	vsCurrency = "usd"

	// maxBodyBytes caps the response body read; the simple-price payload
	// for one asset is well under 1KB.
	maxBodyBytes = 1 << 20
)

func (c *Client) Name() string { return "coingecko" }

// FetchQuote performs a single GET against the simple-price endpoint and
// validates the payload. One network round trip: no retries, no caching.
// Every failure is a *quote.FetchError.
func (c *Client) FetchQuote(ctx context.Context) (quote.Quote, error) {
	raw, err := c.fetchRaw(ctx)
	if err != nil {
		return quote.Quote{}, err
	}
	return ParseQuote(raw)
}

func (c *Client) fetchRaw(ctx context.Context) ([]byte, error) {
	query := url.Values{}
	for key, values := range c.query {
		query[key] = values
	}
	query.Set("ids", assetID)
	query.Set("vs_currencies", vsCurrency)
	query.Set("include_24hr_change", "true")
	query.Set("include_24hr_vol", "true")
	query.Set("include_last_updated_at", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, quote.NewOtherTransportError(err)
	}
	for key, values := range c.header {
		req.Header[key] = values
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, quote.NewHTTPError(res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	return body, nil
}

// classifyTransportError maps an http.Client failure onto the closed error
// set. http.Client wraps most failures in *url.Error, so unwrap-aware
// checks are used throughout.
func classifyTransportError(err error) *quote.FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return quote.NewTimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return quote.NewTimeoutError(err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return quote.NewConnectionError(err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return quote.NewConnectionError(err)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return quote.NewConnectionError(err)
	}
	return quote.NewOtherTransportError(err)
}
