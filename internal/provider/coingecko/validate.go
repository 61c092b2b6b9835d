package coingecko

import (
	"encoding/json"
	"fmt"
	"time"

	"btctracker/internal/quote"
)

// ParseQuote validates a raw simple-price body and builds a Quote.
// Checks run in order: JSON decode, asset sub-object present, required
// fields present, price plausible. Pure: no I/O, no logging.
//
// Expected shape:
//
//	{"bitcoin": {"usd": n, "usd_24h_change": n, "usd_24h_vol": n?, "last_updated_at": n?}}
func ParseQuote(raw []byte) (quote.Quote, error) {
	var payload map[string]map[string]float64
	if err := json.Unmarshal(raw, &payload); err != nil {
		return quote.Quote{}, quote.NewMalformedPayloadError(err)
	}

	asset, ok := payload[assetID]
	if !ok || len(asset) == 0 {
		return quote.Quote{}, quote.NewAssetNotFoundError()
	}

	usd, ok := asset["usd"]
	if !ok {
		return quote.Quote{}, quote.NewMissingFieldError("usd")
	}
	change, ok := asset["usd_24h_change"]
	if !ok {
		return quote.Quote{}, quote.NewMissingFieldError("usd_24h_change")
	}
	if usd <= 0 {
		return quote.Quote{}, quote.NewImplausibleValueError(fmt.Errorf("usd=%v", usd))
	}

	q := quote.Quote{
		PriceUSD:         usd,
		Change24hPercent: change,
		Volume24hUSD:     asset["usd_24h_vol"],
	}
	if ts, ok := asset["last_updated_at"]; ok && ts > 0 {
		q.LastUpdatedAt = time.Unix(int64(ts), 0).UTC()
	}
	return q, nil
}
