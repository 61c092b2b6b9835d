package quote

import "time"

// Quote is a validated price snapshot for the tracked asset.
// PriceUSD is always > 0 for a Quote produced by the validator.
type Quote struct {
	PriceUSD         float64   `json:"price_usd"`
	Change24hPercent float64   `json:"change_24h_percent"`
	Volume24hUSD     float64   `json:"volume_24h_usd"`
	LastUpdatedAt    time.Time `json:"last_updated_at,omitzero"`
}

// TrendBucket classifies the 24h percent change into one of seven
// ordered categories.
type TrendBucket string

const (
	TrendStrongUp     TrendBucket = "strong-up"
	TrendModerateUp   TrendBucket = "moderate-up"
	TrendSlightUp     TrendBucket = "slight-up"
	TrendFlat         TrendBucket = "flat"
	TrendSlightDown   TrendBucket = "slight-down"
	TrendModerateDown TrendBucket = "moderate-down"
	TrendStrongDown   TrendBucket = "strong-down"
)

// DerivedView holds render-ready values computed from a Quote.
// It is recomputed per render and never cached.
type DerivedView struct {
	PreviousPriceUSD float64     `json:"previous_price_usd"`
	ChangeAmountUSD  float64     `json:"change_amount_usd"`
	Trend            TrendBucket `json:"trend"`
}

// Derive computes the previous price, the absolute 24h change and the
// trend bucket for q.
func Derive(q Quote) DerivedView {
	amount := q.PriceUSD * q.Change24hPercent / 100
	return DerivedView{
		PreviousPriceUSD: q.PriceUSD - amount,
		ChangeAmountUSD:  amount,
		Trend:            TrendOf(q.Change24hPercent),
	}
}

// TrendOf maps a 24h percent change onto a TrendBucket.
// Boundaries: 5, 2, -2, -5 belong to the milder bucket; exactly 0 is flat.
func TrendOf(p float64) TrendBucket {
	switch {
	case p > 5:
		return TrendStrongUp
	case p > 2:
		return TrendModerateUp
	case p > 0:
		return TrendSlightUp
	case p == 0:
		return TrendFlat
	case p >= -2:
		return TrendSlightDown
	case p >= -5:
		return TrendModerateDown
	default:
		return TrendStrongDown
	}
}
