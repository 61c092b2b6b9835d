package quote

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	t.Parallel()

	q := Quote{PriceUSD: 50000, Change24hPercent: 3.21}
	d := Derive(q)

	require.InDelta(t, 1605.0, d.ChangeAmountUSD, 1e-9)
	require.InDelta(t, 48395.0, d.PreviousPriceUSD, 1e-9)
	require.Equal(t, TrendModerateUp, d.Trend)
}

func TestDerive_PreviousPlusChangeEqualsPrice(t *testing.T) {
	t.Parallel()

	quotes := []Quote{
		{PriceUSD: 50000, Change24hPercent: 3.21},
		{PriceUSD: 61000, Change24hPercent: -1.5},
		{PriceUSD: 0.0001, Change24hPercent: 99.9},
		{PriceUSD: 123456.78, Change24hPercent: -42},
		{PriceUSD: 30000, Change24hPercent: 0},
	}
	for _, q := range quotes {
		d := Derive(q)
		require.InDelta(t, q.PriceUSD, d.PreviousPriceUSD+d.ChangeAmountUSD, 1e-9)
	}
}

func TestDerive_NegativeChange(t *testing.T) {
	t.Parallel()

	d := Derive(Quote{PriceUSD: 61000, Change24hPercent: -1.5})
	require.InDelta(t, -915.0, d.ChangeAmountUSD, 1e-9)
	require.InDelta(t, 61915.0, d.PreviousPriceUSD, 1e-9)
	require.Equal(t, TrendSlightDown, d.Trend)
}

func TestTrendOf_Buckets(t *testing.T) {
	t.Parallel()

	cases := []struct {
		p    float64
		want TrendBucket
	}{
		{7.5, TrendStrongUp},
		{5.0001, TrendStrongUp},
		{5.0, TrendModerateUp}, // boundary: 5 is moderate, not strong
		{3.21, TrendModerateUp},
		{2.0, TrendSlightUp}, // boundary: 2 is slight, not moderate
		{0.5, TrendSlightUp},
		{0.0, TrendFlat},
		{-0.5, TrendSlightDown},
		{-2.0, TrendSlightDown}, // boundary: -2 is slight, not moderate
		{-3.0, TrendModerateDown},
		{-5.0, TrendModerateDown}, // boundary: -5 is moderate, not strong
		{-5.0001, TrendStrongDown},
		{-12.0, TrendStrongDown},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.want, TrendOf(tc.p), "p=%v", tc.p)
	}
}
