package main

import (
	"fmt"
	"math"
	"strings"

	"btctracker/internal/quote"
	"btctracker/internal/tracker"
)

func printSnapshot(s tracker.Snapshot) {
	q, d := s.Quote, s.Derived

	fmt.Printf("BTC %s\n", formatUSD(q.PriceUSD))
	fmt.Printf("  24h change:  %s\n", changeLine(q.Change24hPercent, d.ChangeAmountUSD))
	fmt.Printf("  24h ago:     %s\n", formatUSD(d.PreviousPriceUSD))
	if q.Volume24hUSD > 0 {
		fmt.Printf("  24h volume:  %s\n", formatUSD(q.Volume24hUSD))
	}
	fmt.Printf("  trend:       %s\n", trendLine(d.Trend, q.Change24hPercent))
	if !q.LastUpdatedAt.IsZero() {
		fmt.Printf("  updated:     %s\n", q.LastUpdatedAt.Format("2006-01-02 15:04:05 MST"))
	}
}

// formatUSD renders a dollar amount with thousands separators, e.g.
// 50000 -> "$50,000.00".
func formatUSD(v float64) string {
	s := fmt.Sprintf("%.2f", math.Abs(v))
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
		if len(whole) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(whole); i += 3 {
		b.WriteString(whole[i : i+3])
		if i+3 < len(whole) {
			b.WriteByte(',')
		}
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func changeLine(percent, amount float64) string {
	switch {
	case percent > 0:
		return fmt.Sprintf("up %.2f%% (%s)", percent, formatUSD(amount))
	case percent < 0:
		return fmt.Sprintf("down %.2f%% (%s)", -percent, formatUSD(-amount))
	default:
		return "unchanged"
	}
}

func trendLine(t quote.TrendBucket, percent float64) string {
	abs := math.Abs(percent)
	switch t {
	case quote.TrendStrongUp:
		return fmt.Sprintf("strong rally, up %.2f%% over 24h", abs)
	case quote.TrendModerateUp:
		return fmt.Sprintf("steady climb, up %.2f%% over 24h", abs)
	case quote.TrendSlightUp:
		return fmt.Sprintf("slight gain, up %.2f%% over 24h", abs)
	case quote.TrendFlat:
		return "holding steady over 24h"
	case quote.TrendSlightDown:
		return fmt.Sprintf("slight dip, down %.2f%% over 24h", abs)
	case quote.TrendModerateDown:
		return fmt.Sprintf("clear decline, down %.2f%% over 24h", abs)
	case quote.TrendStrongDown:
		return fmt.Sprintf("sharp drop, down %.2f%% over 24h", abs)
	default:
		return string(t)
	}
}
