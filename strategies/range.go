package strategies

import "github.com/ichikk/sessionbreakout/market"

// RangeSummary is the high/low envelope of a candle set. High >= Low
// whenever the summary came from at least one candle.
type RangeSummary struct {
	High float64
	Low  float64
}

// AggregateRange reduces candles to their combined high and low. ok is
// false for an empty window; callers must skip the bar rather than
// classify against a zero range.
func AggregateRange(candles []market.Candle) (RangeSummary, bool) {
	if len(candles) == 0 {
		return RangeSummary{}, false
	}
	r := RangeSummary{High: candles[0].High, Low: candles[0].Low}
	for _, c := range candles[1:] {
		if c.High > r.High {
			r.High = c.High
		}
		if c.Low < r.Low {
			r.Low = c.Low
		}
	}
	return r, true
}
