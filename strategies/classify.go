package strategies

import "github.com/ichikk/sessionbreakout/market"

// Direction of a breakout entry.
type Direction int

const (
	Long Direction = iota
	Short
)

func (d Direction) String() string {
	if d == Short {
		return "SHORT"
	}
	return "LONG"
}

// Breakout is a classified entry. Stop sits on the opposing range
// boundary; Limit is 0 when take-profit is disabled.
type Breakout struct {
	Direction Direction
	Stop      float64
	Limit     float64
}

// Classify decides whether the live bid bar broke out of the reference
// range. A signal requires a true crossing inside the bar: the open
// strictly on one side of the breakout level and the close strictly on
// the other. The two conditions are mutually exclusive for any input.
func Classify(bar market.Candle, rng RangeSummary, meta market.InstrumentMeta, marginPips, takeProfitPips float64) (Breakout, bool) {
	breakHigh := rng.High + marginPips*meta.PipValue
	breakLow := rng.Low - marginPips*meta.PipValue

	switch {
	case bar.Open < breakHigh && breakHigh < bar.Close:
		return Breakout{
			Direction: Long,
			Stop:      rng.Low,
			Limit:     limitPrice(bar.Close, takeProfitPips, meta, +1),
		}, true
	case bar.Open > breakLow && breakLow > bar.Close:
		return Breakout{
			Direction: Short,
			Stop:      rng.High,
			Limit:     limitPrice(bar.Close, takeProfitPips, meta, -1),
		}, true
	}
	return Breakout{}, false
}

// limitPrice is the take-profit level, truncated toward zero at the
// instrument's pip scale so the level never rounds past the target.
func limitPrice(close, tp float64, meta market.InstrumentMeta, dir float64) float64 {
	if tp == 0 {
		return 0
	}
	return market.TruncatePrice(close+dir*tp*meta.PipValue, meta.PipScale)
}
