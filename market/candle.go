package market

import "time"

// Candle represents OHLC (Open, High, Low, Close) candlestick data.
// Time is the bar's open time, always UTC.
type Candle struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}
