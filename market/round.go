package market

import "github.com/shopspring/decimal"

// LotPrecision is the number of decimal places a lot size is quoted at.
const LotPrecision = 4

// TruncatePrice cuts a price to the given decimal scale, rounding
// toward zero. Order levels must never round past the exact value.
func TruncatePrice(x float64, scale int32) float64 {
	f, _ := decimal.NewFromFloat(x).Truncate(scale).Float64()
	return f
}

// TruncateLots cuts a lot size to LotPrecision decimal places, rounding
// toward zero.
func TruncateLots(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Truncate(LotPrecision).Float64()
	return f
}
