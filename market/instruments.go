package market

import "fmt"

// InstrumentMeta carries the per-pair constants the decision engine
// needs: pip granularity and the two currencies of the pair.
type InstrumentMeta struct {
	Name      string // "EUR/USD"
	Primary   string // base currency of the pair
	Secondary string // quote currency of the pair
	PipValue  float64
	PipScale  int32 // decimal places of one pip
}

// Instruments is the set of tradable and conversion pairs. JPY-quoted
// pairs use the 0.01 pip convention, everything else 0.0001.
var Instruments = map[string]InstrumentMeta{
	"EUR/USD": {Name: "EUR/USD", Primary: "EUR", Secondary: "USD", PipValue: 0.0001, PipScale: 4},
	"GBP/USD": {Name: "GBP/USD", Primary: "GBP", Secondary: "USD", PipValue: 0.0001, PipScale: 4},
	"AUD/USD": {Name: "AUD/USD", Primary: "AUD", Secondary: "USD", PipValue: 0.0001, PipScale: 4},
	"NZD/USD": {Name: "NZD/USD", Primary: "NZD", Secondary: "USD", PipValue: 0.0001, PipScale: 4},
	"USD/CHF": {Name: "USD/CHF", Primary: "USD", Secondary: "CHF", PipValue: 0.0001, PipScale: 4},
	"USD/CAD": {Name: "USD/CAD", Primary: "USD", Secondary: "CAD", PipValue: 0.0001, PipScale: 4},
	"EUR/GBP": {Name: "EUR/GBP", Primary: "EUR", Secondary: "GBP", PipValue: 0.0001, PipScale: 4},
	"EUR/CHF": {Name: "EUR/CHF", Primary: "EUR", Secondary: "CHF", PipValue: 0.0001, PipScale: 4},
	"USD/JPY": {Name: "USD/JPY", Primary: "USD", Secondary: "JPY", PipValue: 0.01, PipScale: 2},
	"EUR/JPY": {Name: "EUR/JPY", Primary: "EUR", Secondary: "JPY", PipValue: 0.01, PipScale: 2},
	"GBP/JPY": {Name: "GBP/JPY", Primary: "GBP", Secondary: "JPY", PipValue: 0.01, PipScale: 2},
	"AUD/JPY": {Name: "AUD/JPY", Primary: "AUD", Secondary: "JPY", PipValue: 0.01, PipScale: 2},
	"CHF/JPY": {Name: "CHF/JPY", Primary: "CHF", Secondary: "JPY", PipValue: 0.01, PipScale: 2},
	"CAD/JPY": {Name: "CAD/JPY", Primary: "CAD", Secondary: "JPY", PipValue: 0.01, PipScale: 2},
	"NZD/JPY": {Name: "NZD/JPY", Primary: "NZD", Secondary: "JPY", PipValue: 0.01, PipScale: 2},
}

// Lookup returns the metadata for a pair name like "EUR/USD".
func Lookup(name string) (InstrumentMeta, bool) {
	m, ok := Instruments[name]
	return m, ok
}

// Pair builds the canonical pair name for two currencies.
func Pair(primary, secondary string) string {
	return fmt.Sprintf("%s/%s", primary, secondary)
}
