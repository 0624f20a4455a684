// Package journal records order lifecycle events for later review.
// Records are bookkeeping only; strategy state never reloads from them.
package journal

import "time"

// OrderRecord is one fill or close event for a strategy order.
type OrderRecord struct {
	Event      string // "fill" or "close"
	OrderID    string
	Label      string
	Instrument string
	Command    string
	Lots       float64
	OpenPrice  float64
	ClosePrice float64
	Pips       float64
	ProfitLoss float64
	Time       time.Time
}

type Journal interface {
	RecordOrder(OrderRecord) error
	Close() error
}
