package broker

import (
	"context"
	"time"

	"github.com/ichikk/sessionbreakout/market"
)

// Side selects which side of the book a candle series is built from.
type Side int

const (
	Bid Side = iota
	Ask
)

// History provides historical candles and last quotes. Calls are
// synchronous and may block on I/O.
type History interface {
	// BucketStart aligns a raw timestamp to the start of its enclosing
	// period bucket.
	BucketStart(period market.Period, t time.Time) time.Time
	// Candles returns the ordered candles for [from, to).
	Candles(ctx context.Context, instrument string, period market.Period, side Side, from, to time.Time) ([]market.Candle, error)
	LastTick(ctx context.Context, instrument string) (market.Tick, error)
}

// AccountProvider returns the live account state. Snapshots are fetched
// fresh on every call, never cached.
type AccountProvider interface {
	Account(ctx context.Context) (AccountSnapshot, error)
}

type AccountSnapshot struct {
	Equity     float64
	CreditLine float64
	Currency   string
}

// ExecutionGateway submits entry orders and lists the ones still open.
type ExecutionGateway interface {
	OpenOrders(ctx context.Context) ([]Order, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (Order, error)
}

type Command int

const (
	Buy Command = iota
	Sell
)

func (c Command) String() string {
	if c == Sell {
		return "SELL"
	}
	return "BUY"
}

// OrderRequest is a single entry instruction. Target is always 0 for a
// market entry; Limit 0 means no take-profit.
type OrderRequest struct {
	Label      string
	Instrument string
	Command    Command
	Lots       float64
	Target     float64
	Slippage   float64
	Stop       float64
	Limit      float64
}

type Order struct {
	ID              string
	Label           string
	Instrument      string
	Command         Command
	Lots            float64
	OpenPrice       float64
	TakeProfitPrice float64
	StopLossPrice   float64
	OpenTime        time.Time

	// Set once the order is closed.
	ClosePrice     float64
	CloseTime      time.Time
	ProfitLossPips float64
	ProfitLoss     float64 // account currency
}

func (o Order) Closed() bool {
	return !o.CloseTime.IsZero()
}

type EventKind int

const (
	Fill EventKind = iota
	Close
)

func (k EventKind) String() string {
	if k == Close {
		return "CLOSE"
	}
	return "FILL"
}

// OrderEvent is a lifecycle notification delivered by the host, one
// call at a time.
type OrderEvent struct {
	Kind  EventKind
	Order Order
}
