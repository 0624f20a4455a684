// Package sim is an in-memory market and execution venue. It
// implements the History, AccountProvider and ExecutionGateway
// interfaces so the strategy can run against replayed data in tests
// and the CLI without a live broker.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/ichikk/sessionbreakout/broker"
	"github.com/ichikk/sessionbreakout/internal/id"
	"github.com/ichikk/sessionbreakout/market"
)

// EventHandler receives order lifecycle events. The engine delivers
// them one at a time, after its own lock is released.
type EventHandler interface {
	OnOrderEvent(ctx context.Context, ev broker.OrderEvent) error
}

type seriesKey struct {
	instrument string
	period     market.Period
	side       broker.Side
}

type Engine struct {
	mu      sync.Mutex
	acct    broker.AccountSnapshot
	series  map[seriesKey][]market.Candle
	ticks   map[string]market.Tick
	orders  map[string]*broker.Order
	handler EventHandler
}

func NewEngine(acct broker.AccountSnapshot) *Engine {
	return &Engine{
		acct:   acct,
		series: make(map[seriesKey][]market.Candle),
		ticks:  make(map[string]market.Tick),
		orders: make(map[string]*broker.Order),
	}
}

// SetEventHandler registers the strategy (or any listener) for order
// lifecycle events.
func (e *Engine) SetEventHandler(h EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = h
}

// LoadCandles installs a historical candle series. Candles must be in
// ascending time order.
func (e *Engine) LoadCandles(instrument string, period market.Period, side broker.Side, candles []market.Candle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.series[seriesKey{instrument, period, side}] = candles
}

// SetAccount replaces the account snapshot served to the strategy.
func (e *Engine) SetAccount(acct broker.AccountSnapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.acct = acct
}

// BucketStart floors t to the start of its period bucket. Buckets are
// epoch-aligned in UTC, which matches broker bar alignment for any
// intraday period.
func (e *Engine) BucketStart(period market.Period, t time.Time) time.Time {
	return t.UTC().Truncate(period.Duration())
}

func (e *Engine) Candles(ctx context.Context, instrument string, period market.Period, side broker.Side, from, to time.Time) ([]market.Candle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, ok := e.series[seriesKey{instrument, period, side}]
	if !ok {
		return nil, errors.Errorf("no candle series for %s %s", instrument, period)
	}
	var out []market.Candle
	for _, c := range all {
		if !c.Time.Before(from) && c.Time.Before(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (e *Engine) LastTick(ctx context.Context, instrument string) (market.Tick, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.ticks[instrument]
	if !ok {
		return market.Tick{}, errors.Errorf("no tick for %s", instrument)
	}
	return t, nil
}

func (e *Engine) Account(ctx context.Context) (broker.AccountSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct, nil
}

func (e *Engine) OpenOrders(ctx context.Context) ([]broker.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []broker.Order
	for _, o := range e.orders {
		if !o.Closed() {
			out = append(out, *o)
		}
	}
	return out, nil
}

// SubmitOrder fills the request immediately at the last tick: ask for
// buys, bid for sells. The fill event is delivered before returning.
func (e *Engine) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	e.mu.Lock()

	if req.Lots <= 0 {
		e.mu.Unlock()
		return broker.Order{}, errors.Errorf("rejected %s: lots must be positive, got %v", req.Label, req.Lots)
	}
	if _, ok := market.Lookup(req.Instrument); !ok {
		e.mu.Unlock()
		return broker.Order{}, errors.Errorf("rejected %s: unknown instrument %s", req.Label, req.Instrument)
	}
	tick, ok := e.ticks[req.Instrument]
	if !ok {
		e.mu.Unlock()
		return broker.Order{}, errors.Errorf("rejected %s: no market price for %s", req.Label, req.Instrument)
	}

	fill := tick.Ask
	if req.Command == broker.Sell {
		fill = tick.Bid
	}
	o := &broker.Order{
		ID:              id.New(),
		Label:           req.Label,
		Instrument:      req.Instrument,
		Command:         req.Command,
		Lots:            req.Lots,
		OpenPrice:       fill,
		TakeProfitPrice: req.Limit,
		StopLossPrice:   req.Stop,
		OpenTime:        tick.Time,
	}
	e.orders[o.ID] = o
	handler := e.handler
	order := *o
	e.mu.Unlock()

	if handler != nil {
		if err := handler.OnOrderEvent(ctx, broker.OrderEvent{Kind: broker.Fill, Order: order}); err != nil {
			return order, err
		}
	}
	return order, nil
}

// UpdateTick installs a new quote and runs stop/limit triggers for
// open orders on that instrument. Close events fire after the engine
// lock is released, mirroring how a host serializes notifications.
func (e *Engine) UpdateTick(ctx context.Context, tick market.Tick) error {
	e.mu.Lock()
	e.ticks[tick.Instrument] = tick

	var closed []broker.Order
	for _, o := range e.orders {
		if o.Closed() || o.Instrument != tick.Instrument {
			continue
		}
		price, hit := triggerPrice(o, tick)
		if !hit {
			continue
		}
		e.close(o, price, tick.Time)
		closed = append(closed, *o)
	}
	handler := e.handler
	e.mu.Unlock()

	if handler == nil {
		return nil
	}
	for _, o := range closed {
		if err := handler.OnOrderEvent(ctx, broker.OrderEvent{Kind: broker.Close, Order: o}); err != nil {
			return err
		}
	}
	return nil
}

// CloseOrder force-closes an open order at the given price, emitting
// the close event. Used by tests and the replay teardown.
func (e *Engine) CloseOrder(ctx context.Context, orderID string, price float64, at time.Time) error {
	e.mu.Lock()
	o, ok := e.orders[orderID]
	if !ok || o.Closed() {
		e.mu.Unlock()
		return errors.Errorf("no open order %s", orderID)
	}
	e.close(o, price, at)
	handler := e.handler
	order := *o
	e.mu.Unlock()

	if handler != nil {
		return handler.OnOrderEvent(ctx, broker.OrderEvent{Kind: broker.Close, Order: order})
	}
	return nil
}

// close fills in realized results. Caller holds the lock.
func (e *Engine) close(o *broker.Order, price float64, at time.Time) {
	o.ClosePrice = price
	o.CloseTime = at

	meta, _ := market.Lookup(o.Instrument)
	diff := price - o.OpenPrice
	if o.Command == broker.Sell {
		diff = -diff
	}
	o.ProfitLossPips = diff / meta.PipValue

	// P&L in the quote currency, converted to the account currency by
	// the last known conversion tick, 1:1 when none is loaded.
	plQuote := diff * o.Lots * unitsPerLot
	rate := 1.0
	if meta.Secondary != e.acct.Currency {
		if t, ok := e.ticks[market.Pair(meta.Secondary, e.acct.Currency)]; ok {
			rate = t.Bid
		}
	}
	o.ProfitLoss = plQuote * rate
}

const unitsPerLot = 100000

// triggerPrice reports whether the tick crosses the order's stop or
// limit level and the price the close executes at. Longs close on the
// bid, shorts on the ask.
func triggerPrice(o *broker.Order, tick market.Tick) (float64, bool) {
	price := tick.Bid
	if o.Command == broker.Sell {
		price = tick.Ask
	}

	if o.Command == broker.Buy {
		if o.StopLossPrice > 0 && price <= o.StopLossPrice {
			return price, true
		}
		if o.TakeProfitPrice > 0 && price >= o.TakeProfitPrice {
			return price, true
		}
		return 0, false
	}
	if o.StopLossPrice > 0 && price >= o.StopLossPrice {
		return price, true
	}
	if o.TakeProfitPrice > 0 && price <= o.TakeProfitPrice {
		return price, true
	}
	return 0, false
}
