package strategies

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ichikk/sessionbreakout/broker"
	"github.com/ichikk/sessionbreakout/journal"
	"github.com/ichikk/sessionbreakout/market"
	"github.com/ichikk/sessionbreakout/risk"
	"github.com/ichikk/sessionbreakout/session"
)

const labelTimeLayout = "20060102_1504"

// BreakoutConfig holds the per-session trading parameters. The two
// session instruments may be configured identically or differently.
type BreakoutConfig struct {
	LondonInstrument market.InstrumentMeta
	LondonTakeProfit float64 // pips, 0 disables the take-profit
	AsianInstrument  market.InstrumentMeta
	AsianTakeProfit  float64
	Period           market.Period
	MarginPips       float64
	LabelPrefix      string
	Slippage         float64
}

// Deps are the external collaborators the strategy consumes. Log
// defaults to the logrus standard logger, Journal is optional.
type Deps struct {
	History broker.History
	Account broker.AccountProvider
	Gateway broker.ExecutionGateway
	Sizer   risk.Sizer
	Journal journal.Journal
	Log     *logrus.Logger
}

// SessionBreakout trades range breakouts keyed to the London/US and
// Asian sessions. A host loop drives it: one OnBar call per closed
// bar, one OnOrderEvent call per lifecycle notification. The host
// serializes delivery, so no handler ever runs concurrently with
// another for the same instance.
type SessionBreakout struct {
	cfg     BreakoutConfig
	history broker.History
	gateway broker.ExecutionGateway
	sizer   risk.Sizer
	windows session.Calculator
	journal journal.Journal
	log     *logrus.Logger

	perf Performance
}

func NewSessionBreakout(cfg BreakoutConfig, deps Deps) *SessionBreakout {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &SessionBreakout{
		cfg:     cfg,
		history: deps.History,
		gateway: deps.Gateway,
		sizer:   deps.Sizer,
		windows: session.Calculator{Period: cfg.Period, Buckets: deps.History},
		journal: deps.Journal,
		log:     deps.Log,
	}
}

// OnBar evaluates one closed bar and submits at most one entry order.
// Bars outside the configured period or any trading window are a
// silent no-op. Missing history or conversion data skips the bar
// without retrying; the next bar gets a fresh evaluation.
func (s *SessionBreakout) OnBar(ctx context.Context, instrument string, period market.Period, askBar, bidBar market.Candle) error {
	if instrument != s.cfg.LondonInstrument.Name && instrument != s.cfg.AsianInstrument.Name {
		return nil
	}
	if period != s.cfg.Period {
		return nil
	}

	win, ok := s.windows.WindowAt(bidBar.Time)
	if !ok {
		return nil // market closed
	}

	var meta market.InstrumentMeta
	var takeProfit float64
	switch win.Kind {
	case session.LondonUS:
		if instrument != s.cfg.LondonInstrument.Name {
			return nil
		}
		meta, takeProfit = s.cfg.LondonInstrument, s.cfg.LondonTakeProfit
	case session.Asian:
		if instrument != s.cfg.AsianInstrument.Name {
			return nil
		}
		meta, takeProfit = s.cfg.AsianInstrument, s.cfg.AsianTakeProfit
	}

	candles, err := s.history.Candles(ctx, instrument, s.cfg.Period, broker.Bid, win.From, win.To)
	if err != nil {
		s.log.WithError(err).WithField("instrument", instrument).Debug("history unavailable, skipping bar")
		return nil
	}
	rng, ok := AggregateRange(candles)
	if !ok {
		s.log.WithFields(logrus.Fields{
			"instrument": instrument,
			"from":       win.From,
			"to":         win.To,
		}).Debug("empty reference window, skipping bar")
		return nil
	}

	sig, ok := Classify(bidBar, rng, meta, s.cfg.MarginPips, takeProfit)
	if !ok {
		return nil
	}

	open, err := s.gateway.OpenOrders(ctx)
	if err != nil {
		return errors.Wrap(err, "list open orders")
	}
	if HasExposure(open, instrument, s.cfg.LabelPrefix) {
		return nil // one position per instrument
	}

	lots, err := s.sizer.Lots(ctx, meta)
	if err != nil {
		s.log.WithError(err).WithField("instrument", instrument).Warn("sizing unavailable, skipping bar")
		return nil
	}
	if lots <= 0 {
		s.log.WithField("instrument", instrument).Debug("zero lot size, skipping bar")
		return nil
	}

	cmd := broker.Buy
	if sig.Direction == Short {
		cmd = broker.Sell
	}
	req := broker.OrderRequest{
		Label:      s.orderLabel(bidBar.Time),
		Instrument: instrument,
		Command:    cmd,
		Lots:       lots,
		Target:     0,
		Slippage:   s.cfg.Slippage,
		Stop:       sig.Stop,
		Limit:      sig.Limit,
	}
	if _, err := s.gateway.SubmitOrder(ctx, req); err != nil {
		// Rejection is surfaced to the operator, never retried here.
		s.log.WithError(err).WithFields(logrus.Fields{
			"label":      req.Label,
			"instrument": req.Instrument,
			"command":    req.Command.String(),
			"lots":       req.Lots,
		}).Error("order rejected")
	}
	return nil
}

// OnOrderEvent tracks fills and closes for orders carrying this
// strategy's label prefix. Close events feed the lifetime totals.
func (s *SessionBreakout) OnOrderEvent(ctx context.Context, ev broker.OrderEvent) error {
	o := ev.Order
	if !strings.HasPrefix(o.Label, s.cfg.LabelPrefix) {
		return nil
	}

	switch ev.Kind {
	case broker.Fill:
		s.log.WithFields(logrus.Fields{
			"order":      o.ID,
			"label":      o.Label,
			"instrument": o.Instrument,
			"command":    o.Command.String(),
			"open":       o.OpenPrice,
			"tp":         o.TakeProfitPrice,
			"sl":         o.StopLossPrice,
			"lots":       o.Lots,
		}).Info("order filled")
	case broker.Close:
		s.perf.Add(o.ProfitLossPips, o.ProfitLoss)
		s.log.WithFields(logrus.Fields{
			"order":       o.ID,
			"label":       o.Label,
			"instrument":  o.Instrument,
			"pips":        o.ProfitLossPips,
			"profit_loss": o.ProfitLoss,
		}).Info("order closed")
	}

	if s.journal != nil {
		if err := s.journal.RecordOrder(orderRecord(ev)); err != nil {
			return errors.Wrap(err, "journal order event")
		}
	}
	return nil
}

// OnStop reports the lifetime totals.
func (s *SessionBreakout) OnStop() {
	s.log.WithFields(logrus.Fields{
		"total_pips":        s.perf.TotalPips,
		"total_profit_loss": s.perf.TotalProfitLoss,
	}).Info("strategy stopped")
}

// Performance returns the cumulative realized results so far.
func (s *SessionBreakout) Performance() Performance {
	return s.perf
}

// SubscribedInstruments is the set of pairs the host must subscribe
// to: the session instruments plus the conversion pairs sizing needs.
func (s *SessionBreakout) SubscribedInstruments(accountCurrency string) []string {
	set := make(map[string]struct{})
	for _, meta := range []market.InstrumentMeta{s.cfg.LondonInstrument, s.cfg.AsianInstrument} {
		set[meta.Name] = struct{}{}
		if meta.Primary != s.sizer.BaseCurrency {
			set[market.Pair(meta.Primary, s.sizer.BaseCurrency)] = struct{}{}
		}
	}
	if accountCurrency != s.sizer.BaseCurrency {
		set[market.Pair(accountCurrency, s.sizer.BaseCurrency)] = struct{}{}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (s *SessionBreakout) orderLabel(t time.Time) string {
	return s.cfg.LabelPrefix + "_" + t.UTC().Format(labelTimeLayout)
}

func orderRecord(ev broker.OrderEvent) journal.OrderRecord {
	o := ev.Order
	r := journal.OrderRecord{
		OrderID:    o.ID,
		Label:      o.Label,
		Instrument: o.Instrument,
		Command:    o.Command.String(),
		Lots:       o.Lots,
		OpenPrice:  o.OpenPrice,
	}
	if ev.Kind == broker.Close {
		r.Event = "close"
		r.ClosePrice = o.ClosePrice
		r.Pips = o.ProfitLossPips
		r.ProfitLoss = o.ProfitLoss
		r.Time = o.CloseTime
	} else {
		r.Event = "fill"
		r.Time = o.OpenTime
	}
	return r
}
