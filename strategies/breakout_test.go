package strategies

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ichikk/sessionbreakout/broker"
	"github.com/ichikk/sessionbreakout/market"
	"github.com/ichikk/sessionbreakout/risk"
	"github.com/ichikk/sessionbreakout/sim"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// newFixture wires a strategy to a sim engine holding a London morning
// range of 1.1050/1.1000 on EUR/USD and a JPY account.
func newFixture(t *testing.T) (*SessionBreakout, *sim.Engine) {
	t.Helper()

	engine := sim.NewEngine(broker.AccountSnapshot{
		Equity:     150_000_000,
		CreditLine: 150_000_000,
		Currency:   "JPY",
	})

	// Tuesday 2026-01-06, 00:00-08:00 UTC morning range.
	day := time.Date(2026, time.January, 6, 0, 0, 0, 0, time.UTC)
	var candles []market.Candle
	for h := 0; h < 8; h++ {
		candles = append(candles, market.Candle{
			Time: day.Add(time.Duration(h) * time.Hour),
			Open: 1.1020, High: 1.1040, Low: 1.1010, Close: 1.1030,
		})
	}
	candles[3].High = 1.1050
	candles[5].Low = 1.1000
	engine.LoadCandles("EUR/USD", market.H1, broker.Bid, candles)

	ctx := context.Background()
	require.NoError(t, engine.UpdateTick(ctx, market.Tick{Instrument: "EUR/JPY", Bid: 162.0, Ask: 162.02}))
	require.NoError(t, engine.UpdateTick(ctx, market.Tick{Instrument: "USD/JPY", Bid: 150.0, Ask: 150.02}))
	require.NoError(t, engine.UpdateTick(ctx, market.Tick{Instrument: "EUR/USD", Bid: 1.1062, Ask: 1.1063, Time: day.Add(11 * time.Hour)}))

	meta, _ := market.Lookup("EUR/USD")
	strat := NewSessionBreakout(BreakoutConfig{
		LondonInstrument: meta,
		LondonTakeProfit: 30,
		AsianInstrument:  meta,
		AsianTakeProfit:  30,
		Period:           market.H1,
		MarginPips:       10,
		LabelPrefix:      "SBS",
		Slippage:         0.5,
	}, Deps{
		History: engine,
		Account: engine,
		Gateway: engine,
		Sizer: risk.Sizer{
			BaseCurrency: "JPY",
			MarginRatio:  0.3,
			MaxLots:      6,
			History:      engine,
			Account:      engine,
			Log:          quietLogger(),
		},
		Log: quietLogger(),
	})
	engine.SetEventHandler(strat)
	return strat, engine
}

func breakoutBar(hour int) market.Candle {
	return market.Candle{
		Time: time.Date(2026, time.January, 6, hour, 0, 0, 0, time.UTC),
		Open: 1.1054, High: 1.1065, Low: 1.1050, Close: 1.1062,
	}
}

func TestOnBar_LongBreakoutSubmitsOrder(t *testing.T) {
	strat, engine := newFixture(t)
	ctx := context.Background()

	bar := breakoutBar(10)
	require.NoError(t, strat.OnBar(ctx, "EUR/USD", market.H1, bar, bar))

	open, err := engine.OpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	o := open[0]
	require.Equal(t, broker.Buy, o.Command)
	require.Equal(t, "EUR/USD", o.Instrument)
	require.Equal(t, "SBS_20260106_1000", o.Label)
	require.Equal(t, 1.1000, o.StopLossPrice)
	require.InDelta(t, 1.1092, o.TakeProfitPrice, 1e-9)
	// 150M JPY credit * 0.3 / 162 EUR/JPY / 1M, truncated to 4 dp.
	require.InDelta(t, 0.2777, o.Lots, 1e-9)
	require.Equal(t, 1.1063, o.OpenPrice) // filled at the ask
}

func TestOnBar_ExposureGuardVetoesSecondOrder(t *testing.T) {
	strat, engine := newFixture(t)
	ctx := context.Background()

	bar := breakoutBar(10)
	require.NoError(t, strat.OnBar(ctx, "EUR/USD", market.H1, bar, bar))
	bar2 := breakoutBar(11)
	require.NoError(t, strat.OnBar(ctx, "EUR/USD", market.H1, bar2, bar2))

	open, err := engine.OpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1, "second signal must be vetoed while the first order is open")
}

func TestOnBar_PeriodMismatchIgnored(t *testing.T) {
	strat, engine := newFixture(t)
	ctx := context.Background()

	bar := breakoutBar(10)
	require.NoError(t, strat.OnBar(ctx, "EUR/USD", market.M15, bar, bar))

	open, err := engine.OpenOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestOnBar_UnknownInstrumentIgnored(t *testing.T) {
	strat, engine := newFixture(t)
	ctx := context.Background()

	bar := breakoutBar(10)
	require.NoError(t, strat.OnBar(ctx, "GBP/USD", market.H1, bar, bar))

	open, err := engine.OpenOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestOnBar_WeekendBarNoOp(t *testing.T) {
	strat, engine := newFixture(t)
	ctx := context.Background()

	bar := breakoutBar(10)
	bar.Time = time.Date(2026, time.January, 3, 10, 0, 0, 0, time.UTC) // Saturday
	require.NoError(t, strat.OnBar(ctx, "EUR/USD", market.H1, bar, bar))

	open, err := engine.OpenOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestOnBar_MissingHistorySkipsBar(t *testing.T) {
	strat, engine := newFixture(t)
	ctx := context.Background()

	// An Asian-session bar has no loaded history for its window; the
	// bar must be skipped without error and without an order.
	bar := breakoutBar(2)
	require.NoError(t, strat.OnBar(ctx, "EUR/USD", market.H1, bar, bar))

	open, err := engine.OpenOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestOnOrderEvent_CloseFeedsPerformance(t *testing.T) {
	strat, engine := newFixture(t)
	ctx := context.Background()

	bar := breakoutBar(10)
	require.NoError(t, strat.OnBar(ctx, "EUR/USD", market.H1, bar, bar))

	open, err := engine.OpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	at := bar.Time.Add(2 * time.Hour)
	require.NoError(t, engine.CloseOrder(ctx, open[0].ID, 1.1092, at))

	perf := strat.Performance()
	// (1.1092 - 1.1063) / 0.0001 = 29 pips.
	require.InDelta(t, 29.0, perf.TotalPips, 1e-6)
	// 0.0029 * 0.2777 lots * 100k units, converted USD->JPY at 150.
	require.InDelta(t, 0.0029*0.2777*100000*150, perf.TotalProfitLoss, 1e-3)
}

func TestOnOrderEvent_ForeignLabelIgnored(t *testing.T) {
	strat, _ := newFixture(t)
	ctx := context.Background()

	ev := broker.OrderEvent{
		Kind: broker.Close,
		Order: broker.Order{
			Label:          "MANUAL_1",
			ProfitLossPips: 100,
			ProfitLoss:     5000,
		},
	}
	require.NoError(t, strat.OnOrderEvent(ctx, ev))
	require.Zero(t, strat.Performance().TotalPips)
}

func TestSubscribedInstruments_IncludesConversionPairs(t *testing.T) {
	strat, _ := newFixture(t)

	// EUR/USD trades, EUR/JPY converts the primary, USD/JPY converts a
	// USD-denominated account.
	got := strat.SubscribedInstruments("USD")
	require.Equal(t, []string{"EUR/JPY", "EUR/USD", "USD/JPY"}, got)
}
