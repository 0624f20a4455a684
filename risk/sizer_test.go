package risk

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ichikk/sessionbreakout/broker"
	"github.com/ichikk/sessionbreakout/market"
)

type stubAccount struct {
	snap broker.AccountSnapshot
}

func (s stubAccount) Account(ctx context.Context) (broker.AccountSnapshot, error) {
	return s.snap, nil
}

type stubHistory struct {
	ticks map[string]market.Tick
}

func (s stubHistory) BucketStart(p market.Period, t time.Time) time.Time {
	return t.UTC().Truncate(p.Duration())
}

func (s stubHistory) Candles(ctx context.Context, instrument string, period market.Period, side broker.Side, from, to time.Time) ([]market.Candle, error) {
	return nil, nil
}

func (s stubHistory) LastTick(ctx context.Context, instrument string) (market.Tick, error) {
	t, ok := s.ticks[instrument]
	if !ok {
		return market.Tick{}, errors.Errorf("no tick for %s", instrument)
	}
	return t, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func jpySizer(acct broker.AccountSnapshot, ticks map[string]market.Tick) Sizer {
	return Sizer{
		BaseCurrency: "JPY",
		MarginRatio:  0.3,
		MaxLots:      6,
		History:      stubHistory{ticks: ticks},
		Account:      stubAccount{snap: acct},
		Log:          quietLogger(),
	}
}

func eurusd() market.InstrumentMeta {
	m, _ := market.Lookup("EUR/USD")
	return m
}

func TestLots_BaseCurrencyAccount(t *testing.T) {
	s := jpySizer(
		broker.AccountSnapshot{Equity: 150_000_000, CreditLine: 150_000_000, Currency: "JPY"},
		map[string]market.Tick{"EUR/JPY": {Instrument: "EUR/JPY", Bid: 162.0}},
	)

	lots, err := s.Lots(context.Background(), eurusd())
	require.NoError(t, err)
	// 150M * 0.3 / 162 / 1M = 0.27777..., truncated to 4 dp.
	require.InDelta(t, 0.2777, lots, 1e-9)
}

func TestLots_ForeignAccountConvertedByBidRate(t *testing.T) {
	s := jpySizer(
		broker.AccountSnapshot{Equity: 1_000_000, CreditLine: 1_000_000, Currency: "USD"},
		map[string]market.Tick{
			"USD/JPY": {Instrument: "USD/JPY", Bid: 150.0},
			"EUR/JPY": {Instrument: "EUR/JPY", Bid: 162.0},
		},
	)

	lots, err := s.Lots(context.Background(), eurusd())
	require.NoError(t, err)
	// 1M USD * 150 = 150M JPY credit, then as in the base-currency case.
	require.InDelta(t, 0.2777, lots, 1e-9)
}

func TestLots_ClampedToMaxLots(t *testing.T) {
	s := jpySizer(
		broker.AccountSnapshot{Equity: 9e9, CreditLine: 9e9, Currency: "JPY"},
		map[string]market.Tick{"EUR/JPY": {Instrument: "EUR/JPY", Bid: 162.0}},
	)

	lots, err := s.Lots(context.Background(), eurusd())
	require.NoError(t, err)
	require.Equal(t, 6.0, lots)
}

func TestLots_MonotonicInCreditAndBid(t *testing.T) {
	prev := 0.0
	for _, credit := range []float64{10e6, 50e6, 100e6, 500e6} {
		s := jpySizer(
			broker.AccountSnapshot{Equity: credit, CreditLine: credit, Currency: "JPY"},
			map[string]market.Tick{"EUR/JPY": {Instrument: "EUR/JPY", Bid: 162.0}},
		)
		lots, err := s.Lots(context.Background(), eurusd())
		require.NoError(t, err)
		require.GreaterOrEqual(t, lots, prev, "credit %v", credit)
		require.LessOrEqual(t, lots, 6.0)
		prev = lots
	}

	prevBid := 100.0
	for _, bid := range []float64{120.0, 150.0, 180.0} {
		lower := jpySizer(
			broker.AccountSnapshot{Equity: 150e6, CreditLine: 150e6, Currency: "JPY"},
			map[string]market.Tick{"EUR/JPY": {Instrument: "EUR/JPY", Bid: bid}},
		)
		higher := jpySizer(
			broker.AccountSnapshot{Equity: 150e6, CreditLine: 150e6, Currency: "JPY"},
			map[string]market.Tick{"EUR/JPY": {Instrument: "EUR/JPY", Bid: prevBid}},
		)
		l1, err := lower.Lots(context.Background(), eurusd())
		require.NoError(t, err)
		l2, err := higher.Lots(context.Background(), eurusd())
		require.NoError(t, err)
		require.LessOrEqual(t, l1, l2, "bid %v vs %v", bid, prevBid)
		prevBid = bid
	}
}

func TestLots_MissingConversionTickAborts(t *testing.T) {
	s := jpySizer(
		broker.AccountSnapshot{Equity: 150e6, CreditLine: 150e6, Currency: "JPY"},
		map[string]market.Tick{}, // no EUR/JPY rate
	)

	lots, err := s.Lots(context.Background(), eurusd())
	require.Error(t, err)
	require.Zero(t, lots)
}

func TestLots_ZeroConversionBidAborts(t *testing.T) {
	s := jpySizer(
		broker.AccountSnapshot{Equity: 150e6, CreditLine: 150e6, Currency: "JPY"},
		map[string]market.Tick{"EUR/JPY": {Instrument: "EUR/JPY", Bid: 0}},
	)

	lots, err := s.Lots(context.Background(), eurusd())
	require.Error(t, err)
	require.Zero(t, lots)
	require.Contains(t, err.Error(), "EUR/JPY")
}

func TestLots_ZeroAccountConversionBidAborts(t *testing.T) {
	s := jpySizer(
		broker.AccountSnapshot{Equity: 1e6, CreditLine: 1e6, Currency: "USD"},
		map[string]market.Tick{
			"USD/JPY": {Instrument: "USD/JPY", Bid: -1},
			"EUR/JPY": {Instrument: "EUR/JPY", Bid: 162.0},
		},
	)

	lots, err := s.Lots(context.Background(), eurusd())
	require.Error(t, err)
	require.Zero(t, lots)
	require.Contains(t, err.Error(), "USD/JPY")
}

func TestLots_MissingAccountConversionAborts(t *testing.T) {
	s := jpySizer(
		broker.AccountSnapshot{Equity: 1e6, CreditLine: 1e6, Currency: "USD"},
		map[string]market.Tick{"EUR/JPY": {Instrument: "EUR/JPY", Bid: 162.0}}, // no USD/JPY
	)

	lots, err := s.Lots(context.Background(), eurusd())
	require.Error(t, err)
	require.Zero(t, lots)
}
