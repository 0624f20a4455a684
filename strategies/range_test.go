package strategies

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ichikk/sessionbreakout/market"
)

func TestAggregateRange_HighLowEnvelope(t *testing.T) {
	candles := []market.Candle{
		{Open: 1.1010, High: 1.1025, Low: 1.1000, Close: 1.1020},
		{Open: 1.1020, High: 1.1050, Low: 1.1015, Close: 1.1045},
		{Open: 1.1045, High: 1.1048, Low: 1.1005, Close: 1.1010},
	}

	rng, ok := AggregateRange(candles)
	require.True(t, ok)
	require.Equal(t, 1.1050, rng.High)
	require.Equal(t, 1.1000, rng.Low)
	require.GreaterOrEqual(t, rng.High, rng.Low)
}

func TestAggregateRange_SingleCandle(t *testing.T) {
	rng, ok := AggregateRange([]market.Candle{
		{Open: 1.10, High: 1.11, Low: 1.09, Close: 1.10},
	})
	require.True(t, ok)
	require.Equal(t, 1.11, rng.High)
	require.Equal(t, 1.09, rng.Low)
}

func TestAggregateRange_EmptyWindowNeverSignals(t *testing.T) {
	_, ok := AggregateRange(nil)
	require.False(t, ok)

	_, ok = AggregateRange([]market.Candle{})
	require.False(t, ok)
}
