package strategies

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPerformance_AccumulatesAcrossCloses(t *testing.T) {
	var p Performance

	p.Add(12.3, 50.0)
	p.Add(-4.1, -10.0)

	require.InDelta(t, 8.2, p.TotalPips, 1e-9)
	require.InDelta(t, 40.0, p.TotalProfitLoss, 1e-9)
}

func TestPerformance_ZeroValue(t *testing.T) {
	var p Performance
	require.Zero(t, p.TotalPips)
	require.Zero(t, p.TotalProfitLoss)
}
