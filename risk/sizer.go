// Package risk converts account credit into position sizes normalized
// to a single base currency.
package risk

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ichikk/sessionbreakout/broker"
	"github.com/ichikk/sessionbreakout/market"
)

// lotScale converts base-currency notional into standard lots:
// 100 margin steps of 10,000 notional units each.
const lotScale = 100 * 10000

// Sizer computes the lot size for a new entry from the live account
// snapshot. Figures are normalized into BaseCurrency before sizing so
// accounts denominated in any currency size consistently.
type Sizer struct {
	BaseCurrency string
	MarginRatio  float64
	MaxLots      float64

	History broker.History
	Account broker.AccountProvider
	Log     *logrus.Logger
}

// Lots sizes a position on the given instrument. The account snapshot
// is read fresh on every call. A missing conversion tick aborts the
// trade with an error instead of sizing from garbage.
func (s Sizer) Lots(ctx context.Context, meta market.InstrumentMeta) (float64, error) {
	acct, err := s.Account.Account(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "account snapshot")
	}

	credit := acct.CreditLine
	equity := acct.Equity
	if acct.Currency != s.BaseCurrency {
		pair := market.Pair(acct.Currency, s.BaseCurrency)
		bid, err := s.conversionBid(ctx, pair)
		if err != nil {
			return 0, err
		}
		credit *= bid
		equity *= bid
	}

	latestBid := 1.0
	if meta.Primary != s.BaseCurrency {
		pair := market.Pair(meta.Primary, s.BaseCurrency)
		latestBid, err = s.conversionBid(ctx, pair)
		if err != nil {
			return 0, err
		}
	}

	limit := credit * s.MarginRatio
	lots := market.TruncateLots(limit / latestBid / lotScale)
	if lots > s.MaxLots {
		lots = s.MaxLots
	}

	s.logger().WithFields(logrus.Fields{
		"equity":     equity,
		"credit":     credit,
		"bid":        latestBid,
		"bid_ccy":    meta.Primary,
		"limit":      limit,
		"lots":       lots,
		"instrument": meta.Name,
	}).Info("sized position")

	return lots, nil
}

// conversionBid fetches the latest bid for a conversion pair. A
// missing tick or a non-positive bid aborts sizing; dividing by a
// zero rate would size from garbage.
func (s Sizer) conversionBid(ctx context.Context, pair string) (float64, error) {
	tick, err := s.History.LastTick(ctx, pair)
	if err != nil {
		return 0, errors.Wrapf(err, "no %s conversion tick", pair)
	}
	if tick.Bid <= 0 {
		return 0, errors.Errorf("unusable %s conversion bid %v", pair, tick.Bid)
	}
	return tick.Bid, nil
}

func (s Sizer) logger() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}
