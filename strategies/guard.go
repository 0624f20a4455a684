package strategies

import (
	"strings"

	"github.com/ichikk/sessionbreakout/broker"
)

// HasExposure reports whether an open order already carries this
// strategy's label prefix for the given instrument. At most one such
// order may exist per instrument, so a match vetoes any new signal.
func HasExposure(orders []broker.Order, instrument, labelPrefix string) bool {
	for _, o := range orders {
		if strings.HasPrefix(o.Label, labelPrefix) && o.Instrument == instrument {
			return true
		}
	}
	return false
}
