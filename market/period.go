package market

import (
	"fmt"
	"time"
)

// Period is the timeframe of a bar series.
type Period time.Duration

const (
	M1  = Period(time.Minute)
	M5  = Period(5 * time.Minute)
	M15 = Period(15 * time.Minute)
	M30 = Period(30 * time.Minute)
	H1  = Period(time.Hour)
	H4  = Period(4 * time.Hour)
	D1  = Period(24 * time.Hour)
)

func (p Period) Duration() time.Duration {
	return time.Duration(p)
}

func (p Period) String() string {
	d := time.Duration(p)
	switch {
	case d < time.Hour && d%time.Minute == 0:
		return fmt.Sprintf("M%d", d/time.Minute)
	case d < 24*time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("H%d", d/time.Hour)
	case d%(24*time.Hour) == 0:
		return fmt.Sprintf("D%d", d/(24*time.Hour))
	}
	return d.String()
}

// ParsePeriod maps timeframe strings ("M15", "H1", ...) to a Period.
func ParsePeriod(tf string) (Period, error) {
	switch tf {
	case "M1":
		return M1, nil
	case "M5":
		return M5, nil
	case "M15":
		return M15, nil
	case "M30":
		return M30, nil
	case "H1":
		return H1, nil
	case "H4":
		return H4, nil
	case "D1":
		return D1, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe string: %s", tf)
	}
}
