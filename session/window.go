// Package session derives the historical reference window for the
// trading session a bar belongs to. All arithmetic is explicit UTC
// date math; no locale-sensitive calendars.
package session

import (
	"time"

	"github.com/ichikk/sessionbreakout/market"
)

type Kind int

const (
	None Kind = iota
	LondonUS
	Asian
)

func (k Kind) String() string {
	switch k {
	case LondonUS:
		return "london_us"
	case Asian:
		return "asian"
	}
	return "none"
}

// Window is the [From, To) range whose high/low anchors the breakout
// levels for the active session.
type Window struct {
	From time.Time
	To   time.Time
	Kind Kind
}

// BucketStarter aligns a raw timestamp to the start of its enclosing
// period bucket. The history provider implements this.
type BucketStarter interface {
	BucketStart(period market.Period, t time.Time) time.Time
}

// Calculator computes session windows, with boundaries snapped to the
// configured trading period.
type Calculator struct {
	Period  market.Period
	Buckets BucketStarter
}

// Active reports whether the market is trading at t. Saturday is
// closed, Sunday opens at 23:00 UTC.
func Active(t time.Time) bool {
	t = t.UTC()
	switch t.Weekday() {
	case time.Saturday:
		return false
	case time.Sunday:
		return t.Hour() >= 23
	}
	return true
}

// KindAt returns the session a bar hour falls into. London/US covers
// 09:00-22:59 UTC, Asian wraps midnight covering 23:00-08:59.
func KindAt(t time.Time) Kind {
	if !Active(t) {
		return None
	}
	hour := t.UTC().Hour()
	if hour >= 9 && hour <= 22 {
		return LondonUS
	}
	return Asian
}

// WindowAt returns the reference window for the session active at
// barTime, or ok=false when the market is closed.
//
// London/US bars reference the same day's 00:00-08:00 range. Asian bars
// reference the prior trading day's 13:00-22:00 range; Sunday and
// Monday bars shift further back so the window lands on Friday instead
// of inside the weekend gap.
func (c Calculator) WindowAt(barTime time.Time) (Window, bool) {
	t := barTime.UTC()
	kind := KindAt(t)
	switch kind {
	case None:
		return Window{}, false
	case LondonUS:
		return Window{
			From: c.Buckets.BucketStart(c.Period, withHour(t, 0)),
			To:   c.Buckets.BucketStart(c.Period, withHour(t, 8)),
			Kind: LondonUS,
		}, true
	}

	var back, fwd int
	switch t.Weekday() {
	case time.Sunday:
		back, fwd = -2, 1
	case time.Monday:
		back, fwd = -3, 2
	default:
		back, fwd = -1, 0
	}
	d := t.AddDate(0, 0, back)
	from := c.Buckets.BucketStart(c.Period, withHour(d, 13))
	d = d.AddDate(0, 0, fwd)
	to := c.Buckets.BucketStart(c.Period, withHour(d, 22))
	return Window{From: from, To: to, Kind: Asian}, true
}

// withHour replaces the hour of t, keeping the rest of the timestamp.
// Sub-hour components are discarded later by the period bucket floor.
func withHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
