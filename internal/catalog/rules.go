package catalog

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

// ErrNotDerivable signals that the current series does not cover enough
// history to compute a level price. Not fatal: the resolver falls back to
// the cache.
var ErrNotDerivable = errors.New("not derivable from current series")

// ClockTime is a wall-clock time of day in the instrument timezone.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// IsZero reports whether the clock time is the unset zero value (00:00).
func (c ClockTime) IsZero() bool {
	return c.Hour == 0 && c.Minute == 0
}

// Reached reports whether t's wall clock is at or past c.
func (c ClockTime) Reached(t time.Time) bool {
	h, m, _ := t.Clock()
	if h != c.Hour {
		return h > c.Hour
	}
	return m >= c.Minute
}

// On returns the instant with c's clock on the same calendar day as day.
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

// RuleKind enumerates the closed set of price-rule variants.
type RuleKind int

const (
	// RuleFixedLookback takes the open of the bar N bars back from the
	// most recent bar. Catalogs assume 1-minute bars.
	RuleFixedLookback RuleKind = iota
	// RuleBoundaryOpen takes the open of the first bar at or after a
	// calendar/clock boundary (midnight, Monday, month start, or a
	// session open time), optionally bounded by a window end.
	RuleBoundaryOpen
	// RuleCalendarExtreme takes the max high or min low over a calendar
	// day or week, shifted zero or more periods back.
	RuleCalendarExtreme
	// RuleSessionExtreme takes the max high or min low over a
	// clock-bounded intraday session window.
	RuleSessionExtreme
)

// Boundary selects the calendar period for boundary and extreme rules.
type Boundary int

const (
	BoundaryDay Boundary = iota
	BoundaryWeek
	BoundaryMonth
)

// Side selects the extreme direction for range rules.
type Side int

const (
	SideHigh Side = iota
	SideLow
)

// PriceRule is a tagged variant describing how a level price is derived
// from the bar series. Only the fields relevant to Kind are set.
type PriceRule struct {
	Kind RuleKind

	// RuleFixedLookback
	LookbackBars int

	// RuleBoundaryOpen / RuleCalendarExtreme
	Boundary Boundary
	Shift    int // periods back: 0 = current, 1 = previous

	// RuleBoundaryOpen: session open clock and optional window end.
	Open    ClockTime
	OpenEnd ClockTime

	// RuleCalendarExtreme / RuleSessionExtreme
	Side Side

	// RuleSessionExtreme
	SessionStart ClockTime
	SessionEnd   ClockTime

	// Session or open window starts on the prior calendar day
	// (Asian range, Chicago pre-open).
	StartPrevDay bool
}

// Evaluate computes the rule against the series at the given instant.
// All calendar math happens in loc, the instrument timezone.
func (r PriceRule) Evaluate(bars []model.PriceBar, now time.Time, loc *time.Location) (float64, error) {
	switch r.Kind {
	case RuleFixedLookback:
		if len(bars) < r.LookbackBars {
			return 0, fmt.Errorf("%w: need %d bars, have %d", ErrNotDerivable, r.LookbackBars, len(bars))
		}
		return bars[len(bars)-r.LookbackBars].Open, nil

	case RuleBoundaryOpen:
		from, to := r.openWindow(now, loc)
		price, ok := firstOpenIn(bars, from, to)
		if !ok {
			return 0, fmt.Errorf("%w: no bars at or after %s", ErrNotDerivable, from.Format("2006-01-02 15:04"))
		}
		return price, nil

	case RuleCalendarExtreme:
		from, to := r.calendarWindow(now, loc)
		price, ok := extremeIn(bars, from, to, r.Side)
		if !ok {
			return 0, fmt.Errorf("%w: no bars between %s and %s", ErrNotDerivable,
				from.Format("2006-01-02 15:04"), to.Format("2006-01-02 15:04"))
		}
		return price, nil

	case RuleSessionExtreme:
		day := dayStart(now, loc)
		start := r.SessionStart.On(day, loc)
		if r.StartPrevDay {
			start = r.SessionStart.On(day.AddDate(0, 0, -1), loc)
		}
		end := r.SessionEnd.On(day, loc)
		price, ok := extremeIn(bars, start, end, r.Side)
		if !ok {
			return 0, fmt.Errorf("%w: no bars in session %s-%s", ErrNotDerivable, r.SessionStart, r.SessionEnd)
		}
		return price, nil
	}
	return 0, fmt.Errorf("%w: unknown rule kind %d", ErrNotDerivable, r.Kind)
}

// openWindow returns the half-open interval a boundary-open rule scans.
func (r PriceRule) openWindow(now time.Time, loc *time.Location) (from, to time.Time) {
	switch r.Boundary {
	case BoundaryWeek:
		return weekStart(now, loc), now.Add(time.Minute)
	case BoundaryMonth:
		return monthStart(now, loc), now.Add(time.Minute)
	}
	day := dayStart(now, loc)
	from = r.Open.On(day, loc)
	if r.StartPrevDay {
		from = r.Open.On(day.AddDate(0, 0, -1), loc)
	}
	to = now.Add(time.Minute)
	if !r.OpenEnd.IsZero() {
		to = r.OpenEnd.On(day, loc)
	}
	return from, to
}

// calendarWindow returns the interval a calendar-extreme rule scans.
func (r PriceRule) calendarWindow(now time.Time, loc *time.Location) (from, to time.Time) {
	switch r.Boundary {
	case BoundaryWeek:
		ws := weekStart(now, loc)
		if r.Shift > 0 {
			return ws.AddDate(0, 0, -7*r.Shift), ws.AddDate(0, 0, -7*(r.Shift-1))
		}
		return ws, now.Add(time.Minute)
	case BoundaryMonth:
		ms := monthStart(now, loc)
		if r.Shift > 0 {
			return ms.AddDate(0, -r.Shift, 0), ms.AddDate(0, -(r.Shift-1), 0)
		}
		return ms, now.Add(time.Minute)
	}
	ds := dayStart(now, loc)
	if r.Shift > 0 {
		return ds.AddDate(0, 0, -r.Shift), ds.AddDate(0, 0, -(r.Shift-1))
	}
	return ds, now.Add(time.Minute)
}

// dayStart returns midnight of t's calendar day in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// weekStart returns Monday 00:00 of t's week in loc.
func weekStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	offset := (int(lt.Weekday()) + 6) % 7 // Monday = 0
	return dayStart(lt, loc).AddDate(0, 0, -offset)
}

// monthStart returns the first of t's month at 00:00 in loc.
func monthStart(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

// firstOpenIn returns the open of the first bar in [from, to).
func firstOpenIn(bars []model.PriceBar, from, to time.Time) (float64, bool) {
	for _, b := range bars {
		if !b.Time.Before(from) && b.Time.Before(to) {
			return b.Open, true
		}
	}
	return 0, false
}

// extremeIn returns the max high or min low over bars in [from, to).
func extremeIn(bars []model.PriceBar, from, to time.Time, side Side) (float64, bool) {
	found := false
	extreme := math.Inf(-1)
	if side == SideLow {
		extreme = math.Inf(1)
	}
	for _, b := range bars {
		if b.Time.Before(from) || !b.Time.Before(to) {
			continue
		}
		found = true
		if side == SideHigh {
			if b.High > extreme {
				extreme = b.High
			}
		} else {
			if b.Low < extreme {
				extreme = b.Low
			}
		}
	}
	if !found {
		return 0, false
	}
	return extreme, true
}
