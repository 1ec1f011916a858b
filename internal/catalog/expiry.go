package catalog

import (
	"fmt"
	"time"
)

// ExpiryKind enumerates the closed set of cache expiration policies.
type ExpiryKind int

const (
	// ExpiryDuration keeps an entry valid while now-recordedAt <= MaxAge.
	ExpiryDuration ExpiryKind = iota
	// ExpiryCalendarDay keeps an entry valid while recordedAt falls on
	// the expected calendar day relative to now (Shift days back).
	ExpiryCalendarDay
	// ExpiryCalendarWeek keys validity to the Monday-aligned week,
	// shifted Shift weeks back.
	ExpiryCalendarWeek
	// ExpiryCalendarMonth keeps an entry valid within the same
	// (year, month).
	ExpiryCalendarMonth
	// ExpirySessionClock keeps an entry valid only while now's clock is
	// still before the session cutoff on recordedAt's calendar day.
	ExpirySessionClock
	// ExpiryDefault is the fallback window for unmodeled level kinds.
	ExpiryDefault
)

// defaultCacheDays is the fallback validity window.
const defaultCacheDays = 7

// ExpiryPolicy is a tagged variant describing when a cached level price
// stops being a valid stand-in. Only the fields relevant to Kind are set.
type ExpiryPolicy struct {
	Kind   ExpiryKind
	MaxAge time.Duration // ExpiryDuration
	Shift  int           // calendar kinds: 0 = current period, 1 = previous
	Cutoff ClockTime     // ExpirySessionClock
}

// Check reports whether a price recorded at recordedAt is still valid at
// now, with a human-readable reason either way. Calendar alignment uses
// loc, the instrument timezone.
func (p ExpiryPolicy) Check(name string, recordedAt, now time.Time, loc *time.Location) (bool, string) {
	switch p.Kind {
	case ExpiryDuration:
		age := now.Sub(recordedAt)
		if age <= p.MaxAge {
			return true, fmt.Sprintf("%s still valid (within %s)", name, p.MaxAge)
		}
		return false, fmt.Sprintf("%s expired (more than %s old)", name, p.MaxAge)

	case ExpiryCalendarDay:
		recorded := dayStart(recordedAt, loc)
		expected := dayStart(now, loc).AddDate(0, 0, -p.Shift)
		if recorded.Equal(expected) {
			if p.Shift == 0 {
				return true, fmt.Sprintf("%s still valid (same day as record: %s)", name, recorded.Format("2006-01-02"))
			}
			return true, fmt.Sprintf("%s still valid (recorded %s)", name, recorded.Format("2006-01-02"))
		}
		return false, fmt.Sprintf("%s expired (recorded %s, expected day %s)",
			name, recorded.Format("2006-01-02"), expected.Format("2006-01-02"))

	case ExpiryCalendarWeek:
		recorded := weekStart(recordedAt, loc)
		expected := weekStart(now, loc).AddDate(0, 0, -7*p.Shift)
		if recorded.Equal(expected) {
			if p.Shift == 0 {
				return true, fmt.Sprintf("%s still valid (same week)", name)
			}
			return true, fmt.Sprintf("%s still valid (recorded in previous week)", name)
		}
		return false, fmt.Sprintf("%s expired (recorded week of %s, expected week of %s)",
			name, recorded.Format("2006-01-02"), expected.Format("2006-01-02"))

	case ExpiryCalendarMonth:
		ry, rm, _ := recordedAt.In(loc).Date()
		ny, nm, _ := now.In(loc).Date()
		if ry == ny && rm == nm {
			return true, fmt.Sprintf("%s still valid (same month)", name)
		}
		return false, fmt.Sprintf("%s expired (recorded %d-%02d, now %d-%02d)", name, ry, rm, ny, nm)

	case ExpirySessionClock:
		sameDay := dayStart(recordedAt, loc).Equal(dayStart(now, loc))
		if sameDay && !p.Cutoff.Reached(now.In(loc)) {
			return true, fmt.Sprintf("%s still valid (before %s)", name, p.Cutoff)
		}
		if !sameDay {
			return false, fmt.Sprintf("%s expired (recorded on a different day)", name)
		}
		return false, fmt.Sprintf("%s expired (past %s session cutoff)", name, p.Cutoff)
	}

	// ExpiryDefault and anything unmodeled.
	if now.Sub(recordedAt) <= defaultCacheDays*24*time.Hour {
		return true, fmt.Sprintf("%s cached within last %d days", name, defaultCacheDays)
	}
	return false, fmt.Sprintf("%s cached data older than %d days", name, defaultCacheDays)
}
