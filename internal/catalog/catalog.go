package catalog

import (
	"fmt"
	"time"
)

// Level is one static reference-level definition: how its price is
// derived, when it becomes derivable, how long a cached copy stays valid,
// and how much weight it carries before normalization.
type Level struct {
	Name           string
	BaseWeight     float64
	Conditional    bool
	AvailableAfter ClockTime // only meaningful when Conditional
	Rule           PriceRule
	Expiry         ExpiryPolicy
}

// DerivableAt reports whether the level may be computed from current data
// at the given instant (in the instrument timezone). Always-available
// levels are derivable whenever data allows; conditional ones only after
// their clock threshold.
func (l Level) DerivableAt(now time.Time) bool {
	if !l.Conditional {
		return true
	}
	return l.AvailableAfter.Reached(now)
}

// Catalog is the full reference-level set for one instrument.
type Catalog struct {
	Instrument string
	Levels     []Level
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.Levels) }

// TotalBaseWeight sums the base weights of all entries.
func (c *Catalog) TotalBaseWeight() float64 {
	sum := 0.0
	for _, l := range c.Levels {
		sum += l.BaseWeight
	}
	return sum
}

// ApplyWeights overrides base weights by level name. Unknown names are an
// error: a typo here silently skews the whole bias otherwise.
func (c *Catalog) ApplyWeights(overrides map[string]float64) error {
	for name, w := range overrides {
		if w <= 0 {
			return fmt.Errorf("weight override for %q must be positive, got %v", name, w)
		}
		found := false
		for i := range c.Levels {
			if c.Levels[i].Name == name {
				c.Levels[i].BaseWeight = w
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("weight override for unknown level %q", name)
		}
	}
	return nil
}

// ForInstrument returns a fresh catalog for the instrument code. Unknown
// instruments fall back to the US100 catalog.
func ForInstrument(code string) *Catalog {
	var levels []Level
	switch code {
	case "ES":
		levels = esLevels()
	case "UK100":
		levels = uk100Levels()
	default:
		code = normalizeCode(code)
		levels = us100Levels()
	}
	return &Catalog{Instrument: code, Levels: levels}
}

func normalizeCode(code string) string {
	switch code {
	case "US100", "ES", "UK100":
		return code
	}
	return "US100"
}

// Shared intraday lookback levels. Bars are assumed to be 1-minute.
func intradayLevels() []Level {
	return []Level{
		{
			Name: "daily_midnight", BaseWeight: 0.1339,
			Rule:   PriceRule{Kind: RuleBoundaryOpen, Boundary: BoundaryDay},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarDay},
		},
		{
			Name: "previous_hourly", BaseWeight: 0.0822,
			Rule:   PriceRule{Kind: RuleFixedLookback, LookbackBars: 60},
			Expiry: ExpiryPolicy{Kind: ExpiryDuration, MaxAge: time.Hour},
		},
		{
			Name: "2h_open", BaseWeight: 0.0520,
			Rule:   PriceRule{Kind: RuleFixedLookback, LookbackBars: 120},
			Expiry: ExpiryPolicy{Kind: ExpiryDuration, MaxAge: 2 * time.Hour},
		},
		{
			Name: "4h_open", BaseWeight: 0.0650,
			Rule:   PriceRule{Kind: RuleFixedLookback, LookbackBars: 240},
			Expiry: ExpiryPolicy{Kind: ExpiryDuration, MaxAge: 4 * time.Hour},
		},
	}
}

// Shared daily/weekly/monthly calendar levels.
func calendarLevels() []Level {
	return []Level{
		{
			Name: "prev_day_high", BaseWeight: 0.0260,
			Rule:   PriceRule{Kind: RuleCalendarExtreme, Boundary: BoundaryDay, Shift: 1, Side: SideHigh},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarDay, Shift: 1},
		},
		{
			Name: "prev_day_low", BaseWeight: 0.0260,
			Rule:   PriceRule{Kind: RuleCalendarExtreme, Boundary: BoundaryDay, Shift: 1, Side: SideLow},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarDay, Shift: 1},
		},
		{
			Name: "weekly_open", BaseWeight: 0.0650,
			Rule:   PriceRule{Kind: RuleBoundaryOpen, Boundary: BoundaryWeek},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarWeek},
		},
		{
			Name: "weekly_high", BaseWeight: 0.0260,
			Rule:   PriceRule{Kind: RuleCalendarExtreme, Boundary: BoundaryWeek, Side: SideHigh},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarWeek},
		},
		{
			Name: "weekly_low", BaseWeight: 0.0260,
			Rule:   PriceRule{Kind: RuleCalendarExtreme, Boundary: BoundaryWeek, Side: SideLow},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarWeek},
		},
		{
			Name: "prev_week_high", BaseWeight: 0.0520,
			Rule:   PriceRule{Kind: RuleCalendarExtreme, Boundary: BoundaryWeek, Shift: 1, Side: SideHigh},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarWeek, Shift: 1},
		},
		{
			Name: "prev_week_low", BaseWeight: 0.0520,
			Rule:   PriceRule{Kind: RuleCalendarExtreme, Boundary: BoundaryWeek, Shift: 1, Side: SideLow},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarWeek, Shift: 1},
		},
		{
			Name: "monthly_open", BaseWeight: 0.0391,
			Rule:   PriceRule{Kind: RuleBoundaryOpen, Boundary: BoundaryMonth},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarMonth},
		},
	}
}

// asianRange covers 20:00 previous day to midnight, instrument time.
func asianRange() []Level {
	return []Level{
		{
			Name: "asian_range_high", BaseWeight: 0.0279,
			Conditional: true, AvailableAfter: ClockTime{0, 0},
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideHigh,
				SessionStart: ClockTime{20, 0}, SessionEnd: ClockTime{0, 0}, StartPrevDay: true},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{1, 0}},
		},
		{
			Name: "asian_range_low", BaseWeight: 0.0279,
			Conditional: true, AvailableAfter: ClockTime{0, 0},
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideLow,
				SessionStart: ClockTime{20, 0}, SessionEnd: ClockTime{0, 0}, StartPrevDay: true},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{1, 0}},
		},
	}
}

// londonRange covers the 03:00-11:00 window as seen from a US timezone.
func londonRange() []Level {
	return []Level{
		{
			Name: "london_range_high", BaseWeight: 0.0520,
			Conditional: true, AvailableAfter: ClockTime{11, 0},
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideHigh,
				SessionStart: ClockTime{3, 0}, SessionEnd: ClockTime{11, 0}},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{11, 0}},
		},
		{
			Name: "london_range_low", BaseWeight: 0.0520,
			Conditional: true, AvailableAfter: ClockTime{11, 0},
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideLow,
				SessionStart: ClockTime{3, 0}, SessionEnd: ClockTime{11, 0}},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{11, 0}},
		},
	}
}

// us100Levels: 20 levels, 14 always-available + 6 conditional.
// Instrument timezone America/New_York.
func us100Levels() []Level {
	levels := intradayLevels()
	levels = append(levels,
		Level{
			Name: "ny_open", BaseWeight: 0.0779,
			Rule: PriceRule{Kind: RuleBoundaryOpen, Boundary: BoundaryDay,
				Open: ClockTime{9, 30}, OpenEnd: ClockTime{16, 0}},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarDay},
		},
		Level{
			Name: "ny_preopen", BaseWeight: 0.0391,
			Rule: PriceRule{Kind: RuleBoundaryOpen, Boundary: BoundaryDay,
				Open: ClockTime{4, 0}, OpenEnd: ClockTime{9, 30}},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarDay},
		},
	)
	levels = append(levels, calendarLevels()...)
	levels = append(levels, asianRange()...)
	levels = append(levels, londonRange()...)
	levels = append(levels,
		Level{
			Name: "ny_range_high", BaseWeight: 0.0391,
			Conditional: true, AvailableAfter: ClockTime{14, 0},
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideHigh,
				SessionStart: ClockTime{9, 30}, SessionEnd: ClockTime{14, 0}},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{14, 0}},
		},
		Level{
			Name: "ny_range_low", BaseWeight: 0.0391,
			Conditional: true, AvailableAfter: ClockTime{14, 0},
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideLow,
				SessionStart: ClockTime{9, 30}, SessionEnd: ClockTime{14, 0}},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{14, 0}},
		},
	)
	return levels
}

// esLevels mirrors US100 with Chicago session times. Instrument timezone
// America/Chicago; the cash open is 08:30 CT and the pre-open window runs
// from the prior day's 17:00 CT globex open.
func esLevels() []Level {
	levels := intradayLevels()
	levels = append(levels,
		Level{
			Name: "chicago_open", BaseWeight: 0.0779,
			Rule: PriceRule{Kind: RuleBoundaryOpen, Boundary: BoundaryDay,
				Open: ClockTime{8, 30}, OpenEnd: ClockTime{15, 0}},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarDay},
		},
		Level{
			Name: "chicago_preopen", BaseWeight: 0.0391,
			Rule: PriceRule{Kind: RuleBoundaryOpen, Boundary: BoundaryDay,
				Open: ClockTime{17, 0}, OpenEnd: ClockTime{8, 30}, StartPrevDay: true},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarDay},
		},
	)
	levels = append(levels, calendarLevels()...)
	levels = append(levels, asianRange()...)
	levels = append(levels, londonRange()...)
	levels = append(levels,
		Level{
			Name: "chicago_range_high", BaseWeight: 0.0391,
			Conditional: true, AvailableAfter: ClockTime{14, 0},
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideHigh,
				SessionStart: ClockTime{8, 30}, SessionEnd: ClockTime{14, 0}},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{14, 0}},
		},
		Level{
			Name: "chicago_range_low", BaseWeight: 0.0391,
			Conditional: true, AvailableAfter: ClockTime{14, 0},
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideLow,
				SessionStart: ClockTime{8, 30}, SessionEnd: ClockTime{14, 0}},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{14, 0}},
		},
	)
	return levels
}

// uk100Levels: 15 levels, all always-available. Instrument timezone
// Europe/London; the London range is complete by the 16:30 cash close.
func uk100Levels() []Level {
	levels := intradayLevels()
	levels = append(levels,
		Level{
			Name: "london_open", BaseWeight: 0.0779,
			Rule: PriceRule{Kind: RuleBoundaryOpen, Boundary: BoundaryDay,
				Open: ClockTime{8, 0}},
			Expiry: ExpiryPolicy{Kind: ExpiryCalendarDay},
		},
	)
	levels = append(levels, calendarLevels()...)
	levels = append(levels,
		Level{
			Name: "london_range_high", BaseWeight: 0.0520,
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideHigh,
				SessionStart: ClockTime{8, 0}, SessionEnd: ClockTime{16, 30}},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{16, 30}},
		},
		Level{
			Name: "london_range_low", BaseWeight: 0.0520,
			Rule: PriceRule{Kind: RuleSessionExtreme, Side: SideLow,
				SessionStart: ClockTime{8, 0}, SessionEnd: ClockTime{16, 30}},
			Expiry: ExpiryPolicy{Kind: ExpirySessionClock, Cutoff: ClockTime{16, 30}},
		},
	)
	return levels
}
