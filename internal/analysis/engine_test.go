package analysis

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/JGDev1215/MidOpenBeta/internal/cache"
	"github.com/JGDev1215/MidOpenBeta/internal/catalog"
	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := cache.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	cat := catalog.ForInstrument("US100")
	return NewEngine("US100", time.UTC, cat, cache.NewManager("US100", time.UTC, store))
}

// risingBars builds n one-minute bars with strictly rising prices.
func risingBars(start time.Time, n int, base float64) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := 0; i < n; i++ {
		p := base + float64(i)
		bars[i] = model.PriceBar{
			Time: start.Add(time.Duration(i) * time.Minute),
			Open: p, High: p + 0.5, Low: p - 0.5, Close: p + 0.25,
		}
	}
	return bars
}

// flatBars builds n one-minute bars all priced exactly at p.
func flatBars(start time.Time, n int, p float64) []model.PriceBar {
	bars := make([]model.PriceBar, n)
	for i := 0; i < n; i++ {
		bars[i] = model.PriceBar{
			Time: start.Add(time.Duration(i) * time.Minute),
			Open: p, High: p, Low: p, Close: p,
		}
	}
	return bars
}

func series(bars []model.PriceBar) *model.PriceSeries {
	return &model.PriceSeries{Instrument: "US100", Bars: bars, LoadedAt: time.Now()}
}

func levelByName(t *testing.T, res *model.AnalysisResult, name string) model.ResolvedLevel {
	t.Helper()
	for _, l := range res.Levels {
		if l.Name == name {
			return l
		}
	}
	t.Fatalf("level %q not in result", name)
	return model.ResolvedLevel{}
}

func TestAnalyze_PartialHistory(t *testing.T) {
	e := newTestEngine(t)
	// 90 minutes of history: too short for the 2h and 4h lookbacks, long
	// enough for the rest of the intraday set.
	start := time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC)
	res, err := e.Analyze(series(risingBars(start, 90, 24400)), time.Time{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.AvailableCount == 0 || res.AvailableCount >= res.TotalCount {
		t.Fatalf("AvailableCount = %d of %d, want partial coverage", res.AvailableCount, res.TotalCount)
	}
	if len(res.Levels) != res.TotalCount {
		t.Errorf("result carries %d levels, want %d", len(res.Levels), res.TotalCount)
	}

	fourH := levelByName(t, res, "4h_open")
	if fourH.Source != model.SourceUnavailable {
		t.Errorf("4h_open source = %s, want UNAVAILABLE", fourH.Source)
	}
	if fourH.SourceDetail == "" {
		t.Error("unavailable level carries no reason")
	}
	if fourH.NormalizedWeight != 0 || fourH.EffectiveWeight != 0 {
		t.Error("unavailable level carries weight")
	}

	hourly := levelByName(t, res, "previous_hourly")
	if hourly.Source != model.SourceCurrentData {
		t.Errorf("previous_hourly source = %s, want CURRENT_DATA", hourly.Source)
	}

	// Normalization holds over whatever resolved; depreciation can only
	// shrink it.
	sum := 0.0
	for _, l := range res.Levels {
		if l.Available() {
			sum += l.NormalizedWeight
		}
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("normalized weights sum to %.8f, want 1.0", sum)
	}
	if res.Utilization > sum+1e-9 {
		t.Errorf("utilization %.4f exceeds normalized total %.4f", res.Utilization, sum)
	}
}

func TestAnalyze_CacheFallback(t *testing.T) {
	e := newTestEngine(t)
	start := time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC)
	at := start.Add(89 * time.Minute)

	// A prior run left a 4h open behind, 90 minutes old: well inside its
	// 4-hour validity.
	if err := e.Cache.Update(map[string]float64{"4h_open": 24380.0}, at.Add(-90*time.Minute)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	res, err := e.Analyze(series(risingBars(start, 90, 24400)), at)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	fourH := levelByName(t, res, "4h_open")
	if fourH.Source != model.SourceCache {
		t.Fatalf("4h_open source = %s (%s), want CACHE", fourH.Source, fourH.SourceDetail)
	}
	if fourH.Price != 24380.0 {
		t.Errorf("4h_open price = %v, want 24380.0", fourH.Price)
	}
	if !fourH.Available() {
		t.Error("cache-sourced level reported unavailable")
	}
	if fourH.NormalizedWeight <= 0 {
		t.Error("cache-sourced level carries no weight")
	}
}

func TestAnalyze_AllLevelsAtPrice(t *testing.T) {
	e := newTestEngine(t)
	// Every bar at exactly the same price: whatever resolves sits exactly
	// at the current price, so nothing pulls either way.
	start := time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC)
	res, err := e.Analyze(series(flatBars(start, 90, 24500)), time.Time{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Bias != model.BiasNeutral {
		t.Errorf("Bias = %s, want NEUTRAL", res.Bias)
	}
	if res.BullishWeight != 0 || res.BearishWeight != 0 {
		t.Errorf("weights = %.4f/%.4f, want 0/0", res.BullishWeight, res.BearishWeight)
	}
	if res.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", res.Confidence)
	}
	if res.Utilization <= 0 {
		t.Error("exact-at levels should still count toward utilization")
	}
	for _, l := range res.Levels {
		if l.Available() && l.Position != model.PositionEqual {
			t.Errorf("%s position = %s, want EQUAL", l.Name, l.Position)
		}
	}
}

func TestAnalyze_NothingResolvable(t *testing.T) {
	e := newTestEngine(t)
	// A stale scrap of history analyzed six weeks later: every window
	// misses, every lookback is short, and the cache is empty.
	bars := risingBars(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC), 10, 24000)
	at := time.Date(2026, 2, 18, 15, 0, 0, 0, time.UTC)

	res, err := e.Analyze(series(bars), at)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.AvailableCount != 0 {
		t.Fatalf("AvailableCount = %d, want 0", res.AvailableCount)
	}
	if res.Bias != model.BiasNeutral || res.Confidence != 0 || res.Utilization != 0 {
		t.Errorf("empty resolution: bias=%s confidence=%v utilization=%v, want NEUTRAL/0/0",
			res.Bias, res.Confidence, res.Utilization)
	}
	for _, l := range res.Levels {
		if l.Source != model.SourceUnavailable {
			t.Errorf("%s source = %s, want UNAVAILABLE", l.Name, l.Source)
		}
		if l.SourceDetail == "" {
			t.Errorf("%s has no unavailability reason", l.Name)
		}
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	s := series(risingBars(time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC), 90, 24400))
	at := s.LastTime()

	first, err := e.Analyze(s, at)
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := e.Analyze(s, at)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same series and instant produced different results")
	}
}

func TestAnalyze_WritesDerivedLevelsBack(t *testing.T) {
	e := newTestEngine(t)
	s := series(risingBars(time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC), 90, 24400))

	res, err := e.Analyze(s, time.Time{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	entries, err := e.Cache.Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	for _, l := range res.Levels {
		if l.Source != model.SourceCurrentData {
			continue
		}
		entry, ok := entries[l.Name]
		if !ok {
			t.Errorf("derived level %s missing from cache", l.Name)
			continue
		}
		if entry.Price != l.Price {
			t.Errorf("cached %s = %v, want %v", l.Name, entry.Price, l.Price)
		}
	}
}

func TestAnalyze_DefaultsToLastBarTime(t *testing.T) {
	e := newTestEngine(t)
	s := series(risingBars(time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC), 90, 24400))

	res, err := e.Analyze(s, time.Time{})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.Timestamp.Equal(s.LastTime()) {
		t.Errorf("Timestamp = %s, want %s", res.Timestamp, s.LastTime())
	}
	if res.CurrentPrice != s.CurrentPrice() {
		t.Errorf("CurrentPrice = %v, want %v", res.CurrentPrice, s.CurrentPrice())
	}
}

func TestValidateSeries(t *testing.T) {
	base := time.Date(2026, 2, 18, 13, 30, 0, 0, time.UTC)
	ordered := risingBars(base, 3, 100)

	if err := ValidateSeries(ordered); err != nil {
		t.Errorf("valid series rejected: %v", err)
	}
	if err := ValidateSeries(nil); !errors.Is(err, ErrInvalidSeries) {
		t.Errorf("empty series: err = %v, want ErrInvalidSeries", err)
	}

	unordered := risingBars(base, 3, 100)
	unordered[2].Time = unordered[0].Time
	if err := ValidateSeries(unordered); !errors.Is(err, ErrInvalidSeries) {
		t.Errorf("unordered series: err = %v, want ErrInvalidSeries", err)
	}

	duplicated := risingBars(base, 3, 100)
	duplicated[1].Time = duplicated[0].Time
	if err := ValidateSeries(duplicated); !errors.Is(err, ErrInvalidSeries) {
		t.Errorf("duplicate timestamps: err = %v, want ErrInvalidSeries", err)
	}
}

func TestAnalyze_InvalidSeriesIsFatal(t *testing.T) {
	e := newTestEngine(t)
	s := series(nil)
	if _, err := e.Analyze(s, time.Time{}); !errors.Is(err, ErrInvalidSeries) {
		t.Fatalf("Analyze on empty series: err = %v, want ErrInvalidSeries", err)
	}
}
