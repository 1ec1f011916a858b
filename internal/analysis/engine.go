// Package analysis wires the pipeline together: validate the series,
// resolve every catalog level, weigh, aggregate, and score. One call in,
// one immutable result out.
package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/JGDev1215/MidOpenBeta/internal/bias"
	"github.com/JGDev1215/MidOpenBeta/internal/cache"
	"github.com/JGDev1215/MidOpenBeta/internal/catalog"
	"github.com/JGDev1215/MidOpenBeta/internal/model"
	"github.com/JGDev1215/MidOpenBeta/internal/resolver"
)

// ErrInvalidSeries means the bar sequence is structurally unusable:
// empty, unordered, or duplicated timestamps. Fatal to the whole run.
var ErrInvalidSeries = errors.New("invalid price series")

// Engine runs reference-level analysis for one instrument. It holds no
// mutable state of its own; the cache manager it carries is the only
// thing that persists between calls.
type Engine struct {
	Instrument string
	Location   *time.Location
	Catalog    *catalog.Catalog
	Cache      *cache.Manager
}

// NewEngine builds an engine from its parts.
func NewEngine(instrument string, loc *time.Location, cat *catalog.Catalog, pc *cache.Manager) *Engine {
	return &Engine{Instrument: instrument, Location: loc, Catalog: cat, Cache: pc}
}

// ValidateSeries checks the structural invariants of the bar sequence:
// non-empty, strictly increasing timestamps.
func ValidateSeries(bars []model.PriceBar) error {
	if len(bars) == 0 {
		return fmt.Errorf("%w: no bars", ErrInvalidSeries)
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return fmt.Errorf("%w: timestamps not strictly increasing at index %d (%s then %s)",
				ErrInvalidSeries, i, bars[i-1].Time.Format(time.RFC3339), bars[i].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Analyze runs one analysis at the given instant. A zero `at` uses the
// last bar's timestamp. The returned result is complete and never
// mutated afterwards.
func (e *Engine) Analyze(series *model.PriceSeries, at time.Time) (*model.AnalysisResult, error) {
	if err := ValidateSeries(series.Bars); err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = series.LastTime()
	}
	at = at.In(e.Location)
	currentPrice := series.CurrentPrice()

	levels := resolver.Resolve(e.Catalog, series.Bars, at, e.Location, e.Cache)

	if err := bias.Weigh(levels, currentPrice); err != nil {
		return nil, fmt.Errorf("weighting %s levels: %w", e.Instrument, err)
	}
	totals := bias.Aggregate(levels)

	available := 0
	for i := range levels {
		if levels[i].Available() {
			available++
		}
	}

	return &model.AnalysisResult{
		Instrument:     e.Instrument,
		Timezone:       e.Location.String(),
		Timestamp:      at,
		CurrentPrice:   currentPrice,
		DataPoints:     len(series.Bars),
		Bias:           totals.Bias,
		Confidence:     bias.Confidence(totals.Spread, totals.Utilization),
		BullishWeight:  totals.Bullish,
		BearishWeight:  totals.Bearish,
		Spread:         totals.Spread,
		Utilization:    totals.Utilization,
		AvailableCount: available,
		TotalCount:     e.Catalog.Len(),
		Levels:         levels,
	}, nil
}
