// Package quality reports on the inputs behind an analysis: how many
// levels resolved, where their prices came from, and how stale the cache
// is. It reads the same intermediate data as the bias pipeline but never
// feeds back into it.
package quality

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/JGDev1215/MidOpenBeta/internal/cache"
	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

// Config tunes the report thresholds.
type Config struct {
	CoverageWarnPercent float64
	CriticalLevels      []string
	StaleAfterDays      int
}

// DefaultConfig matches the thresholds the analysis has always shipped
// with: warn under 70% coverage, treat the intraday anchors as critical,
// flag cache entries unused for a week.
func DefaultConfig() Config {
	return Config{
		CoverageWarnPercent: 70,
		CriticalLevels:      []string{"daily_midnight", "ny_open", "4h_open", "2h_open"},
		StaleAfterDays:      7,
	}
}

// Reporter builds quality reports for analysis runs.
type Reporter struct {
	cfg Config
}

// NewReporter creates a Reporter; zero-value config fields fall back to
// defaults.
func NewReporter(cfg Config) *Reporter {
	def := DefaultConfig()
	if cfg.CoverageWarnPercent == 0 {
		cfg.CoverageWarnPercent = def.CoverageWarnPercent
	}
	if cfg.CriticalLevels == nil {
		cfg.CriticalLevels = def.CriticalLevels
	}
	if cfg.StaleAfterDays == 0 {
		cfg.StaleAfterDays = def.StaleAfterDays
	}
	return &Reporter{cfg: cfg}
}

// Build assembles the quality report for one run. entries may be nil if
// the cache could not be read; series may be nil when only level
// provenance matters.
func (r *Reporter) Build(res *model.AnalysisResult, series *model.PriceSeries, entries map[string]cache.Entry, now time.Time) *model.QualityReport {
	rep := &model.QualityReport{
		Instrument: res.Instrument,
		TotalCount: res.TotalCount,
	}

	var missingCritical []string
	for i := range res.Levels {
		l := &res.Levels[i]
		switch l.Source {
		case model.SourceCurrentData:
			rep.CurrentDataCount++
		case model.SourceCache:
			rep.CacheCount++
		default:
			rep.UnavailableCount++
			if r.critical(l.Name) {
				missingCritical = append(missingCritical, l.Name)
			}
		}
	}
	rep.ResolvedCount = rep.CurrentDataCount + rep.CacheCount
	if rep.TotalCount > 0 {
		rep.CoveragePercent = float64(rep.ResolvedCount) / float64(rep.TotalCount) * 100
	}

	rep.Findings = append(rep.Findings, model.QualityFinding{
		Message: fmt.Sprintf("reference level coverage: %d/%d (%.1f%%)",
			rep.ResolvedCount, rep.TotalCount, rep.CoveragePercent),
		Severity: model.SeverityInfo,
	})
	rep.Findings = append(rep.Findings, model.QualityFinding{
		Message: fmt.Sprintf("data sources: %d from current series, %d from cache, %d unavailable",
			rep.CurrentDataCount, rep.CacheCount, rep.UnavailableCount),
		Severity: model.SeverityInfo,
	})

	if rep.CoveragePercent < r.cfg.CoverageWarnPercent {
		rep.Findings = append(rep.Findings, model.QualityFinding{
			Message: fmt.Sprintf("low level coverage (%.1f%%), analysis may be less reliable",
				rep.CoveragePercent),
			Severity: model.SeverityWarning,
		})
	}
	if len(missingCritical) > 0 {
		rep.Findings = append(rep.Findings, model.QualityFinding{
			Message:  "missing critical levels: " + strings.Join(missingCritical, ", "),
			Severity: model.SeverityWarning,
		})
	}

	r.checkStaleEntries(rep, entries, now)
	r.checkSeries(rep, series, now)
	return rep
}

func (r *Reporter) critical(name string) bool {
	for _, c := range r.cfg.CriticalLevels {
		if c == name {
			return true
		}
	}
	return false
}

// checkStaleEntries flags cache entries nothing has touched lately;
// candidates for cleanup.
func (r *Reporter) checkStaleEntries(rep *model.QualityReport, entries map[string]cache.Entry, now time.Time) {
	if len(entries) == 0 {
		return
	}
	staleCutoff := now.AddDate(0, 0, -r.cfg.StaleAfterDays)
	var stale []string
	for name, e := range entries {
		if e.LastAccessed.Before(staleCutoff) {
			stale = append(stale, fmt.Sprintf("%s (last used %s)", name, humanize.Time(e.LastAccessed)))
		}
	}
	if len(stale) == 0 {
		return
	}
	sort.Strings(stale)
	rep.Findings = append(rep.Findings, model.QualityFinding{
		Message:  "stale cache entries (consider cleanup): " + strings.Join(stale, ", "),
		Severity: model.SeverityInfo,
	})
}

// checkSeries flags time gaps and stale data in the input series.
func (r *Reporter) checkSeries(rep *model.QualityReport, series *model.PriceSeries, now time.Time) {
	if series == nil || len(series.Bars) < 2 {
		return
	}
	expected := series.Bars[1].Time.Sub(series.Bars[0].Time)
	gaps := 0
	for i := 2; i < len(series.Bars); i++ {
		if series.Bars[i].Time.Sub(series.Bars[i-1].Time) != expected {
			gaps++
		}
	}
	if gaps > 0 {
		rep.Findings = append(rep.Findings, model.QualityFinding{
			Message:  fmt.Sprintf("series has %d time gaps (may indicate incomplete data)", gaps),
			Severity: model.SeverityWarning,
		})
	}
	if age := now.Sub(series.LastTime()); age > time.Hour {
		rep.Findings = append(rep.Findings, model.QualityFinding{
			Message:  fmt.Sprintf("latest bar is %s", humanize.Time(series.LastTime())),
			Severity: model.SeverityInfo,
		})
	}
}
