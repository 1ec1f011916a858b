// Package report renders analysis results as text summaries, level CSVs,
// or JSON for export.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

// FormatSummary renders a human-readable overview of one run.
func FormatSummary(res *model.AnalysisResult, rep *model.QualityReport) string {
	var b strings.Builder
	rule := strings.Repeat("=", 50)
	thin := strings.Repeat("-", 50)

	fmt.Fprintf(&b, "REFERENCE LEVEL ANALYSIS - %s\n%s\n", res.Instrument, rule)
	fmt.Fprintf(&b, "Timestamp: %s\n", res.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Current Price: %s\n", humanize.CommafWithDigits(res.CurrentPrice, 2))
	fmt.Fprintf(&b, "Data Points: %d\n\n", res.DataPoints)

	fmt.Fprintf(&b, "ANALYSIS\n%s\n", thin)
	fmt.Fprintf(&b, "Directional Bias: %s\n", res.Bias)
	fmt.Fprintf(&b, "Confidence Score: %.2f\n", res.Confidence)
	fmt.Fprintf(&b, "Bullish Weight: %.4f | Bearish Weight: %.4f | Spread: %.4f\n",
		res.BullishWeight, res.BearishWeight, res.Spread)
	fmt.Fprintf(&b, "Weight Utilization: %.4f\n", res.Utilization)
	fmt.Fprintf(&b, "Levels Resolved: %d/%d\n\n", res.AvailableCount, res.TotalCount)

	fmt.Fprintf(&b, "LEVELS\n%s\n", thin)
	for i := range res.Levels {
		l := &res.Levels[i]
		if !l.Available() {
			fmt.Fprintf(&b, "%-18s UNAVAILABLE  %s\n", l.Name, l.SourceDetail)
			continue
		}
		fmt.Fprintf(&b, "%-18s %10.2f  %-5s  dist %6.3f%%  eff %.4f  [%s]\n",
			l.Name, l.Price, l.Position, l.DistancePercent, l.EffectiveWeight, l.Source)
	}

	if rep != nil && len(rep.Findings) > 0 {
		fmt.Fprintf(&b, "\nDATA QUALITY\n%s\n", thin)
		for _, f := range rep.Findings {
			prefix := "•"
			if f.Severity == model.SeverityWarning {
				prefix = "!"
			}
			fmt.Fprintf(&b, "%s %s\n", prefix, f.Message)
		}
	}
	return b.String()
}

// FormatCSV renders the per-level breakdown as CSV.
func FormatCSV(res *model.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("name,price,source,position,distance_percent,normalized_weight,depreciation,effective_weight\n")
	for i := range res.Levels {
		l := &res.Levels[i]
		if !l.Available() {
			fmt.Fprintf(&b, "%s,,%s,,,,,\n", l.Name, l.Source)
			continue
		}
		fmt.Fprintf(&b, "%s,%.2f,%s,%s,%.3f,%.4f,%.3f,%.4f\n",
			l.Name, l.Price, l.Source, l.Position,
			l.DistancePercent, l.NormalizedWeight, l.DepreciationFactor, l.EffectiveWeight)
	}
	return b.String()
}

// jsonEnvelope pairs the result with its quality report for export.
type jsonEnvelope struct {
	Result  *model.AnalysisResult `json:"result"`
	Quality *model.QualityReport  `json:"quality,omitempty"`
}

// FormatJSON renders the result and quality report as indented JSON.
func FormatJSON(res *model.AnalysisResult, rep *model.QualityReport) (string, error) {
	data, err := json.MarshalIndent(jsonEnvelope{Result: res, Quality: rep}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(data), nil
}
