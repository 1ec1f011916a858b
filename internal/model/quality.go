package model

// Severity classifies a quality finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// QualityFinding is a single diagnostic message about analysis inputs.
type QualityFinding struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// QualityReport summarizes coverage, provenance mix, and cache staleness
// for one analysis run. It is diagnostic only and never feeds back into
// the bias math.
type QualityReport struct {
	Instrument       string           `json:"instrument"`
	CoveragePercent  float64          `json:"coverage_percent"`
	ResolvedCount    int              `json:"resolved_levels"`
	TotalCount       int              `json:"total_levels"`
	CurrentDataCount int              `json:"from_current_data"`
	CacheCount       int              `json:"from_cache"`
	UnavailableCount int              `json:"unavailable"`
	Findings         []QualityFinding `json:"findings"`
}

// Warnings returns only the warning-severity findings.
func (q *QualityReport) Warnings() []QualityFinding {
	var out []QualityFinding
	for _, f := range q.Findings {
		if f.Severity == SeverityWarning {
			out = append(out, f)
		}
	}
	return out
}
