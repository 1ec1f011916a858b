package model

import "time"

// SourceKind records where a resolved level price came from.
type SourceKind string

const (
	SourceCurrentData SourceKind = "CURRENT_DATA"
	SourceCache       SourceKind = "CACHE"
	SourceUnavailable SourceKind = "UNAVAILABLE"
)

// Position describes where the current price sits relative to a level.
type Position string

const (
	PositionAbove Position = "ABOVE"
	PositionBelow Position = "BELOW"
	PositionEqual Position = "EQUAL"
)

// Bias is the aggregated directional verdict.
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

// ResolvedLevel is one catalog entry's outcome for a single analysis run.
// Built once per run and never mutated afterwards.
type ResolvedLevel struct {
	Name               string     `json:"name"`
	Price              float64    `json:"price"`
	Source             SourceKind `json:"source"`
	SourceDetail       string     `json:"source_detail"`
	BaseWeight         float64    `json:"base_weight"`
	NormalizedWeight   float64    `json:"normalized_weight"`
	DepreciationFactor float64    `json:"depreciation"`
	EffectiveWeight    float64    `json:"effective_weight"`
	DistancePercent    float64    `json:"distance_percent"`
	Position           Position   `json:"position"`
}

// Available reports whether the level carries a usable price.
func (r *ResolvedLevel) Available() bool {
	return r.Source != SourceUnavailable
}

// AnalysisResult is the complete output of one analysis invocation.
type AnalysisResult struct {
	Instrument     string          `json:"instrument"`
	Timezone       string          `json:"timezone"`
	Timestamp      time.Time       `json:"timestamp"`
	CurrentPrice   float64         `json:"current_price"`
	DataPoints     int             `json:"data_points"`
	Bias           Bias            `json:"bias"`
	Confidence     float64         `json:"confidence"`
	BullishWeight  float64         `json:"bullish_weight"`
	BearishWeight  float64         `json:"bearish_weight"`
	Spread         float64         `json:"spread"`
	Utilization    float64         `json:"utilization"`
	AvailableCount int             `json:"available_levels"`
	TotalCount     int             `json:"total_levels"`
	Levels         []ResolvedLevel `json:"levels"`
}
