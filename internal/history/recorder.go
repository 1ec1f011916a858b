// Package history persists analysis runs for later browsing.
package history

import (
	"time"

	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

// Run is one recorded analysis outcome.
type Run struct {
	ID               string
	Instrument       string
	Timestamp        time.Time
	CurrentPrice     float64
	Bias             model.Bias
	Confidence       float64
	BullishWeight    float64
	BearishWeight    float64
	Spread           float64
	Utilization      float64
	AvailableLevels  int
	TotalLevels      int
	CoveragePercent  float64
	FromCurrentData  int
	FromCache        int
	UnavailableCount int
}

// Recorder persists analysis runs.
type Recorder interface {
	RecordRun(res *model.AnalysisResult, rep *model.QualityReport) error
	RecentRuns(instrument string, limit int) ([]Run, error)
	Close() error
}

// NoopRecorder is used when no history database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.AnalysisResult, _ *model.QualityReport) error { return nil }
func (n *NoopRecorder) RecentRuns(_ string, _ int) ([]Run, error)                       { return nil, nil }
func (n *NoopRecorder) Close() error                                                    { return nil }
