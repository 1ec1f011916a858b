package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

func testResult(at time.Time, bias model.Bias, confidence float64) (*model.AnalysisResult, *model.QualityReport) {
	res := &model.AnalysisResult{
		Instrument:     "US100",
		Timestamp:      at,
		CurrentPrice:   24500.25,
		Bias:           bias,
		Confidence:     confidence,
		BullishWeight:  0.6,
		BearishWeight:  0.2,
		Spread:         0.4,
		Utilization:    0.8,
		AvailableCount: 16,
		TotalCount:     20,
	}
	rep := &model.QualityReport{
		Instrument:       "US100",
		CoveragePercent:  80,
		CurrentDataCount: 12,
		CacheCount:       4,
		UnavailableCount: 4,
	}
	return res, rep
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer rec.Close()

	base := time.Date(2026, 2, 18, 14, 0, 0, 0, time.UTC)
	res, rep := testResult(base, model.BiasBullish, 32.5)
	if err := rec.RecordRun(res, rep); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	later, laterRep := testResult(base.Add(15*time.Minute), model.BiasBearish, 18.0)
	if err := rec.RecordRun(later, laterRep); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	runs, err := rec.RecentRuns("US100", 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}

	// Newest first.
	if runs[0].Bias != model.BiasBearish || runs[1].Bias != model.BiasBullish {
		t.Errorf("run order = %s, %s; want BEARISH then BULLISH", runs[0].Bias, runs[1].Bias)
	}
	newest := runs[0]
	if newest.ID == "" {
		t.Error("run has no ID")
	}
	if !newest.Timestamp.Equal(base.Add(15 * time.Minute)) {
		t.Errorf("Timestamp = %s, want %s", newest.Timestamp, base.Add(15*time.Minute))
	}
	if newest.CurrentPrice != 24500.25 || newest.Confidence != 18.0 {
		t.Errorf("run = %+v", newest)
	}
	if newest.CoveragePercent != 80 || newest.FromCache != 4 {
		t.Errorf("quality columns = %.0f%%/%d, want 80%%/4", newest.CoveragePercent, newest.FromCache)
	}
}

func TestSQLiteRecorder_Limit(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRecorder: %v", err)
	}
	defer rec.Close()

	base := time.Date(2026, 2, 18, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		res, rep := testResult(base.Add(time.Duration(i)*time.Minute), model.BiasNeutral, 0)
		if err := rec.RecordRun(res, rep); err != nil {
			t.Fatalf("RecordRun %d: %v", i, err)
		}
	}

	runs, err := rec.RecentRuns("US100", 3)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("got %d runs, want 3", len(runs))
	}

	// Other instruments stay out of the result.
	runs, err = rec.RecentRuns("UK100", 10)
	if err != nil {
		t.Fatalf("RecentRuns UK100: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("UK100 has %d runs, want 0", len(runs))
	}
}
