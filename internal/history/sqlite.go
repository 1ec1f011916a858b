package history

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/JGDev1215/MidOpenBeta/internal/model"
)

// SQLiteRecorder persists analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers can browse history while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] history recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id                TEXT PRIMARY KEY,
			instrument        TEXT NOT NULL,
			timestamp         INTEGER NOT NULL,
			current_price     REAL,
			bias              TEXT,
			confidence        REAL,
			bullish_weight    REAL,
			bearish_weight    REAL,
			spread            REAL,
			utilization       REAL,
			available_levels  INTEGER,
			total_levels      INTEGER,
			coverage_percent  REAL,
			from_current_data INTEGER,
			from_cache        INTEGER,
			unavailable       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_instrument_ts ON analysis_runs(instrument, timestamp)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores one analysis outcome under a fresh run ID.
func (r *SQLiteRecorder) RecordRun(res *model.AnalysisResult, rep *model.QualityReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO analysis_runs
		(id, instrument, timestamp, current_price, bias, confidence,
		 bullish_weight, bearish_weight, spread, utilization,
		 available_levels, total_levels, coverage_percent,
		 from_current_data, from_cache, unavailable)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		uuid.NewString(), res.Instrument, res.Timestamp.Unix(), res.CurrentPrice,
		string(res.Bias), res.Confidence,
		res.BullishWeight, res.BearishWeight, res.Spread, res.Utilization,
		res.AvailableCount, res.TotalCount, rep.CoveragePercent,
		rep.CurrentDataCount, rep.CacheCount, rep.UnavailableCount,
	)
	return err
}

// RecentRuns returns the newest runs for an instrument, newest first.
func (r *SQLiteRecorder) RecentRuns(instrument string, limit int) ([]Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, instrument, timestamp, current_price, bias, confidence,
		bullish_weight, bearish_weight, spread, utilization,
		available_levels, total_levels, coverage_percent,
		from_current_data, from_cache, unavailable
		FROM analysis_runs WHERE instrument = ?
		ORDER BY timestamp DESC LIMIT ?`, instrument, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var ts int64
		var biasLabel string
		if err := rows.Scan(&run.ID, &run.Instrument, &ts, &run.CurrentPrice, &biasLabel,
			&run.Confidence, &run.BullishWeight, &run.BearishWeight, &run.Spread,
			&run.Utilization, &run.AvailableLevels, &run.TotalLevels, &run.CoveragePercent,
			&run.FromCurrentData, &run.FromCache, &run.UnavailableCount); err != nil {
			return nil, err
		}
		run.Timestamp = time.Unix(ts, 0)
		run.Bias = model.Bias(biasLabel)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing history recorder")
	return r.db.Close()
}
