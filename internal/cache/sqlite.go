package cache

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps cached levels in a SQLite database, one row per
// (instrument, level). Replaces the file store when several processes
// need coordinated access to the same cache.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS cached_levels (
		instrument    TEXT NOT NULL,
		level_name    TEXT NOT NULL,
		price         REAL NOT NULL,
		recorded_at   TEXT NOT NULL,
		recorded_date TEXT NOT NULL,
		last_accessed TEXT NOT NULL,
		PRIMARY KEY (instrument, level_name)
	)`)
	return err
}

// Load reads all cached levels for an instrument.
func (s *SQLiteStore) Load(instrument string) (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT level_name, price, recorded_at, recorded_date, last_accessed
		FROM cached_levels WHERE instrument = ?`, instrument)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	defer rows.Close()

	levels := map[string]Entry{}
	for rows.Next() {
		var name, recordedAt, lastAccessed string
		var e Entry
		if err := rows.Scan(&name, &e.Price, &recordedAt, &e.RecordedDate, &lastAccessed); err != nil {
			return nil, fmt.Errorf("scan cache row: %w", err)
		}
		if e.RecordedAt, err = time.Parse(time.RFC3339, recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at for %s: %w", name, err)
		}
		if e.LastAccessed, err = time.Parse(time.RFC3339, lastAccessed); err != nil {
			return nil, fmt.Errorf("parse last_accessed for %s: %w", name, err)
		}
		levels[name] = e
	}
	return levels, rows.Err()
}

// Save replaces the instrument's rows in one transaction.
func (s *SQLiteStore) Save(instrument string, levels map[string]Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM cached_levels WHERE instrument = ?`, instrument); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear instrument rows: %w", err)
	}
	for name, e := range levels {
		if _, err := tx.Exec(`INSERT INTO cached_levels
			(instrument, level_name, price, recorded_at, recorded_date, last_accessed)
			VALUES (?,?,?,?,?,?)`,
			instrument, name, e.Price,
			e.RecordedAt.Format(time.RFC3339), e.RecordedDate,
			e.LastAccessed.Format(time.RFC3339),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
