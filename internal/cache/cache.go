// Package cache holds previously observed reference-level prices so an
// analysis can still cover levels the current series is too short to
// derive. Validity is level-kind-specific, driven by the expiration
// policy each catalog entry carries.
package cache

import (
	"fmt"
	"log"
	"time"

	"github.com/JGDev1215/MidOpenBeta/internal/catalog"
)

// Manager is the per-instrument cache front. It owns no global state:
// the caller constructs it with a Store and passes it into each analysis.
type Manager struct {
	instrument string
	loc        *time.Location
	store      Store
}

// NewManager creates a cache manager for one instrument.
func NewManager(instrument string, loc *time.Location, store Store) *Manager {
	return &Manager{instrument: instrument, loc: loc, store: store}
}

// Get returns the cached price for a level if present and still valid at
// now, refreshing the entry's last-accessed stamp on a hit. Store errors
// are absorbed as misses: a broken cache degrades coverage, never the run.
func (m *Manager) Get(level catalog.Level, now time.Time) (float64, bool, string) {
	levels, err := m.store.Load(m.instrument)
	if err != nil {
		log.Printf("[WARN] cache load failed for %s: %v", m.instrument, err)
		return 0, false, fmt.Sprintf("cache unreadable: %v", err)
	}

	entry, ok := levels[level.Name]
	if !ok {
		return 0, false, fmt.Sprintf("no cached data for %s", level.Name)
	}

	valid, reason := level.Expiry.Check(level.Name, entry.RecordedAt.In(m.loc), now.In(m.loc), m.loc)
	if !valid {
		return 0, false, reason
	}

	entry.LastAccessed = now
	levels[level.Name] = entry
	if err := m.store.Save(m.instrument, levels); err != nil {
		log.Printf("[WARN] cache access-stamp update failed for %s: %v", m.instrument, err)
	}
	return entry.Price, true, reason
}

// Update overwrites entries for every level in prices, recording them at
// recordedAt. Called after each analysis with all prices derived from
// current data; this is how future gaps get backfilled.
func (m *Manager) Update(prices map[string]float64, recordedAt time.Time) error {
	levels, err := m.store.Load(m.instrument)
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}
	local := recordedAt.In(m.loc)
	for name, price := range prices {
		levels[name] = Entry{
			Price:        price,
			RecordedAt:   local,
			RecordedDate: local.Format("2006-01-02"),
			LastAccessed: local,
		}
	}
	if err := m.store.Save(m.instrument, levels); err != nil {
		return fmt.Errorf("save cache: %w", err)
	}
	return nil
}

// Entries returns a copy of all cached entries, for diagnostics.
func (m *Manager) Entries() (map[string]Entry, error) {
	return m.store.Load(m.instrument)
}

// Cleanup removes entries not accessed within retentionDays before now
// and returns how many were dropped.
func (m *Manager) Cleanup(retentionDays int, now time.Time) (int, error) {
	levels, err := m.store.Load(m.instrument)
	if err != nil {
		return 0, fmt.Errorf("load cache: %w", err)
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	removed := 0
	for name, entry := range levels {
		if entry.LastAccessed.Before(cutoff) {
			delete(levels, name)
			removed++
		}
	}
	if removed > 0 {
		if err := m.store.Save(m.instrument, levels); err != nil {
			return 0, fmt.Errorf("save cache: %w", err)
		}
	}
	return removed, nil
}

// Clear drops every cached entry for the instrument.
func (m *Manager) Clear() (int, error) {
	levels, err := m.store.Load(m.instrument)
	if err != nil {
		return 0, fmt.Errorf("load cache: %w", err)
	}
	removed := len(levels)
	if err := m.store.Save(m.instrument, map[string]Entry{}); err != nil {
		return 0, fmt.Errorf("save cache: %w", err)
	}
	return removed, nil
}
