package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Entry is one persisted level price. JSON field names match the on-disk
// cache format: price, timestamp, data_date, last_accessed.
type Entry struct {
	Price        float64   `json:"price"`
	RecordedAt   time.Time `json:"timestamp"`
	RecordedDate string    `json:"data_date"`
	LastAccessed time.Time `json:"last_accessed"`
}

// Store persists the per-instrument level cache. Implementations must
// treat Save as last-write-wins for the whole instrument snapshot.
type Store interface {
	Load(instrument string) (map[string]Entry, error)
	Save(instrument string, levels map[string]Entry) error
	Close() error
}

// cacheFile is the JSON document layout of a file-backed cache.
type cacheFile struct {
	Instrument   string           `json:"instrument"`
	CachedLevels map[string]Entry `json:"cached_levels"`
}

// FileStore keeps one JSON file per instrument under a cache directory.
// Writes go through a temp file and rename so a crash never leaves a
// half-written cache behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(instrument string) string {
	return filepath.Join(f.dir, instrument+"_cache.json")
}

// Load reads the instrument's cache file. A missing file is an empty
// cache; a corrupt file is logged and treated as empty so one bad write
// never blocks analysis.
func (f *FileStore) Load(instrument string) (map[string]Entry, error) {
	data, err := os.ReadFile(f.path(instrument))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}
	var doc cacheFile
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("[WARN] cache file for %s is corrupt, starting empty: %v", instrument, err)
		return map[string]Entry{}, nil
	}
	if doc.CachedLevels == nil {
		doc.CachedLevels = map[string]Entry{}
	}
	return doc.CachedLevels, nil
}

// Save atomically replaces the instrument's cache file.
func (f *FileStore) Save(instrument string, levels map[string]Entry) error {
	doc := cacheFile{Instrument: instrument, CachedLevels: levels}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmp := f.path(instrument) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache temp: %w", err)
	}
	if err := os.Rename(tmp, f.path(instrument)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
