// Package history provides the day-keyed snapshot history store.
//
// The store is a directory of immutable JSON documents, one per UTC
// calendar day, named YYYY-MM-DD.json. Batches are never rewritten once
// a later day exists; the comparison engine only ever reads them.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "weekly-etf-dashboard/internal/errors"
	"weekly-etf-dashboard/internal/logging"
	"weekly-etf-dashboard/internal/models"
)

// Store reads and writes day-keyed snapshot batches.
type Store struct {
	dir    string
	logger zerolog.Logger
}

// NewStore creates a store rooted at dir. The directory is created
// lazily on first write; a missing directory reads as empty history.
func NewStore(dir string, logger zerolog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// WriteToday persists the batch under its own calendar-day key,
// overwriting any earlier write from the same day (reruns within a day
// replace, later days never touch earlier files).
func (s *Store) WriteToday(batch *models.SnapshotBatch) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", apperrors.NewStoreError("mkdir", s.dir, err)
	}
	day := batch.Date()
	if day == "" {
		day = time.Now().UTC().Format("2006-01-02")
	}
	path := filepath.Join(s.dir, day+".json")

	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", apperrors.NewStoreError("marshal", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", apperrors.NewStoreError("write", path, err)
	}
	return path, nil
}

// Load returns up to the most recent lookbackDays batches in ascending
// date order. A missing directory is empty history, not an error; a
// corrupt day file is skipped with a warning and processing continues.
func (s *Store) Load(lookbackDays int) ([]models.SnapshotBatch, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewStoreError("readdir", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	// Filenames are YYYY-MM-DD.json, so lexicographic order is date order.
	sort.Strings(names)
	if lookbackDays > 0 && len(names) > lookbackDays {
		names = names[len(names)-lookbackDays:]
	}

	batches := make([]models.SnapshotBatch, 0, len(names))
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logging.LogCorruptBatch(s.logger, path, err)
			continue
		}
		var batch models.SnapshotBatch
		if err := json.Unmarshal(data, &batch); err != nil {
			logging.LogCorruptBatch(s.logger, path, err)
			continue
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// LoadDay returns the batch for one specific YYYY-MM-DD day.
func (s *Store) LoadDay(day string) (*models.SnapshotBatch, error) {
	path := filepath.Join(s.dir, day+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrNoSnapshot
		}
		return nil, apperrors.NewStoreError("read", path, err)
	}
	var batch models.SnapshotBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, apperrors.NewStoreError("unmarshal", path, err)
	}
	return &batch, nil
}

// Days lists the available day keys in ascending order.
func (s *Store) Days() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewStoreError("readdir", s.dir, err)
	}
	var days []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		days = append(days, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(days)
	return days, nil
}
