package dataset

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store holds the loaded dataset. The case slice is immutable after a load;
// Reload swaps the whole snapshot under the lock rather than mutating it, so
// readers always see a consistent dataset.
type Store struct {
	path   string
	logger zerolog.Logger

	mu       sync.RWMutex
	cases    []*SurgeryCase
	snapshot uuid.UUID
	loadedAt time.Time
}

func NewStore(path string, logger zerolog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the CSV from disk and installs it as the current snapshot.
func (s *Store) Load() error {
	cases, stats, err := DecodeFile(s.path)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("dataset %s contains no decodable case rows", s.path)
	}

	snapshot := uuid.New()
	s.mu.Lock()
	s.cases = cases
	s.snapshot = snapshot
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info().
		Str("path", s.path).
		Str("snapshot", snapshot.String()).
		Int("rows", stats.Rows).
		Int("cases", stats.Decoded).
		Int("skipped", stats.SkippedRow).
		Int("columns", stats.Columns).
		Msg("dataset loaded")
	return nil
}

// Cases returns the current snapshot. Callers must not mutate the returned
// slice or its records.
func (s *Store) Cases() []*SurgeryCase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cases
}

// Len returns the number of cases in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}

// Snapshot identifies the currently loaded dataset revision.
func (s *Store) Snapshot() (uuid.UUID, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.loadedAt
}
