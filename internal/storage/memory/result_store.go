package memory

import (
	"context"
	"sync"

	"github.com/dataintel/company-scraper/internal/scraper"
)

// ResultStore keeps result rows in memory, insert-only.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string][]scraper.ResultRecord
}

// NewResultStore constructs a ResultStore.
func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string][]scraper.ResultRecord)}
}

// InsertResult appends a result row for a job.
func (s *ResultStore) InsertResult(_ context.Context, record scraper.ResultRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[record.JobID] = append(s.results[record.JobID], record)
	return nil
}

// ListResults returns the recorded rows for a job.
func (s *ResultStore) ListResults(_ context.Context, jobID string) ([]scraper.ResultRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.results[jobID]
	out := make([]scraper.ResultRecord, len(records))
	copy(out, records)
	return out, nil
}
