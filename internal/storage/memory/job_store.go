// Package memory provides in-memory store implementations for development
// wiring and tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dataintel/company-scraper/internal/scraper"
)

// JobStore keeps jobs in a mutex-guarded map.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]scraper.Job
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]scraper.Job)}
}

// CreateJob stores a new job.
func (s *JobStore) CreateJob(_ context.Context, job scraper.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return errors.New("job already exists")
	}
	s.jobs[job.ID] = job
	return nil
}

// GetJob fetches a job by ID.
func (s *JobStore) GetJob(_ context.Context, jobID string) (scraper.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return scraper.Job{}, errors.New("job not found")
	}
	return job, nil
}

// SelectPending returns up to limit pending jobs, oldest first.
func (s *JobStore) SelectPending(_ context.Context, limit int) ([]scraper.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var jobs []scraper.Job
	for _, job := range s.jobs {
		if job.Status == scraper.JobStatusPending {
			jobs = append(jobs, job)
		}
	}
	sortByCreation(jobs)
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// SelectByIDs returns the named jobs in creation order.
func (s *JobStore) SelectByIDs(_ context.Context, jobIDs []string) ([]scraper.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var jobs []scraper.Job
	for _, id := range jobIDs {
		if job, ok := s.jobs[id]; ok {
			jobs = append(jobs, job)
		}
	}
	sortByCreation(jobs)
	return jobs, nil
}

// SelectPendingByUser returns up to limit pending jobs for one user, oldest first.
func (s *JobStore) SelectPendingByUser(_ context.Context, userID string, limit int) ([]scraper.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var jobs []scraper.Job
	for _, job := range s.jobs {
		if job.UserID == userID && job.Status == scraper.JobStatusPending {
			jobs = append(jobs, job)
		}
	}
	sortByCreation(jobs)
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// ClaimJob atomically moves a job from pending to running.
func (s *JobStore) ClaimJob(_ context.Context, jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return false, errors.New("job not found")
	}
	if job.Status != scraper.JobStatusPending {
		return false, nil
	}
	job.Status = scraper.JobStatusRunning
	job.UpdatedAt = time.Now().UTC()
	s.jobs[jobID] = job
	return true, nil
}

// MarkCompleted finalizes a successful job.
func (s *JobStore) MarkCompleted(_ context.Context, jobID string, totalPages, scrapedPages int, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return errors.New("job not found")
	}
	job.Status = scraper.JobStatusCompleted
	job.TotalPages = totalPages
	job.ScrapedPages = scrapedPages
	job.CompletedAt = &completedAt
	job.ErrorMessage = ""
	job.UpdatedAt = time.Now().UTC()
	s.jobs[jobID] = job
	return nil
}

// MarkFailed finalizes a failed job with its cause.
func (s *JobStore) MarkFailed(_ context.Context, jobID string, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return errors.New("job not found")
	}
	job.Status = scraper.JobStatusFailed
	job.ErrorMessage = errMsg
	job.UpdatedAt = time.Now().UTC()
	s.jobs[jobID] = job
	return nil
}

func sortByCreation(jobs []scraper.Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
}
