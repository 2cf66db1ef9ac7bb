// Package orchestrator drives batch runs: it selects pending jobs, fans them
// out to the worker in bounded groups, and aggregates per-job outcomes.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dataintel/company-scraper/internal/metrics"
	"github.com/dataintel/company-scraper/internal/scraper"
	"github.com/dataintel/company-scraper/internal/worker"
)

const (
	// DefaultConcurrency is the group size when no override is given.
	DefaultConcurrency = 3
	// MinConcurrency and MaxConcurrency bound caller overrides.
	MinConcurrency = 1
	MaxConcurrency = 10

	// DefaultPageSize caps how many pending jobs one run selects.
	DefaultPageSize = 10

	// MinFetchTimeout and MaxFetchTimeout bound per-fetch timeout overrides.
	MinFetchTimeout = 1 * time.Second
	MaxFetchTimeout = 30 * time.Second
)

// StatusSkipped marks a job whose claim was lost to a concurrent run. It is
// a summary-only status, never written to the store.
const StatusSkipped = "skipped"

// Request selects which jobs a run processes and how.
type Request struct {
	// JobIDs selects specific jobs. Takes precedence over UserID.
	JobIDs []string
	// UserID selects that user's pending jobs.
	UserID string
	// Concurrency overrides the group size; 0 means the configured default.
	Concurrency int
	// FetchTimeout overrides the per-fetch timeout; 0 means the default.
	FetchTimeout time.Duration
}

// JobOutcome is one job's terminal result within a run.
type JobOutcome struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates a whole run.
type Summary struct {
	Processed int          `json:"processed"`
	Completed int          `json:"completed"`
	Failed    int          `json:"failed"`
	Results   []JobOutcome `json:"results"`
}

// Config holds orchestrator defaults.
type Config struct {
	Concurrency  int
	PageSize     int
	FetchTimeout time.Duration
}

// Orchestrator runs batches.
type Orchestrator struct {
	jobs   scraper.JobStore
	worker *worker.Worker
	cfg    Config
	logger *zap.Logger
}

// New constructs an Orchestrator.
func New(jobs scraper.JobStore, w *worker.Worker, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Orchestrator{jobs: jobs, worker: w, cfg: cfg, logger: logger}
}

// Run executes one batch. Jobs are processed in groups of the effective
// concurrency; a group fully settles before the next starts. Context
// cancellation stops dispatching new groups but lets the in-flight group
// settle, so no claimed job is left without a terminal write.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Summary, error) {
	metrics.ObserveBatchRun()

	jobs, err := o.selectJobs(ctx, req)
	if err != nil {
		return Summary{}, fmt.Errorf("select jobs: %w", err)
	}
	if len(jobs) == 0 {
		o.logger.Info("no pending jobs")
		return Summary{Results: []JobOutcome{}}, nil
	}

	concurrency := clampConcurrency(req.Concurrency, o.cfg.Concurrency)
	fetchTimeout := clampFetchTimeout(req.FetchTimeout, o.cfg.FetchTimeout)

	o.logger.Info("batch run started",
		zap.Int("jobs", len(jobs)),
		zap.Int("concurrency", concurrency),
		zap.Duration("fetch_timeout", fetchTimeout),
	)

	outcomes := make([]JobOutcome, len(jobs))
	for start := 0; start < len(jobs); start += concurrency {
		if ctx.Err() != nil {
			o.logger.Warn("batch run canceled, skipping remaining jobs",
				zap.Int("remaining", len(jobs)-start),
			)
			for i := start; i < len(jobs); i++ {
				outcomes[i] = JobOutcome{ID: jobs[i].ID, Status: StatusSkipped}
			}
			break
		}

		end := start + concurrency
		if end > len(jobs) {
			end = len(jobs)
		}
		o.runGroup(ctx, jobs[start:end], outcomes[start:end], fetchTimeout)
	}

	summary := Summary{Processed: len(jobs), Results: outcomes}
	for _, out := range outcomes {
		switch out.Status {
		case string(scraper.JobStatusCompleted):
			summary.Completed++
		case string(scraper.JobStatusFailed):
			summary.Failed++
		}
	}

	o.logger.Info("batch run finished",
		zap.Int("processed", summary.Processed),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// runGroup processes one group concurrently and waits for every member to
// settle. One job's failure or panic never aborts its siblings.
func (o *Orchestrator) runGroup(ctx context.Context, jobs []scraper.Job, outcomes []JobOutcome, fetchTimeout time.Duration) {
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job scraper.Job) {
			defer wg.Done()
			outcomes[i] = o.processOne(ctx, job, fetchTimeout)
		}(i, job)
	}
	wg.Wait()
}

func (o *Orchestrator) processOne(ctx context.Context, job scraper.Job, fetchTimeout time.Duration) (out JobOutcome) {
	out = JobOutcome{ID: job.ID}
	defer func() {
		if r := recover(); r != nil {
			out.Status = string(scraper.JobStatusFailed)
			out.Error = fmt.Sprintf("worker panicked: %v", r)
			o.logger.Error("worker panicked", zap.String("job_id", job.ID), zap.Any("panic", r))
		}
	}()

	err := o.worker.Process(ctx, job, fetchTimeout)
	switch {
	case err == nil:
		out.Status = string(scraper.JobStatusCompleted)
	case errors.Is(err, worker.ErrClaimLost):
		out.Status = StatusSkipped
	default:
		out.Status = string(scraper.JobStatusFailed)
		out.Error = err.Error()
	}
	return out
}

func (o *Orchestrator) selectJobs(ctx context.Context, req Request) ([]scraper.Job, error) {
	switch {
	case len(req.JobIDs) > 0:
		jobs, err := o.jobs.SelectByIDs(ctx, req.JobIDs)
		if err != nil {
			return nil, err
		}
		// Explicit IDs may name jobs that already ran; only pending ones are
		// eligible, the claim closes the remaining race.
		pending := jobs[:0]
		for _, job := range jobs {
			if job.Status == scraper.JobStatusPending {
				pending = append(pending, job)
			}
		}
		return pending, nil
	case req.UserID != "":
		return o.jobs.SelectPendingByUser(ctx, req.UserID, o.cfg.PageSize)
	default:
		return o.jobs.SelectPending(ctx, o.cfg.PageSize)
	}
}

func clampConcurrency(requested, fallback int) int {
	c := requested
	if c == 0 {
		c = fallback
	}
	if c < MinConcurrency {
		c = MinConcurrency
	}
	if c > MaxConcurrency {
		c = MaxConcurrency
	}
	return c
}

func clampFetchTimeout(requested, fallback time.Duration) time.Duration {
	t := requested
	if t == 0 {
		t = fallback
	}
	if t == 0 {
		return 0
	}
	if t < MinFetchTimeout {
		t = MinFetchTimeout
	}
	if t > MaxFetchTimeout {
		t = MaxFetchTimeout
	}
	return t
}
