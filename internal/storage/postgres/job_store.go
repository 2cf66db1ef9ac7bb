// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dataintel/company-scraper/internal/scraper"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// NewPool builds a pgx pool from the config and verifies connectivity.
func NewPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

const jobColumns = `id, url, user_id, status, total_pages, scraped_pages, error_message, created_at, updated_at, completed_at`

// JobStore persists jobs in the scraping_jobs table.
type JobStore struct {
	pool  dbPool
	clock scraper.Clock
}

// NewJobStore constructs a JobStore on an existing pool.
func NewJobStore(pool dbPool, clock scraper.Clock) *JobStore {
	return &JobStore{pool: pool, clock: clock}
}

// Close releases the underlying pool resources.
func (s *JobStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// CreateJob inserts a new pending job row.
func (s *JobStore) CreateJob(ctx context.Context, job scraper.Job) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO scraping_jobs (id, url, user_id, status, total_pages, scraped_pages, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.URL, job.UserID, job.Status, job.TotalPages, job.ScrapedPages, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetJob fetches one job by ID.
func (s *JobStore) GetJob(ctx context.Context, jobID string) (scraper.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM scraping_jobs WHERE id = $1`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return scraper.Job{}, ErrNotFound
	}
	if err != nil {
		return scraper.Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// SelectPending returns up to limit pending jobs, oldest first.
func (s *JobStore) SelectPending(ctx context.Context, limit int) ([]scraper.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM scraping_jobs WHERE status = $1 ORDER BY created_at ASC LIMIT $2`,
		scraper.JobStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending jobs: %w", err)
	}
	return scanJobs(rows)
}

// SelectByIDs returns the named jobs in creation order.
func (s *JobStore) SelectByIDs(ctx context.Context, jobIDs []string) ([]scraper.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM scraping_jobs WHERE id = ANY($1) ORDER BY created_at ASC`,
		jobIDs)
	if err != nil {
		return nil, fmt.Errorf("select jobs by ids: %w", err)
	}
	return scanJobs(rows)
}

// SelectPendingByUser returns up to limit pending jobs for one user, oldest first.
func (s *JobStore) SelectPendingByUser(ctx context.Context, userID string, limit int) ([]scraper.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM scraping_jobs WHERE user_id = $1 AND status = $2 ORDER BY created_at ASC LIMIT $3`,
		userID, scraper.JobStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending jobs by user: %w", err)
	}
	return scanJobs(rows)
}

// ClaimJob moves a job from pending to running. The conditional update is the
// claim: only the invocation whose update touched the row owns the job.
func (s *JobStore) ClaimJob(ctx context.Context, jobID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scraping_jobs SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		scraper.JobStatusRunning, s.clock.Now(), jobID, scraper.JobStatusPending)
	if err != nil {
		return false, fmt.Errorf("claim job: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkCompleted finalizes a successful job.
func (s *JobStore) MarkCompleted(ctx context.Context, jobID string, totalPages, scrapedPages int, completedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
UPDATE scraping_jobs
SET status = $1, total_pages = $2, scraped_pages = $3, completed_at = $4, error_message = NULL, updated_at = $5
WHERE id = $6`,
		scraper.JobStatusCompleted, totalPages, scrapedPages, completedAt, s.clock.Now(), jobID)
	if err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}

// MarkFailed finalizes a failed job with its cause.
func (s *JobStore) MarkFailed(ctx context.Context, jobID string, errMsg string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE scraping_jobs SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4`,
		scraper.JobStatusFailed, errMsg, s.clock.Now(), jobID)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

func scanJob(row pgx.Row) (scraper.Job, error) {
	var (
		job      scraper.Job
		errMsg   *string
		finished *time.Time
	)
	if err := row.Scan(
		&job.ID, &job.URL, &job.UserID, &job.Status,
		&job.TotalPages, &job.ScrapedPages, &errMsg,
		&job.CreatedAt, &job.UpdatedAt, &finished,
	); err != nil {
		return scraper.Job{}, err
	}
	if errMsg != nil {
		job.ErrorMessage = *errMsg
	}
	job.CompletedAt = finished
	return job, nil
}

func scanJobs(rows pgx.Rows) ([]scraper.Job, error) {
	defer rows.Close()
	var jobs []scraper.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}
