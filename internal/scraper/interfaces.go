package scraper

import (
	"context"
	"time"
)

// JobStore persists job rows and drives their status transitions.
type JobStore interface {
	CreateJob(ctx context.Context, job Job) error
	GetJob(ctx context.Context, jobID string) (Job, error)
	// SelectPending returns up to limit pending jobs, oldest first.
	SelectPending(ctx context.Context, limit int) ([]Job, error)
	// SelectByIDs returns the named jobs in created_at order.
	SelectByIDs(ctx context.Context, jobIDs []string) ([]Job, error)
	// SelectPendingByUser returns up to limit pending jobs for one user,
	// oldest first.
	SelectPendingByUser(ctx context.Context, userID string, limit int) ([]Job, error)
	// ClaimJob atomically moves a job from pending to running. It reports
	// false when another invocation won the claim.
	ClaimJob(ctx context.Context, jobID string) (bool, error)
	// MarkCompleted finalizes a successful job.
	MarkCompleted(ctx context.Context, jobID string, totalPages, scrapedPages int, completedAt time.Time) error
	// MarkFailed finalizes a failed job with its human-readable cause.
	MarkFailed(ctx context.Context, jobID string, errMsg string) error
}

// ResultStore receives one structured record per successfully processed job.
// Rows are insert-only; an existing result row is never updated.
type ResultStore interface {
	InsertResult(ctx context.Context, record ResultRecord) error
	ListResults(ctx context.Context, jobID string) ([]ResultRecord, error)
}

// BlobStore archives raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Fetcher resolves a URL to page content plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job and result IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

// Hasher computes digests for archive keys.
type Hasher interface {
	Hash(data []byte) (string, error)
}
