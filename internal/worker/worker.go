// Package worker executes the per-job scrape pipeline: claim, fetch,
// extract, archive, persist, finalize.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dataintel/company-scraper/internal/extract"
	"github.com/dataintel/company-scraper/internal/metrics"
	"github.com/dataintel/company-scraper/internal/scraper"
)

// ErrClaimLost reports that another invocation moved the job out of pending
// first. The job is skipped, not failed.
var ErrClaimLost = errors.New("job claimed by another worker")

// Config controls Worker behavior.
type Config struct {
	// Provider names the fetcher backing this worker, for metrics.
	Provider string
	// ContentType is stored with archived page text.
	ContentType string
	// BlobPrefix prefixes archive object paths.
	BlobPrefix string
	// Topic receives completion events; empty disables publishing.
	Topic string
	// FetchTimeout bounds a single fetch when no override is given.
	FetchTimeout time.Duration
}

// Worker processes one job at a time.
type Worker struct {
	jobs      scraper.JobStore
	results   scraper.ResultStore
	blobs     scraper.BlobStore
	publisher scraper.Publisher
	fetcher   scraper.Fetcher
	extractor *extract.Extractor
	hasher    scraper.Hasher
	clock     scraper.Clock
	ids       scraper.IDGenerator
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker.
func New(
	jobs scraper.JobStore,
	results scraper.ResultStore,
	blobs scraper.BlobStore,
	publisher scraper.Publisher,
	fetcher scraper.Fetcher,
	extractor *extract.Extractor,
	hasher scraper.Hasher,
	clock scraper.Clock,
	ids scraper.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "text/plain; charset=utf-8"
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 12 * time.Second
	}
	return &Worker{
		jobs:      jobs,
		results:   results,
		blobs:     blobs,
		publisher: publisher,
		fetcher:   fetcher,
		extractor: extractor,
		hasher:    hasher,
		clock:     clock,
		ids:       ids,
		cfg:       cfg,
		logger:    logger,
	}
}

// Process runs the full pipeline for one selected job. fetchTimeout <= 0
// falls back to the configured default. It returns ErrClaimLost when the job
// was taken by a concurrent invocation, and the job's terminal failure cause
// otherwise.
func (w *Worker) Process(ctx context.Context, job scraper.Job, fetchTimeout time.Duration) error {
	claimed, err := w.jobs.ClaimJob(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("claim job %s: %w", job.ID, err)
	}
	if !claimed {
		w.logger.Debug("claim lost", zap.String("job_id", job.ID))
		return ErrClaimLost
	}

	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	// Once claimed, the job runs to completion even if the batch context is
	// canceled; interrupting the pipeline would strand the row in running.
	jobCtx := context.WithoutCancel(ctx)

	resultID, err := w.runPipeline(jobCtx, job, fetchTimeout)
	if err != nil {
		w.logger.Error("job failed",
			zap.String("job_id", job.ID),
			zap.String("url", job.URL),
			zap.Error(err),
		)
		metrics.ObserveJob(string(scraper.JobStatusFailed))
		if markErr := w.jobs.MarkFailed(jobCtx, job.ID, err.Error()); markErr != nil {
			w.logger.Error("mark failed status", zap.String("job_id", job.ID), zap.Error(markErr))
		}
		return err
	}

	if err := w.jobs.MarkCompleted(jobCtx, job.ID, 1, 1, w.clock.Now()); err != nil {
		// The result row is already written. The job stays in running for an
		// external reconciliation pass to requeue; flipping it to failed here
		// would contradict the stored result.
		w.logger.Error("mark completed status", zap.String("job_id", job.ID), zap.Error(err))
		metrics.ObserveJob(string(scraper.JobStatusFailed))
		return fmt.Errorf("mark job %s completed: %w", job.ID, err)
	}

	w.publishCompletion(jobCtx, job, resultID)
	metrics.ObserveJob(string(scraper.JobStatusCompleted))
	w.logger.Info("job completed",
		zap.String("job_id", job.ID),
		zap.String("url", job.URL),
		zap.String("result_id", resultID),
	)
	return nil
}

// runPipeline fetches, extracts, archives, and writes the result row. A panic
// in any step becomes that job's failure without touching sibling jobs.
func (w *Worker) runPipeline(ctx context.Context, job scraper.Job, fetchTimeout time.Duration) (resultID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	if fetchTimeout <= 0 {
		fetchTimeout = w.cfg.FetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	start := time.Now()
	page, err := w.fetcher.Fetch(fetchCtx, job.URL)
	metrics.ObserveFetch(w.cfg.Provider, job.URL, time.Since(start))
	if err != nil {
		return "", err
	}

	pageURL := page.Metadata.SourceURL
	if pageURL == "" {
		pageURL = job.URL
	}

	data := w.extractor.Extract(page.Content, pageURL, &page.Metadata)

	hash, err := w.hasher.Hash([]byte(page.Content))
	if err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}

	blobURI := ""
	if w.blobs != nil {
		uri, putErr := w.blobs.PutObject(ctx, w.buildBlobPath(job.ID, hash), w.cfg.ContentType, []byte(page.Content))
		if putErr != nil {
			return "", fmt.Errorf("archive content: %w", putErr)
		}
		blobURI = uri
	}

	resultID, err = w.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate result id: %w", err)
	}

	title := page.Metadata.Title
	if title == "" {
		title = extract.TitleFromContent(page.Content)
	}
	description := page.Metadata.Description
	if description == "" {
		description = extract.DescriptionFromContent(page.Content)
	}

	record := scraper.ResultRecord{
		ID:          resultID,
		JobID:       job.ID,
		UserID:      job.UserID,
		URL:         pageURL,
		Title:       title,
		Description: description,
		Content:     page.Content,
		Extracted:   data,
		Metadata:    w.buildMetadata(page, hash, blobURI),
		CreatedAt:   w.clock.Now(),
	}
	if err := w.results.InsertResult(ctx, record); err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return resultID, nil
}

func (w *Worker) buildMetadata(page scraper.Page, hash, blobURI string) map[string]any {
	meta := make(map[string]any, len(page.Metadata.Extra)+5)
	for k, v := range page.Metadata.Extra {
		meta[k] = v
	}
	if page.Metadata.SiteName != "" {
		meta["site_name"] = page.Metadata.SiteName
	}
	meta["scraped"] = true
	meta["timestamp"] = w.clock.Now().Format(time.RFC3339)
	meta["content_hash"] = hash
	if blobURI != "" {
		meta["blob_uri"] = blobURI
	}
	return meta
}

func (w *Worker) buildBlobPath(jobID, hash string) string {
	prefix := strings.Trim(w.cfg.BlobPrefix, "/")
	if prefix == "" {
		return fmt.Sprintf("%s/%s.txt", jobID, hash)
	}
	return fmt.Sprintf("%s/%s/%s.txt", prefix, jobID, hash)
}

// publishCompletion is best effort; a publish failure never fails the job.
func (w *Worker) publishCompletion(ctx context.Context, job scraper.Job, resultID string) {
	if w.cfg.Topic == "" || w.publisher == nil {
		return
	}
	payload := map[string]any{
		"job_id":    job.ID,
		"user_id":   job.UserID,
		"url":       job.URL,
		"result_id": resultID,
		"status":    string(scraper.JobStatusCompleted),
		"timestamp": w.clock.Now().Format(time.RFC3339),
	}
	if _, err := w.publisher.Publish(ctx, w.cfg.Topic, payload); err != nil {
		w.logger.Warn("publish completion event",
			zap.String("job_id", job.ID),
			zap.Error(err),
		)
	}
}
