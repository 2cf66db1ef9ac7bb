package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dataintel/company-scraper/internal/scraper"
	memstore "github.com/dataintel/company-scraper/internal/storage/memory"
)

func TestPoller_ProcessesPendingJobs(t *testing.T) {
	t.Parallel()

	jobs := memstore.NewJobStore()
	seedPending(t, jobs, "job-a", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))

	orch, _ := newTestOrchestrator(jobs, &trackingFetcher{}, Config{})
	poller := NewPoller(orch, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		stored, err := jobs.GetJob(context.Background(), "job-a")
		return err == nil && stored.Status == scraper.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}

func TestPoller_StopsOnCancel(t *testing.T) {
	t.Parallel()

	orch, _ := newTestOrchestrator(memstore.NewJobStore(), &trackingFetcher{}, Config{})
	poller := NewPoller(orch, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
