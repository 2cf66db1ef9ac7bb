package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dataintel/company-scraper/internal/config"
	"github.com/dataintel/company-scraper/internal/extract"
	"github.com/dataintel/company-scraper/internal/metrics"
	"github.com/dataintel/company-scraper/internal/orchestrator"
	"github.com/dataintel/company-scraper/internal/scraper"
	memstore "github.com/dataintel/company-scraper/internal/storage/memory"
	"github.com/dataintel/company-scraper/internal/worker"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakeIDs struct{ n int }

func (f *fakeIDs) NewID() (string, error) {
	f.n++
	return fmt.Sprintf("job-%d", f.n), nil
}

type fakeHasher struct{}

func (fakeHasher) Hash([]byte) (string, error) { return "hash", nil }

type fakeFetcher struct {
	failURLs map[string]bool
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (scraper.Page, error) {
	if f.failURLs[url] {
		return scraper.Page{}, fmt.Errorf("fetch %s: connection refused", url)
	}
	return scraper.Page{
		URL:     url,
		Content: "Acme Corp\nContact hr@acme.test",
		Metadata: scraper.PageMetadata{
			Title:     "Acme",
			SourceURL: url,
			Extra:     map[string]any{},
		},
	}, nil
}

type testEnv struct {
	server  *Server
	jobs    *memstore.JobStore
	results *memstore.ResultStore
}

func newTestEnv(t *testing.T, cfg config.Config, fetcher scraper.Fetcher) *testEnv {
	t.Helper()
	jobs := memstore.NewJobStore()
	results := memstore.NewResultStore()
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	if fetcher == nil {
		fetcher = &fakeFetcher{}
	}
	w := worker.New(
		jobs,
		results,
		memstore.NewBlobStore(),
		nil,
		fetcher,
		extract.New(clock),
		fakeHasher{},
		clock,
		&fakeIDs{},
		worker.Config{Provider: "site"},
		nil,
	)
	orch := orchestrator.New(jobs, w, orchestrator.Config{}, nil)
	srv := NewServer(jobs, results, orch, &fakeIDs{}, clock, cfg, nil)
	return &testEnv{server: srv, jobs: jobs, results: results}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_SubmitAndGetJob(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{}, nil)

	rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/jobs", map[string]string{
		"url":     "https://acme.test",
		"user_id": "user-1",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var created map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "job-1", created["job_id"])
	require.Equal(t, "pending", created["status"])

	rec = doJSON(t, env.server.Handler(), http.MethodGet, "/v1/jobs/job-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Job scraper.Job `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "https://acme.test", got.Job.URL)
	require.Equal(t, scraper.JobStatusPending, got.Job.Status)
}

func TestServer_SubmitJobValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{}, nil)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing url", map[string]string{"user_id": "user-1"}},
		{"relative url", map[string]string{"url": "/about", "user_id": "user-1"}},
		{"bad scheme", map[string]string{"url": "ftp://acme.test", "user_id": "user-1"}},
		{"missing user", map[string]string{"url": "https://acme.test"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/jobs", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestServer_GetJobNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{}, nil)

	rec := doJSON(t, env.server.Handler(), http.MethodGet, "/v1/jobs/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RunBatchAndFetchResult(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{}, nil)

	rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/jobs", map[string]string{
		"url":     "https://acme.test",
		"user_id": "user-1",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(t, env.server.Handler(), http.MethodPost, "/v1/batches/run", map[string]any{
		"concurrency": 2,
		"timeout_ms":  5000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var summary orchestrator.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, 1, summary.Processed)
	require.Equal(t, 1, summary.Completed)
	require.Equal(t, 0, summary.Failed)

	rec = doJSON(t, env.server.Handler(), http.MethodGet, "/v1/jobs/job-1/result", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result scraper.JobResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, scraper.JobStatusCompleted, result.Job.Status)
	require.Len(t, result.Results, 1)
	require.Contains(t, result.Results[0].Extracted.Emails, "hr@acme.test")
}

func TestServer_RunBatchEmptyBody(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/batches/run", nil)
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary orchestrator.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, 0, summary.Processed)
}

func TestServer_RunBatchReportsFailures(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{failURLs: map[string]bool{"https://down.test": true}}
	env := newTestEnv(t, config.Config{}, fetcher)

	for _, u := range []string{"https://acme.test", "https://down.test"} {
		rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/jobs", map[string]string{
			"url":     u,
			"user_id": "user-1",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
	}

	rec := doJSON(t, env.server.Handler(), http.MethodPost, "/v1/batches/run", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	var summary orchestrator.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Equal(t, 2, summary.Processed)
	require.Equal(t, 1, summary.Completed)
	require.Equal(t, 1, summary.Failed)
}

func TestServer_APIKeyMiddleware(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.Auth.Enabled = true
	cfg.Auth.APIKey = "secret"
	env := newTestEnv(t, cfg, nil)

	// Probes stay open.
	rec := doJSON(t, env.server.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, env.server.Handler(), http.MethodGet, "/v1/jobs/any", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/jobs/any", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Probes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, config.Config{}, nil)

	rec := doJSON(t, env.server.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doJSON(t, env.server.Handler(), http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, env.server.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}
