// Package site implements scraper.Fetcher with a direct HTTP fetch using the
// Colly collector, converting the returned HTML into plain text plus the
// metadata subset the extraction engine consumes.
package site

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/dataintel/company-scraper/internal/scraper"
)

// maxContentChars bounds how much page text is carried into extraction and
// storage.
const maxContentChars = 10000

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
	// RPS and Burst configure per-domain rate limiting; RPS <= 0 disables it.
	RPS   float64
	Burst int
}

// Fetcher fetches a single page per call.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	limiter       *domainLimiter
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	c.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		limiter:       newDomainLimiter(cfg.RPS, cfg.Burst),
	}
}

// Fetch executes a single HTTP GET and converts the response into a Page.
// The context bounds the whole call; the collector's request timeout acts as
// a backstop for the network round trip itself.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (scraper.Page, error) {
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return scraper.Page{}, err
	}

	collector := f.baseCollector.Clone()
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		body       []byte
		statusCode int
		fetchErr   error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		statusCode = r.StatusCode
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			statusCode = r.StatusCode
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return scraper.Page{}, fmt.Errorf("fetch %s: %w", rawURL, ctx.Err())
	case visitErr := <-done:
		if fetchErr != nil {
			return scraper.Page{}, fmt.Errorf("fetch %s: %w", rawURL, fetchErr)
		}
		if visitErr != nil {
			return scraper.Page{}, fmt.Errorf("fetch %s: %w", rawURL, visitErr)
		}
	}
	if statusCode >= http.StatusBadRequest {
		return scraper.Page{}, fmt.Errorf("fetch %s: http status %d", rawURL, statusCode)
	}

	html := string(body)
	return scraper.Page{
		URL:     rawURL,
		Content: truncateRunes(pageText(html), maxContentChars),
		Metadata: scraper.PageMetadata{
			Title:       pageTitle(html),
			Description: metaDescription(html),
			SourceURL:   rawURL,
			SiteName:    ogSiteName(html),
			Extra: map[string]any{
				"status_code": statusCode,
				"provider":    "site",
			},
		},
	}, nil
}
