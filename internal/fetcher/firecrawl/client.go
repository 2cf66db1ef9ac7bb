// Package firecrawl implements scraper.Fetcher against the Firecrawl scrape
// API, which renders the page server side and returns markdown plus page
// metadata.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dataintel/company-scraper/internal/scraper"
)

const defaultBaseURL = "https://api.firecrawl.dev"

// Config holds client configuration.
type Config struct {
	// APIKey authenticates against the service. Required.
	APIKey string
	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string
	Timeout time.Duration
}

// Client is a Firecrawl scrape API client.
type Client struct {
	cfg    Config
	client *http.Client
}

// New builds a Client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("firecrawl: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			SourceURL   string `json:"sourceURL"`
			OGSiteName  string `json:"ogSiteName"`
			StatusCode  int    `json:"statusCode"`
		} `json:"metadata"`
	} `json:"data"`
}

// Fetch scrapes a single URL and maps the response into a Page.
func (c *Client) Fetch(ctx context.Context, rawURL string) (scraper.Page, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:             rawURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return scraper.Page{}, fmt.Errorf("marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return scraper.Page{}, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return scraper.Page{}, fmt.Errorf("scrape %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return scraper.Page{}, fmt.Errorf("scrape %s: status %d: %s", rawURL, resp.StatusCode, string(respBody))
	}

	var sr scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return scraper.Page{}, fmt.Errorf("decode scrape response: %w", err)
	}
	if !sr.Success {
		msg := sr.Error
		if msg == "" {
			msg = "scrape was not successful"
		}
		return scraper.Page{}, fmt.Errorf("scrape %s: %s", rawURL, msg)
	}

	sourceURL := sr.Data.Metadata.SourceURL
	if sourceURL == "" {
		sourceURL = rawURL
	}
	return scraper.Page{
		URL:     rawURL,
		Content: sr.Data.Markdown,
		Metadata: scraper.PageMetadata{
			Title:       sr.Data.Metadata.Title,
			Description: sr.Data.Metadata.Description,
			SourceURL:   sourceURL,
			SiteName:    sr.Data.Metadata.OGSiteName,
			Extra: map[string]any{
				"status_code": sr.Data.Metadata.StatusCode,
				"provider":    "firecrawl",
			},
		},
	}, nil
}
