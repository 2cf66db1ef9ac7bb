// Package scraper defines core types shared across subsystems.
package scraper

import "time"

// JobStatus represents the lifecycle state of a scraping job.
type JobStatus string

// Job status values persisted in the job store.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether no further transitions may leave the status.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job represents the metadata persisted for each submitted URL.
type Job struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	UserID       string     `json:"user_id"`
	Status       JobStatus  `json:"status"`
	TotalPages   int        `json:"total_pages"`
	ScrapedPages int        `json:"scraped_pages"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// PageMetadata is the narrow, typed subset of scrape metadata the engine
// consumes. Everything else a provider returns rides in Extra untouched.
type PageMetadata struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	SourceURL   string         `json:"source_url,omitempty"`
	SiteName    string         `json:"site_name,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Page is the result returned by a Fetcher implementation.
type Page struct {
	URL      string
	Content  string
	Metadata PageMetadata
}

// HRContact pairs an extracted email with the role it was matched under.
type HRContact struct {
	Email    string `json:"email"`
	Position string `json:"position"`
}

// PricePackage captures one pricing entry found in page text.
type PricePackage struct {
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Features []string `json:"features,omitempty"`
}

// CompanyData is the structured entity set produced by the extraction
// engine. Slice fields preserve first-occurrence order; SocialLinks holds at
// most one URL per platform and omits absent platforms entirely.
type CompanyData struct {
	CompanyName     string            `json:"company_name,omitempty"`
	Emails          []string          `json:"emails"`
	PhoneNumbers    []string          `json:"phone_numbers"`
	Addresses       []string          `json:"addresses"`
	SocialLinks     map[string]string `json:"social_links"`
	HRContacts      []HRContact       `json:"hr_contacts"`
	PackagesPricing []PricePackage    `json:"packages_pricing"`
	Services        []string          `json:"services"`
	Industry        string            `json:"industry,omitempty"`
	CompanySize     string            `json:"company_size,omitempty"`
	FoundedYear     string            `json:"founded_year,omitempty"`
}

// ResultRecord is persisted once per successfully processed job.
type ResultRecord struct {
	ID          string         `json:"id"`
	JobID       string         `json:"job_id"`
	UserID      string         `json:"user_id"`
	URL         string         `json:"url"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Content     string         `json:"content,omitempty"`
	Extracted   CompanyData    `json:"extracted"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// JobResult is returned by the API result endpoint.
type JobResult struct {
	Job     Job            `json:"job"`
	Results []ResultRecord `json:"results"`
}
