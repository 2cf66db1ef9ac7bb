package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dataintel/company-scraper/internal/scraper"
)

// ResultStore writes scraped_data rows. Results are insert-only; a row is
// never updated after the fact.
type ResultStore struct {
	pool dbPool
}

// NewResultStore constructs a ResultStore on an existing pool.
func NewResultStore(pool dbPool) *ResultStore {
	return &ResultStore{pool: pool}
}

// InsertResult persists one result row for a successfully processed job.
func (s *ResultStore) InsertResult(ctx context.Context, record scraper.ResultRecord) error {
	if record.ID == "" {
		return fmt.Errorf("record id is required")
	}
	extractedJSON, err := json.Marshal(record.Extracted)
	if err != nil {
		return fmt.Errorf("marshal extracted data: %w", err)
	}
	metadataJSON, err := json.Marshal(normalizeMetadata(record.Metadata))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO scraped_data (id, job_id, user_id, url, title, description, content, extracted, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		record.ID, record.JobID, record.UserID, record.URL,
		record.Title, record.Description, record.Content,
		extractedJSON, metadataJSON, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListResults returns the result rows for a job in insertion order.
func (s *ResultStore) ListResults(ctx context.Context, jobID string) ([]scraper.ResultRecord, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, job_id, user_id, url, title, description, content, extracted, metadata, created_at
FROM scraped_data WHERE job_id = $1 ORDER BY created_at ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var records []scraper.ResultRecord
	for rows.Next() {
		record, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return records, nil
}

func scanResult(rows pgx.Rows) (scraper.ResultRecord, error) {
	var (
		record        scraper.ResultRecord
		extractedJSON []byte
		metadataJSON  []byte
		createdAt     time.Time
	)
	if err := rows.Scan(
		&record.ID, &record.JobID, &record.UserID, &record.URL,
		&record.Title, &record.Description, &record.Content,
		&extractedJSON, &metadataJSON, &createdAt,
	); err != nil {
		return scraper.ResultRecord{}, err
	}
	if len(extractedJSON) > 0 {
		if err := json.Unmarshal(extractedJSON, &record.Extracted); err != nil {
			return scraper.ResultRecord{}, fmt.Errorf("unmarshal extracted data: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
			return scraper.ResultRecord{}, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	record.CreatedAt = createdAt
	return record, nil
}

func normalizeMetadata(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
