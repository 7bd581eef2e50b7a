package sqlite

import (
	"context"
	"time"

	"github.com/ejankowski/crawlmark"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ crawlmark.ResultService = (*ResultService)(nil)

// ResultService implements crawlmark.ResultService using SQLite.
type ResultService struct {
	db *DB
}

// NewResultService creates a new ResultService.
func NewResultService(db *DB) *ResultService {
	return &ResultService{db: db}
}

// CreateResult validates and persists a crawl result.
func (s *ResultService) CreateResult(ctx context.Context, result *crawlmark.CrawlResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	result.ID = uuid.New().String()
	result.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_results (id, job_id, url, title, raw_content, markdown_content,
			content_hash, byte_size, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.ID, result.JobID, result.URL, result.Title, result.RawContent,
		result.MarkdownContent, result.ContentHash, result.ByteSize,
		string(result.Status), result.ErrorMessage, result.CreatedAt.Format(time.RFC3339))

	return err
}

// FindResultsByJob retrieves all results for a job in insertion order.
func (s *ResultService) FindResultsByJob(ctx context.Context, jobID string) ([]*crawlmark.CrawlResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, url, title, raw_content, markdown_content,
			content_hash, byte_size, status, error_message, created_at
		FROM crawl_results
		WHERE job_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*crawlmark.CrawlResult
	for rows.Next() {
		var result crawlmark.CrawlResult
		var status, createdAt string

		if err := rows.Scan(&result.ID, &result.JobID, &result.URL, &result.Title,
			&result.RawContent, &result.MarkdownContent, &result.ContentHash,
			&result.ByteSize, &status, &result.ErrorMessage, &createdAt); err != nil {
			return nil, err
		}

		result.Status = crawlmark.ResultStatus(status)
		result.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		results = append(results, &result)
	}

	return results, rows.Err()
}
