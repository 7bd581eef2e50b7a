package crawlmark

import (
	"context"
	"time"
)

// ResultStatus indicates whether a page was extracted successfully.
type ResultStatus string

// Result states.
const (
	ResultSuccess ResultStatus = "success"
	ResultError   ResultStatus = "error"
)

// CrawlResult records the outcome of one attempted page. Exactly one result
// is created per discovered URL; results are append-only and never mutated
// after creation.
type CrawlResult struct {
	ID    string `json:"id"`
	JobID string `json:"jobId"`
	URL   string `json:"url"`

	// Populated on success only.
	Title           string `json:"title,omitempty"`
	RawContent      string `json:"rawContent,omitempty"`
	MarkdownContent string `json:"markdownContent,omitempty"`
	ContentHash     string `json:"contentHash,omitempty"`

	// ByteSize is the length of MarkdownContent, 0 for error results.
	ByteSize int `json:"byteSize"`

	Status       ResultStatus `json:"status"`
	ErrorMessage string       `json:"errorMessage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the result contains invalid fields.
func (r *CrawlResult) Validate() error {
	if r.JobID == "" {
		return Errorf(EINVALID, "result job ID required")
	}
	if r.URL == "" {
		return Errorf(EINVALID, "result URL required")
	}
	if r.Status != ResultSuccess && r.Status != ResultError {
		return Errorf(EINVALID, "result status must be %q or %q", ResultSuccess, ResultError)
	}
	return nil
}

// ResultService represents a service for recording and listing per-page
// crawl results.
type ResultService interface {
	// CreateResult appends a new result to its owning job.
	CreateResult(ctx context.Context, result *CrawlResult) error

	// FindResultsByJob retrieves all results for a job in creation order.
	FindResultsByJob(ctx context.Context, jobID string) ([]*CrawlResult, error)
}
