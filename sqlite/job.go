package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ejankowski/crawlmark"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ crawlmark.JobService = (*JobService)(nil)

// JobService implements crawlmark.JobService using SQLite.
type JobService struct {
	db *DB
}

// NewJobService creates a new JobService.
func NewJobService(db *DB) *JobService {
	return &JobService{db: db}
}

// CreateJob validates and persists a new crawl job in the pending state.
func (s *JobService) CreateJob(ctx context.Context, job *crawlmark.CrawlJob) error {
	if err := job.Validate(); err != nil {
		return err
	}

	job.ID = uuid.New().String()
	job.Status = crawlmark.JobPending
	job.TotalPages = 0
	job.ProcessedPages = 0
	job.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_jobs (id, base_url, pattern_rules, max_depth, request_delay_ms,
			max_concurrent, remove_navigation, clean_formatting, include_images,
			status, total_pages, processed_pages, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.BaseURL, joinPatterns(job.PatternRules), job.MaxDepth, job.RequestDelayMs,
		job.MaxConcurrent, job.RemoveNavigation, job.CleanFormatting, job.IncludeImages,
		string(job.Status), job.TotalPages, job.ProcessedPages,
		job.CreatedAt.Format(time.RFC3339))

	return err
}

// FindJobByID retrieves a job by ID.
func (s *JobService) FindJobByID(ctx context.Context, id string) (*crawlmark.CrawlJob, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM crawl_jobs
		WHERE id = ?
	`, id)

	job, err := scanJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, crawlmark.Errorf(crawlmark.ENOTFOUND, "job not found")
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// FindJobs retrieves jobs matching the filter, newest first.
func (s *JobService) FindJobs(ctx context.Context, filter crawlmark.JobFilter) ([]*crawlmark.CrawlJob, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + jobColumns + " FROM crawl_jobs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*crawlmark.CrawlJob
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// UpdateJob applies a partial update to an existing job.
func (s *JobService) UpdateJob(ctx context.Context, id string, upd crawlmark.JobUpdate) (*crawlmark.CrawlJob, error) {
	job, err := s.FindJobByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil {
		job.Status = *upd.Status
	}
	if upd.TotalPages != nil {
		job.TotalPages = *upd.TotalPages
	}
	if upd.ProcessedPages != nil {
		job.ProcessedPages = *upd.ProcessedPages
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE crawl_jobs
		SET status = ?, total_pages = ?, processed_pages = ?
		WHERE id = ?
	`, string(job.Status), job.TotalPages, job.ProcessedPages, id)

	if err != nil {
		return nil, err
	}

	return job, nil
}

const jobColumns = `id, base_url, pattern_rules, max_depth, request_delay_ms,
	max_concurrent, remove_navigation, clean_formatting, include_images,
	status, total_pages, processed_pages, created_at`

// scanJob reads one job row via the given scan function.
func scanJob(scan func(dest ...any) error) (*crawlmark.CrawlJob, error) {
	var job crawlmark.CrawlJob
	var patterns, status, createdAt string

	if err := scan(&job.ID, &job.BaseURL, &patterns, &job.MaxDepth, &job.RequestDelayMs,
		&job.MaxConcurrent, &job.RemoveNavigation, &job.CleanFormatting, &job.IncludeImages,
		&status, &job.TotalPages, &job.ProcessedPages, &createdAt); err != nil {
		return nil, err
	}

	job.PatternRules = splitPatterns(patterns)
	job.Status = crawlmark.JobStatus(status)

	var err error
	job.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// joinPatterns stores the ordered rule list as newline-separated text.
// Literal newlines inside a rule are written as \n in regexp syntax, so the
// separator is unambiguous.
func joinPatterns(rules []string) string {
	return strings.Join(rules, "\n")
}

func splitPatterns(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}
