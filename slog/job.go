// Package slog provides logging decorators for crawlmark services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/ejankowski/crawlmark"
)

// Ensure LoggingJobService implements crawlmark.JobService.
var _ crawlmark.JobService = (*LoggingJobService)(nil)

// LoggingJobService wraps a JobService and logs job lifecycle events,
// giving an operator a trail of state transitions and progress updates.
type LoggingJobService struct {
	next   crawlmark.JobService
	logger *slog.Logger
}

// NewLoggingJobService creates a new LoggingJobService.
func NewLoggingJobService(next crawlmark.JobService, logger *slog.Logger) *LoggingJobService {
	return &LoggingJobService{next: next, logger: logger}
}

// CreateJob logs the submitted job and delegates.
func (s *LoggingJobService) CreateJob(ctx context.Context, job *crawlmark.CrawlJob) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("job created",
			"job", job.ID,
			"base_url", job.BaseURL,
			"patterns", len(job.PatternRules),
			"max_depth", job.MaxDepth,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateJob(ctx, job)
}

// FindJobByID delegates to the wrapped service.
func (s *LoggingJobService) FindJobByID(ctx context.Context, id string) (*crawlmark.CrawlJob, error) {
	return s.next.FindJobByID(ctx, id)
}

// FindJobs delegates to the wrapped service.
func (s *LoggingJobService) FindJobs(ctx context.Context, filter crawlmark.JobFilter) ([]*crawlmark.CrawlJob, error) {
	return s.next.FindJobs(ctx, filter)
}

// UpdateJob logs state transitions and progress, then delegates.
func (s *LoggingJobService) UpdateJob(ctx context.Context, id string, upd crawlmark.JobUpdate) (*crawlmark.CrawlJob, error) {
	attrs := []any{"job", id}
	if upd.Status != nil {
		attrs = append(attrs, "status", string(*upd.Status))
	}
	if upd.TotalPages != nil {
		attrs = append(attrs, "total_pages", *upd.TotalPages)
	}
	if upd.ProcessedPages != nil {
		attrs = append(attrs, "processed_pages", *upd.ProcessedPages)
	}
	s.logger.Info("job updated", attrs...)

	return s.next.UpdateJob(ctx, id, upd)
}
