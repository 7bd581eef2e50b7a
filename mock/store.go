package mock

import (
	"context"

	"github.com/ejankowski/crawlmark"
)

var _ crawlmark.JobService = (*JobService)(nil)

// JobService is a mock implementation of crawlmark.JobService.
type JobService struct {
	CreateJobFn   func(ctx context.Context, job *crawlmark.CrawlJob) error
	FindJobByIDFn func(ctx context.Context, id string) (*crawlmark.CrawlJob, error)
	FindJobsFn    func(ctx context.Context, filter crawlmark.JobFilter) ([]*crawlmark.CrawlJob, error)
	UpdateJobFn   func(ctx context.Context, id string, upd crawlmark.JobUpdate) (*crawlmark.CrawlJob, error)
}

func (s *JobService) CreateJob(ctx context.Context, job *crawlmark.CrawlJob) error {
	return s.CreateJobFn(ctx, job)
}

func (s *JobService) FindJobByID(ctx context.Context, id string) (*crawlmark.CrawlJob, error) {
	return s.FindJobByIDFn(ctx, id)
}

func (s *JobService) FindJobs(ctx context.Context, filter crawlmark.JobFilter) ([]*crawlmark.CrawlJob, error) {
	return s.FindJobsFn(ctx, filter)
}

func (s *JobService) UpdateJob(ctx context.Context, id string, upd crawlmark.JobUpdate) (*crawlmark.CrawlJob, error) {
	return s.UpdateJobFn(ctx, id, upd)
}

var _ crawlmark.ResultService = (*ResultService)(nil)

// ResultService is a mock implementation of crawlmark.ResultService.
type ResultService struct {
	CreateResultFn     func(ctx context.Context, result *crawlmark.CrawlResult) error
	FindResultsByJobFn func(ctx context.Context, jobID string) ([]*crawlmark.CrawlResult, error)
}

func (s *ResultService) CreateResult(ctx context.Context, result *crawlmark.CrawlResult) error {
	return s.CreateResultFn(ctx, result)
}

func (s *ResultService) FindResultsByJob(ctx context.Context, jobID string) ([]*crawlmark.CrawlResult, error) {
	return s.FindResultsByJobFn(ctx, jobID)
}
