// Package crawl provides the crawl engine: breadth-limited URL discovery,
// concurrency-bounded fetching behind a rate gate, content extraction, and
// the job state machine that persists progress write-through to the job
// store.
package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/ejankowski/crawlmark"
)

// Engine drives a crawl job through its lifecycle:
// pending → running → {completed | error}.
//
// A single render engine instance (from NewFetcher) is shared across all
// fetches within a job and released on every exit path. Per-page failures
// are recorded as error results and never abort the job; only an engine
// start failure or a discovery-phase error is fatal.
type Engine struct {
	Jobs      crawlmark.JobService
	Results   crawlmark.ResultService
	Links     crawlmark.LinkExtractor
	Extractor crawlmark.Extractor
	Converter crawlmark.Converter

	// NewFetcher opens the shared render engine for one job.
	NewFetcher func() (crawlmark.Fetcher, error)

	// Logger records store write failures and job transitions.
	// Defaults to slog.Default.
	Logger *slog.Logger
}

// Start launches the job in the background and returns a handle channel
// that receives the terminal error (nil on completion) and closes. Callers
// observe progress by polling the job store.
func (e *Engine) Start(ctx context.Context, jobID string) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- e.Run(ctx, jobID)
	}()
	return done
}

// Run executes the job synchronously. Once the job is running, errors no
// longer cross the job boundary as panics or partial state: a fatal error
// marks the job `error` with ProcessedPages reset to 0 and is also returned
// for the caller holding the handle.
func (e *Engine) Run(ctx context.Context, jobID string) error {
	job, err := e.Jobs.FindJobByID(ctx, jobID)
	if err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return err
	}
	patterns, err := CompilePatterns(job.PatternRules)
	if err != nil {
		return err
	}

	e.setStatus(ctx, job.ID, crawlmark.JobRunning)

	fetcher, err := e.NewFetcher()
	if err != nil {
		e.markFailed(ctx, job.ID)
		return crawlmark.Errorf(crawlmark.EINTERNAL, "starting render engine: %v", err)
	}
	defer fetcher.Close()

	gate := NewGate(job.MaxConcurrent, job.RequestDelay())

	discovered, err := Discover(ctx, fetcher, e.Links, gate, DiscoverConfig{
		BaseURL:       job.BaseURL,
		Patterns:      patterns,
		MaxDepth:      job.MaxDepth,
		MaxConcurrent: job.MaxConcurrent,
	})
	if err != nil {
		e.markFailed(ctx, job.ID)
		return fmt.Errorf("url discovery: %w", err)
	}

	total := len(discovered)
	e.updateJob(ctx, job.ID, crawlmark.JobUpdate{TotalPages: &total})

	opts := crawlmark.ExtractOptions{
		RemoveNavigation: job.RemoveNavigation,
		CleanFormatting:  job.CleanFormatting,
		IncludeImages:    job.IncludeImages,
	}

	// Extraction is strictly sequential in discovered order; the gate
	// still enforces the inter-request delay before each fetch.
	processed := 0
	for _, pageURL := range discovered {
		result, err := e.processPage(ctx, fetcher, gate, opts, job.ID, pageURL)
		if err != nil {
			e.markFailed(ctx, job.ID)
			return err
		}

		if err := e.Results.CreateResult(ctx, result); err != nil {
			e.logger().Error("result write failed", "job", job.ID, "url", pageURL, "err", err)
		}

		processed++
		e.updateJob(ctx, job.ID, crawlmark.JobUpdate{ProcessedPages: &processed})
	}

	e.setStatus(ctx, job.ID, crawlmark.JobCompleted)
	return nil
}

// processPage fetches and extracts one URL, turning per-page failures into
// error results. The returned error is non-nil only for fatal conditions
// (context cancellation).
func (e *Engine) processPage(
	ctx context.Context,
	fetcher crawlmark.Fetcher,
	gate crawlmark.Gate,
	opts crawlmark.ExtractOptions,
	jobID, pageURL string,
) (*crawlmark.CrawlResult, error) {
	if err := gate.Acquire(ctx); err != nil {
		return nil, err
	}
	html, err := fetcher.Fetch(ctx, pageURL)
	gate.Release()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return errorResult(jobID, pageURL, err), nil
	}

	extracted, err := e.Extractor.Extract(html, opts)
	if err != nil {
		return errorResult(jobID, pageURL, err), nil
	}

	markdown, err := e.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return errorResult(jobID, pageURL, err), nil
	}

	return &crawlmark.CrawlResult{
		JobID:           jobID,
		URL:             pageURL,
		Title:           extracted.Title,
		RawContent:      extracted.ContentHTML,
		MarkdownContent: markdown,
		ContentHash:     computeHash(markdown),
		ByteSize:        len(markdown),
		Status:          crawlmark.ResultSuccess,
	}, nil
}

func errorResult(jobID, url string, err error) *crawlmark.CrawlResult {
	return &crawlmark.CrawlResult{
		JobID:        jobID,
		URL:          url,
		Status:       crawlmark.ResultError,
		ErrorMessage: err.Error(),
	}
}

// markFailed moves the job to the error state with ProcessedPages reset to
// 0 to signal incomplete data. TotalPages is left as-is.
func (e *Engine) markFailed(ctx context.Context, jobID string) {
	status := crawlmark.JobError
	zero := 0
	e.updateJob(ctx, jobID, crawlmark.JobUpdate{Status: &status, ProcessedPages: &zero})
}

func (e *Engine) setStatus(ctx context.Context, jobID string, status crawlmark.JobStatus) {
	e.updateJob(ctx, jobID, crawlmark.JobUpdate{Status: &status})
}

// updateJob persists a state mutation synchronously. Store failures are
// logged and do not roll back in-memory progress. The write is detached
// from cancellation so the error state still lands when a context-canceled
// job is marked failed.
func (e *Engine) updateJob(ctx context.Context, jobID string, upd crawlmark.JobUpdate) {
	if _, err := e.Jobs.UpdateJob(context.WithoutCancel(ctx), jobID, upd); err != nil {
		e.logger().Error("job update failed", "job", jobID, "err", err)
	}
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// computeHash computes a hash of the content using xxhash.
func computeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
