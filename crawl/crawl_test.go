package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ejankowski/crawlmark"
	"github.com/ejankowski/crawlmark/crawl"
	"github.com/ejankowski/crawlmark/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory job/result store for engine tests. It records
// the sequence of ProcessedPages values so monotonicity can be asserted.
type memStore struct {
	mu               sync.Mutex
	jobs             map[string]*crawlmark.CrawlJob
	results          []*crawlmark.CrawlResult
	processedHistory []int
}

func newMemStore(jobs ...*crawlmark.CrawlJob) *memStore {
	s := &memStore{jobs: make(map[string]*crawlmark.CrawlJob)}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (s *memStore) jobService() *mock.JobService {
	return &mock.JobService{
		FindJobByIDFn: func(_ context.Context, id string) (*crawlmark.CrawlJob, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			job, ok := s.jobs[id]
			if !ok {
				return nil, crawlmark.Errorf(crawlmark.ENOTFOUND, "job not found")
			}
			cp := *job
			return &cp, nil
		},
		UpdateJobFn: func(_ context.Context, id string, upd crawlmark.JobUpdate) (*crawlmark.CrawlJob, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			job, ok := s.jobs[id]
			if !ok {
				return nil, crawlmark.Errorf(crawlmark.ENOTFOUND, "job not found")
			}
			if upd.Status != nil {
				job.Status = *upd.Status
			}
			if upd.TotalPages != nil {
				job.TotalPages = *upd.TotalPages
			}
			if upd.ProcessedPages != nil {
				job.ProcessedPages = *upd.ProcessedPages
				s.processedHistory = append(s.processedHistory, *upd.ProcessedPages)
			}
			cp := *job
			return &cp, nil
		},
	}
}

func (s *memStore) resultService() *mock.ResultService {
	return &mock.ResultService{
		CreateResultFn: func(_ context.Context, result *crawlmark.CrawlResult) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.results = append(s.results, result)
			return nil
		},
		FindResultsByJobFn: func(_ context.Context, jobID string) ([]*crawlmark.CrawlResult, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []*crawlmark.CrawlResult
			for _, r := range s.results {
				if r.JobID == jobID {
					out = append(out, r)
				}
			}
			return out, nil
		},
	}
}

func (s *memStore) job(id string) *crawlmark.CrawlJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.jobs[id]
	return &cp
}

// passthroughPipeline returns extractor and converter mocks that pass the
// fetched payload through untouched.
func passthroughPipeline() (*mock.Extractor, *mock.Converter) {
	extractor := &mock.Extractor{
		ExtractFn: func(html string, _ crawlmark.ExtractOptions) (*crawlmark.ExtractResult, error) {
			return &crawlmark.ExtractResult{Title: "Page", ContentHTML: html}, nil
		},
	}
	converter := &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			return "# " + html, nil
		},
	}
	return extractor, converter
}

func blogJob() *crawlmark.CrawlJob {
	return &crawlmark.CrawlJob{
		ID:             "job-1",
		BaseURL:        "https://example.com",
		PatternRules:   []string{`.*/blog/.*`},
		MaxDepth:       1,
		RequestDelayMs: 100,
		MaxConcurrent:  1,
		Status:         crawlmark.JobPending,
	}
}

func TestEngine_Run_completes_a_job(t *testing.T) {
	t.Parallel()

	store := newMemStore(blogJob())
	site := newSiteFetcher(map[string][]string{
		"https://example.com": {
			"https://example.com/blog/one",
			"https://example.com/about",
			"https://example.com/blog/two",
		},
	})
	extractor, converter := passthroughPipeline()

	engine := &crawl.Engine{
		Jobs:       store.jobService(),
		Results:    store.resultService(),
		Links:      linkExtractor(),
		Extractor:  extractor,
		Converter:  converter,
		NewFetcher: func() (crawlmark.Fetcher, error) { return site.fetcher(), nil },
	}

	require.NoError(t, engine.Run(context.Background(), "job-1"))

	job := store.job("job-1")
	assert.Equal(t, crawlmark.JobCompleted, job.Status)
	assert.Equal(t, 2, job.TotalPages)
	assert.Equal(t, 2, job.ProcessedPages)

	// One result per discovered URL, in discovered order, owned by the job.
	require.Len(t, store.results, job.TotalPages)
	assert.Equal(t, "https://example.com/blog/one", store.results[0].URL)
	assert.Equal(t, "https://example.com/blog/two", store.results[1].URL)
	for _, r := range store.results {
		assert.Equal(t, "job-1", r.JobID)
		assert.Equal(t, crawlmark.ResultSuccess, r.Status)
		assert.Equal(t, len(r.MarkdownContent), r.ByteSize)
		assert.NotEmpty(t, r.ContentHash)
	}

	// ProcessedPages only ever grows and never exceeds TotalPages.
	prev := 0
	for _, p := range store.processedHistory {
		assert.GreaterOrEqual(t, p, prev)
		assert.LessOrEqual(t, p, job.TotalPages)
		prev = p
	}
}

func TestEngine_Run_records_per_page_failures_without_aborting(t *testing.T) {
	t.Parallel()

	store := newMemStore(blogJob())
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			switch url {
			case "https://example.com":
				return "https://example.com/blog/ok\nhttps://example.com/blog/broken", nil
			case "https://example.com/blog/broken":
				return "", crawlmark.Errorf(crawlmark.EUNAVAILABLE, "fetch timed out")
			default:
				return "content", nil
			}
		},
	}
	extractor, converter := passthroughPipeline()

	engine := &crawl.Engine{
		Jobs:       store.jobService(),
		Results:    store.resultService(),
		Links:      linkExtractor(),
		Extractor:  extractor,
		Converter:  converter,
		NewFetcher: func() (crawlmark.Fetcher, error) { return fetcher, nil },
	}

	require.NoError(t, engine.Run(context.Background(), "job-1"))

	job := store.job("job-1")
	assert.Equal(t, crawlmark.JobCompleted, job.Status)
	assert.Equal(t, 2, job.TotalPages)
	assert.Equal(t, 2, job.ProcessedPages)

	require.Len(t, store.results, 2)
	assert.Equal(t, crawlmark.ResultSuccess, store.results[0].Status)
	assert.Equal(t, crawlmark.ResultError, store.results[1].Status)
	assert.Contains(t, store.results[1].ErrorMessage, "fetch timed out")
	assert.Empty(t, store.results[1].MarkdownContent)
	assert.Zero(t, store.results[1].ByteSize)
}

func TestEngine_Run_marks_job_error_when_engine_fails_to_start(t *testing.T) {
	t.Parallel()

	job := blogJob()
	job.ProcessedPages = 0
	store := newMemStore(job)
	extractor, converter := passthroughPipeline()

	engine := &crawl.Engine{
		Jobs:       store.jobService(),
		Results:    store.resultService(),
		Links:      linkExtractor(),
		Extractor:  extractor,
		Converter:  converter,
		NewFetcher: func() (crawlmark.Fetcher, error) { return nil, errors.New("no browser") },
	}

	err := engine.Run(context.Background(), "job-1")
	require.Error(t, err)
	assert.Equal(t, crawlmark.EINTERNAL, crawlmark.ErrorCode(err))

	got := store.job("job-1")
	assert.Equal(t, crawlmark.JobError, got.Status)
	assert.Zero(t, got.ProcessedPages)
	assert.Empty(t, store.results, "a job that never started has no results")
}

func TestEngine_Run_resets_processed_pages_on_fatal_error(t *testing.T) {
	t.Parallel()

	store := newMemStore(blogJob())
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			calls++
			if calls == 1 {
				return "https://example.com/blog/one\nhttps://example.com/blog/two", nil
			}
			// Cancel mid-extraction; the next gate acquire aborts the job.
			cancel()
			return "", crawlmark.Errorf(crawlmark.EUNAVAILABLE, "canceled")
		},
	}
	extractor, converter := passthroughPipeline()

	engine := &crawl.Engine{
		Jobs:       store.jobService(),
		Results:    store.resultService(),
		Links:      linkExtractor(),
		Extractor:  extractor,
		Converter:  converter,
		NewFetcher: func() (crawlmark.Fetcher, error) { return fetcher, nil },
	}

	err := engine.Run(ctx, "job-1")
	require.Error(t, err)

	got := store.job("job-1")
	assert.Equal(t, crawlmark.JobError, got.Status)
	assert.Zero(t, got.ProcessedPages, "processed pages reset to signal incomplete data")
	assert.Equal(t, 2, got.TotalPages, "total pages left as-is")
}

func TestEngine_Run_closes_the_fetcher_on_every_exit_path(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		links *mock.LinkExtractor
	}{
		{"pages discovered", linkExtractor()},
		{
			"no pages discovered",
			&mock.LinkExtractor{ExtractLinksFn: func(_, _, _ string) ([]string, error) {
				return nil, fmt.Errorf("parse failure")
			}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newMemStore(blogJob())
			closed := false
			fetcher := &mock.Fetcher{
				FetchFn: func(_ context.Context, _ string) (string, error) { return "", nil },
				CloseFn: func() error { closed = true; return nil },
			}
			extractor, converter := passthroughPipeline()

			engine := &crawl.Engine{
				Jobs:       store.jobService(),
				Results:    store.resultService(),
				Links:      tc.links,
				Extractor:  extractor,
				Converter:  converter,
				NewFetcher: func() (crawlmark.Fetcher, error) { return fetcher, nil },
			}

			_ = engine.Run(context.Background(), "job-1")
			assert.True(t, closed, "render engine must be released on every exit path")
		})
	}
}

func TestEngine_Run_rejects_invalid_configuration_before_starting(t *testing.T) {
	t.Parallel()

	job := blogJob()
	job.MaxDepth = 0
	store := newMemStore(job)
	extractor, converter := passthroughPipeline()

	engine := &crawl.Engine{
		Jobs:      store.jobService(),
		Results:   store.resultService(),
		Links:     linkExtractor(),
		Extractor: extractor,
		Converter: converter,
		NewFetcher: func() (crawlmark.Fetcher, error) {
			t.Fatal("engine must not start for an invalid job")
			return nil, nil
		},
	}

	err := engine.Run(context.Background(), "job-1")
	assert.Equal(t, crawlmark.EINVALID, crawlmark.ErrorCode(err))
}

func TestEngine_Start_returns_a_completion_handle(t *testing.T) {
	t.Parallel()

	store := newMemStore(blogJob())
	site := newSiteFetcher(map[string][]string{
		"https://example.com": {"https://example.com/blog/one"},
	})
	extractor, converter := passthroughPipeline()

	engine := &crawl.Engine{
		Jobs:       store.jobService(),
		Results:    store.resultService(),
		Links:      linkExtractor(),
		Extractor:  extractor,
		Converter:  converter,
		NewFetcher: func() (crawlmark.Fetcher, error) { return site.fetcher(), nil },
	}

	done := engine.Start(context.Background(), "job-1")
	require.NoError(t, <-done)

	assert.Equal(t, crawlmark.JobCompleted, store.job("job-1").Status)
}

// End-to-end scenario from the blog site shape: one seed fetch, same-site
// links filtered to /blog/, one result per filtered URL.
func TestEngine_Run_blog_scenario(t *testing.T) {
	t.Parallel()

	store := newMemStore(blogJob())
	site := newSiteFetcher(map[string][]string{
		"https://example.com": {
			"https://example.com/blog/post-1",
			"https://example.com/blog/post-2",
			"https://example.com/pricing",
			"https://other-site.com/blog/elsewhere",
		},
	})
	extractor, converter := passthroughPipeline()

	engine := &crawl.Engine{
		Jobs:       store.jobService(),
		Results:    store.resultService(),
		Links:      linkExtractor(),
		Extractor:  extractor,
		Converter:  converter,
		NewFetcher: func() (crawlmark.Fetcher, error) { return site.fetcher(), nil },
	}

	require.NoError(t, engine.Run(context.Background(), "job-1"))

	assert.Equal(t, 1, site.fetches["https://example.com"], "maxDepth=1 fetches only the seed during discovery")

	job := store.job("job-1")
	assert.Equal(t, crawlmark.JobCompleted, job.Status)
	assert.Equal(t, 2, job.TotalPages)

	urls := make([]string, 0, len(store.results))
	for _, r := range store.results {
		urls = append(urls, r.URL)
	}
	assert.Equal(t, []string{"https://example.com/blog/post-1", "https://example.com/blog/post-2"}, urls)
	for _, r := range store.results {
		assert.False(t, strings.Contains(r.URL, "other-site"), "cross-site links are out of scope")
	}
}
