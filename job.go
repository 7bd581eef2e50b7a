package crawlmark

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// JobStatus represents the lifecycle state of a crawl job.
// Transitions are monotonic: pending → running → {completed | error}.
type JobStatus string

// Job lifecycle states.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobError     JobStatus = "error"
)

// Submission bounds for crawl job configuration.
const (
	MinDepth      = 1
	MaxDepth      = 10
	MinDelayMs    = 100
	MaxDelayMs    = 5000
	MinConcurrent = 1
	MaxConcurrent = 5
)

// CrawlJob represents a single crawl: its configuration, lifecycle state,
// and progress counters. The engine mutates status, TotalPages, and
// ProcessedPages in place as the crawl proceeds; ProcessedPages never
// exceeds TotalPages once TotalPages is set.
type CrawlJob struct {
	ID string `json:"id"`

	// Configuration, fixed at submission.
	BaseURL          string   `json:"baseUrl"`
	PatternRules     []string `json:"patternRules"`
	MaxDepth         int      `json:"maxDepth"`
	RequestDelayMs   int      `json:"requestDelayMs"`
	MaxConcurrent    int      `json:"maxConcurrent"`
	RemoveNavigation bool     `json:"removeNavigation"`
	CleanFormatting  bool     `json:"cleanFormatting"`
	IncludeImages    bool     `json:"includeImages"`

	// Progress, owned by the engine once the job starts.
	Status         JobStatus `json:"status"`
	TotalPages     int       `json:"totalPages"`
	ProcessedPages int       `json:"processedPages"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an EINVALID error if the job configuration is out of
// bounds. It is called before the engine ever runs.
func (j *CrawlJob) Validate() error {
	u, err := url.Parse(j.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return Errorf(EINVALID, "base URL must be a valid absolute URL")
	}
	if len(j.PatternRules) == 0 {
		return Errorf(EINVALID, "at least one pattern rule required")
	}
	for _, rule := range j.PatternRules {
		if strings.TrimSpace(rule) == "" {
			return Errorf(EINVALID, "pattern rules must be non-empty")
		}
		if _, err := regexp.Compile(rule); err != nil {
			return Errorf(EINVALID, "invalid pattern %q: %v", rule, err)
		}
	}
	if j.MaxDepth < MinDepth || j.MaxDepth > MaxDepth {
		return Errorf(EINVALID, "max depth must be between %d and %d", MinDepth, MaxDepth)
	}
	if j.RequestDelayMs < MinDelayMs || j.RequestDelayMs > MaxDelayMs {
		return Errorf(EINVALID, "request delay must be between %d and %d ms", MinDelayMs, MaxDelayMs)
	}
	if j.MaxConcurrent < MinConcurrent || j.MaxConcurrent > MaxConcurrent {
		return Errorf(EINVALID, "max concurrent must be between %d and %d", MinConcurrent, MaxConcurrent)
	}
	return nil
}

// RequestDelay returns the configured inter-request delay as a Duration.
func (j *CrawlJob) RequestDelay() time.Duration {
	return time.Duration(j.RequestDelayMs) * time.Millisecond
}

// ValidatePattern reports whether a single pattern rule compiles as a
// regular expression. The returned message is the compiler's error text,
// empty when the pattern is valid.
func ValidatePattern(pattern string) (valid bool, message string) {
	if _, err := regexp.Compile(pattern); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// JobService represents a service for managing crawl jobs.
// The engine calls it synchronously at every state transition; observers
// polling a job see ProcessedPages increase monotonically.
type JobService interface {
	// CreateJob persists a new job in the pending state.
	CreateJob(ctx context.Context, job *CrawlJob) error

	// FindJobByID retrieves a job by ID.
	// Returns ENOTFOUND if the job does not exist.
	FindJobByID(ctx context.Context, id string) (*CrawlJob, error)

	// FindJobs retrieves jobs matching the filter.
	FindJobs(ctx context.Context, filter JobFilter) ([]*CrawlJob, error)

	// UpdateJob applies the non-nil fields of upd to an existing job.
	// Returns ENOTFOUND if the job does not exist.
	UpdateJob(ctx context.Context, id string, upd JobUpdate) (*CrawlJob, error)
}

// JobFilter represents a filter for FindJobs.
type JobFilter struct {
	ID     *string    `json:"id"`
	Status *JobStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// JobUpdate represents the fields the engine mutates on a running job.
type JobUpdate struct {
	Status         *JobStatus `json:"status"`
	TotalPages     *int       `json:"totalPages"`
	ProcessedPages *int       `json:"processedPages"`
}
