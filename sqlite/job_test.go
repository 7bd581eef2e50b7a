package sqlite_test

import (
	"context"
	"testing"

	"github.com/ejankowski/crawlmark"
	"github.com/ejankowski/crawlmark/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob() *crawlmark.CrawlJob {
	return &crawlmark.CrawlJob{
		BaseURL:          "https://example.com",
		PatternRules:     []string{`.*/blog/.*`, `.*/docs/.*`},
		MaxDepth:         2,
		RequestDelayMs:   500,
		MaxConcurrent:    3,
		RemoveNavigation: true,
		CleanFormatting:  true,
	}
}

func TestJobService_CreateJob(t *testing.T) {
	t.Parallel()

	t.Run("creates job with generated ID in pending state", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewJobService(setupTestDB(t))
		ctx := context.Background()

		job := testJob()
		require.NoError(t, svc.CreateJob(ctx, job))

		assert.NotEmpty(t, job.ID)
		assert.Equal(t, crawlmark.JobPending, job.Status)
		assert.Zero(t, job.TotalPages)
		assert.Zero(t, job.ProcessedPages)
		assert.False(t, job.CreatedAt.IsZero())
	})

	t.Run("resets counters supplied by the caller", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewJobService(setupTestDB(t))
		ctx := context.Background()

		job := testJob()
		job.Status = crawlmark.JobRunning
		job.TotalPages = 99
		require.NoError(t, svc.CreateJob(ctx, job))

		assert.Equal(t, crawlmark.JobPending, job.Status)
		assert.Zero(t, job.TotalPages)
	})

	t.Run("returns EINVALID for a job that fails validation", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewJobService(setupTestDB(t))

		job := testJob()
		job.MaxDepth = 99

		err := svc.CreateJob(context.Background(), job)
		require.Error(t, err)
		assert.Equal(t, crawlmark.EINVALID, crawlmark.ErrorCode(err))
	})
}

func TestJobService_FindJobByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips all fields", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewJobService(setupTestDB(t))
		ctx := context.Background()

		job := testJob()
		require.NoError(t, svc.CreateJob(ctx, job))

		found, err := svc.FindJobByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, found.ID)
		assert.Equal(t, job.BaseURL, found.BaseURL)
		assert.Equal(t, []string{`.*/blog/.*`, `.*/docs/.*`}, found.PatternRules)
		assert.Equal(t, job.MaxDepth, found.MaxDepth)
		assert.Equal(t, job.RequestDelayMs, found.RequestDelayMs)
		assert.Equal(t, job.MaxConcurrent, found.MaxConcurrent)
		assert.True(t, found.RemoveNavigation)
		assert.True(t, found.CleanFormatting)
		assert.False(t, found.IncludeImages)
		assert.Equal(t, crawlmark.JobPending, found.Status)
	})

	t.Run("returns ENOTFOUND when missing", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewJobService(setupTestDB(t))

		_, err := svc.FindJobByID(context.Background(), "nonexistent-id")
		require.Error(t, err)
		assert.Equal(t, crawlmark.ENOTFOUND, crawlmark.ErrorCode(err))
	})
}

func TestJobService_FindJobs(t *testing.T) {
	t.Parallel()

	t.Run("filters by status", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewJobService(db)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			require.NoError(t, svc.CreateJob(ctx, testJob()))
		}
		job := testJob()
		require.NoError(t, svc.CreateJob(ctx, job))
		running := crawlmark.JobRunning
		_, err := svc.UpdateJob(ctx, job.ID, crawlmark.JobUpdate{Status: &running})
		require.NoError(t, err)

		jobs, err := svc.FindJobs(ctx, crawlmark.JobFilter{Status: &running})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, job.ID, jobs[0].ID)

		all, err := svc.FindJobs(ctx, crawlmark.JobFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewJobService(setupTestDB(t))
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			require.NoError(t, svc.CreateJob(ctx, testJob()))
		}

		jobs, err := svc.FindJobs(ctx, crawlmark.JobFilter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, jobs, 2)
	})
}

func TestJobService_UpdateJob(t *testing.T) {
	t.Parallel()

	t.Run("applies a partial update", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewJobService(setupTestDB(t))
		ctx := context.Background()

		job := testJob()
		require.NoError(t, svc.CreateJob(ctx, job))

		running := crawlmark.JobRunning
		total := 12
		updated, err := svc.UpdateJob(ctx, job.ID, crawlmark.JobUpdate{Status: &running, TotalPages: &total})
		require.NoError(t, err)
		assert.Equal(t, crawlmark.JobRunning, updated.Status)
		assert.Equal(t, 12, updated.TotalPages)
		assert.Zero(t, updated.ProcessedPages, "untouched field keeps its value")

		found, err := svc.FindJobByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, crawlmark.JobRunning, found.Status)
		assert.Equal(t, 12, found.TotalPages)
	})

	t.Run("returns ENOTFOUND for an unknown job", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewJobService(setupTestDB(t))

		status := crawlmark.JobRunning
		_, err := svc.UpdateJob(context.Background(), "nonexistent-id", crawlmark.JobUpdate{Status: &status})
		require.Error(t, err)
		assert.Equal(t, crawlmark.ENOTFOUND, crawlmark.ErrorCode(err))
	})
}
