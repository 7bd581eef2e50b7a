package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ejankowski/crawlmark"
	"github.com/ejankowski/crawlmark/crawl"
	"github.com/ejankowski/crawlmark/fs"
	"github.com/ejankowski/crawlmark/zip"
)

// Run executes the run command: submit a job, crawl synchronously, then
// export the results.
func (c *RunCmd) Run(deps *Dependencies) error {
	job := &crawlmark.CrawlJob{
		BaseURL:          c.URL,
		PatternRules:     c.Pattern,
		MaxDepth:         c.Depth,
		RequestDelayMs:   c.Delay,
		MaxConcurrent:    c.Concurrency,
		RemoveNavigation: !c.KeepNav,
		CleanFormatting:  !c.KeepClutter,
		IncludeImages:    c.Images,
	}

	if err := deps.Jobs.CreateJob(deps.Ctx, job); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", crawlmark.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Crawling %s (job %s)\n", c.URL, job.ID)

	engine := newEngine(deps, c.AutoExtract, c.NoJS)
	if err := engine.Run(deps.Ctx, job.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error crawling: %s\n", crawlmark.ErrorMessage(err))
		return err
	}

	results, err := deps.Results.FindResultsByJob(deps.Ctx, job.ID)
	if err != nil {
		return err
	}

	var saved, failed, bytes int
	for _, result := range results {
		if result.Status == crawlmark.ResultSuccess {
			saved++
			bytes += result.ByteSize
		} else {
			failed++
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", crawl.TruncateURL(result.URL, 80), result.ErrorMessage)
		}
	}
	fmt.Fprintf(deps.Stdout, "  Saved %d pages (%s), %d failed\n", saved, crawl.FormatBytes(bytes), failed)

	if c.Out != "" {
		writer := fs.NewWriter(filepath.Dir(c.Out), filepath.Base(c.Out))
		if err := writer.WriteResults(results); err != nil {
			_ = writer.Abort()
			return fmt.Errorf("writing output directory: %w", err)
		}
		if err := writer.Commit(); err != nil {
			return fmt.Errorf("writing output directory: %w", err)
		}
		fmt.Fprintf(deps.Stdout, "  Wrote %s\n", c.Out)
	}

	if c.Zip != "" {
		f, err := os.Create(c.Zip)
		if err != nil {
			return fmt.Errorf("creating archive: %w", err)
		}
		defer f.Close()
		if err := zip.WriteArchive(f, results); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}
		fmt.Fprintf(deps.Stdout, "  Wrote %s\n", c.Zip)
	}

	return nil
}
