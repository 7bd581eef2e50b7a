// Package zip packages successful crawl results into a zip archive of
// Markdown documents.
package zip

import (
	archivezip "archive/zip"
	"fmt"
	"io"

	"github.com/ejankowski/crawlmark"
	"github.com/ejankowski/crawlmark/crawl"
)

// WriteArchive writes every successful result as a .md entry to w. Error
// results are skipped. Entry names come from the sanitized title, falling
// back to the sanitized URL, with a numeric suffix on collisions.
func WriteArchive(w io.Writer, results []*crawlmark.CrawlResult) error {
	zw := archivezip.NewWriter(w)

	used := make(map[string]int)
	for _, result := range results {
		if result.Status != crawlmark.ResultSuccess {
			continue
		}

		entry, err := zw.Create(entryName(result, used))
		if err != nil {
			return fmt.Errorf("creating archive entry for %s: %w", result.URL, err)
		}
		if _, err := entry.Write([]byte(result.MarkdownContent)); err != nil {
			return fmt.Errorf("writing archive entry for %s: %w", result.URL, err)
		}
	}

	return zw.Close()
}

// entryName derives a unique archive file name for a result.
func entryName(result *crawlmark.CrawlResult, used map[string]int) string {
	base := crawl.SanitizeFilename(result.Title)
	if base == "" {
		base = crawl.SanitizeFilename(result.URL)
	}
	if base == "" {
		base = "page"
	}

	used[base]++
	if n := used[base]; n > 1 {
		return fmt.Sprintf("%s_%d.md", base, n-1)
	}
	return base + ".md"
}
