// Package fs exports crawl results as Markdown files on disk.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ejankowski/crawlmark"
	"github.com/ejankowski/crawlmark/crawl"
)

// Writer writes successful results into an output directory with atomic
// update semantics. Files land in a temporary directory first and replace
// the final directory on Commit, so readers never see a half-written
// export.
type Writer struct {
	baseDir string
	name    string
}

// NewWriter creates a new Writer. baseDir is the parent directory, name is
// the output directory name. Files are written to baseDir/name.tmp and
// moved to baseDir/name on Commit.
func NewWriter(baseDir, name string) *Writer {
	return &Writer{
		baseDir: baseDir,
		name:    name,
	}
}

func (w *Writer) tempDir() string {
	return filepath.Join(w.baseDir, w.name+".tmp")
}

func (w *Writer) finalDir() string {
	return filepath.Join(w.baseDir, w.name)
}

// WriteResults writes every successful result as a .md file in the temp
// directory. Error results are skipped.
func (w *Writer) WriteResults(results []*crawlmark.CrawlResult) error {
	if err := os.MkdirAll(w.tempDir(), 0755); err != nil {
		return err
	}

	used := make(map[string]int)
	for _, result := range results {
		if result.Status != crawlmark.ResultSuccess {
			continue
		}

		path := filepath.Join(w.tempDir(), fileName(result, used))
		if err := os.WriteFile(path, []byte(FormatResult(result)), 0644); err != nil {
			return err
		}
	}

	return nil
}

// Commit atomically replaces the final directory with the temp directory.
func (w *Writer) Commit() error {
	if err := os.RemoveAll(w.finalDir()); err != nil {
		return err
	}
	return os.Rename(w.tempDir(), w.finalDir())
}

// Abort removes the temp directory.
func (w *Writer) Abort() error {
	return os.RemoveAll(w.tempDir())
}

// FormatResult formats a result with YAML frontmatter.
func FormatResult(result *crawlmark.CrawlResult) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(result.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(result.Title)
	b.WriteString("\ncrawled: ")
	b.WriteString(time.Now().Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(result.MarkdownContent)
	return b.String()
}

// fileName derives a unique file name for a result.
func fileName(result *crawlmark.CrawlResult, used map[string]int) string {
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
