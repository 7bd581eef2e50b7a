package trafilatura

import (
	"bytes"
	"strings"

	"github.com/ejankowski/crawlmark"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements crawlmark.Extractor at compile time.
var _ crawlmark.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML. It uses
// the library's own boilerplate detection, so the RemoveNavigation and
// CleanFormatting options are implied; only IncludeImages is honored.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string, opts crawlmark.ExtractOptions) (*crawlmark.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, crawlmark.Errorf(crawlmark.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
		IncludeImages:  opts.IncludeImages,
	})
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	title := result.Metadata.Title
	if title == "" {
		title = "Untitled"
	}

	return &crawlmark.ExtractResult{
		Title:       title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
