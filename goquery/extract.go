package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ejankowski/crawlmark"
)

// Ensure type implements interface.
var _ crawlmark.Extractor = (*CleanExtractor)(nil)

// Selector lists are configuration data, not code branches. Each list is
// applied as one comma-joined CSS selector.
var (
	// navigationSelectors match chrome elements stripped by RemoveNavigation.
	navigationSelectors = []string{
		"nav",
		"header",
		"footer",
		"aside",
		".nav",
		".navbar",
		".navigation",
		".menu",
		".sidebar",
		".side-bar",
		".breadcrumb",
		".breadcrumbs",
		"#nav",
		"#navbar",
		"#menu",
		"#sidebar",
	}

	// clutterSelectors match non-content elements stripped by CleanFormatting.
	clutterSelectors = []string{
		"script",
		"style",
		"noscript",
		"iframe",
		"object",
		"embed",
		".ad",
		".ads",
		".advertisement",
		".banner",
		".social",
		".social-share",
		".share-buttons",
		".comments",
		".comment-section",
		"#comments",
	}

	// imageSelectors match image elements stripped when IncludeImages is off.
	imageSelectors = []string{
		"img",
		"picture",
		"figure",
		"svg",
	}

	// contentSelectors locate the main content container, highest priority
	// first. The document body is the fallback.
	contentSelectors = []string{
		"article",
		"main",
		"[role='main']",
		".content",
		".main-content",
		".post-content",
		".article-content",
		".entry-content",
		"#content",
		"#main",
	}
)

// CleanExtractor extracts the main content of a page using CSS selector
// heuristics driven by the job's cleaning options.
type CleanExtractor struct{}

// NewCleanExtractor returns a CleanExtractor.
func NewCleanExtractor() *CleanExtractor {
	return &CleanExtractor{}
}

// Extract parses html and returns the page title and the HTML of the main
// content container after the cleaning passes selected by opts.
func (e *CleanExtractor) Extract(html string, opts crawlmark.ExtractOptions) (*crawlmark.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, crawlmark.Errorf(crawlmark.EINVALID, "failed to parse HTML: %v", err)
	}

	title := extractTitle(doc)

	if opts.RemoveNavigation {
		doc.Find(strings.Join(navigationSelectors, ", ")).Remove()
	}
	if opts.CleanFormatting {
		doc.Find(strings.Join(clutterSelectors, ", ")).Remove()
	}
	if !opts.IncludeImages {
		doc.Find(strings.Join(imageSelectors, ", ")).Remove()
	}

	content := selectContent(doc)
	contentHTML, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, crawlmark.Errorf(crawlmark.EINTERNAL, "failed to render content: %v", err)
	}

	return &crawlmark.ExtractResult{
		Title:       title,
		ContentHTML: contentHTML,
	}, nil
}

// extractTitle returns the <title> text, falling back to the first <h1>,
// then to "Untitled".
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return "Untitled"
}

// selectContent returns the first match in the content selector priority
// list, falling back to the document body.
func selectContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("body")
}
