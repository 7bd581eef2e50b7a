package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ejankowski/crawlmark"
)

// Ensure type implements interface.
var _ crawlmark.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor discovers outgoing anchor links in rendered HTML.
type LinkExtractor struct{}

// NewLinkExtractor returns a LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks returns the absolute URLs of all anchors in html, resolved
// against originURL and restricted to the scopeURL prefix. Fragments are
// stripped and duplicates removed, keeping document order.
func (e *LinkExtractor) ExtractLinks(html, originURL, scopeURL string) ([]string, error) {
	origin, err := url.Parse(originURL)
	if err != nil {
		return nil, crawlmark.Errorf(crawlmark.EINVALID, "invalid origin URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, crawlmark.Errorf(crawlmark.EINVALID, "failed to parse HTML: %v", err)
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}

		// Skip non-HTTP links (javascript:, mailto:, etc.)
		if isNonHTTPLink(href) {
			return
		}

		resolved := resolveURL(origin, href)
		if resolved == "" {
			return
		}

		// Same-site restriction is a plain prefix match on the scope URL.
		if !strings.HasPrefix(resolved, scopeURL) {
			return
		}

		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links, nil
}

// resolveURL resolves a relative href against the origin URL.
// Returns empty string if the href cannot be parsed or if the resolved URL
// is self-referential (same as origin after stripping fragment).
// Fragments are stripped from the resolved URL for deduplication purposes.
func resolveURL(origin *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := origin.ResolveReference(ref)
	resolved.Fragment = ""

	// Filter self-referential links (e.g., anchor-only links pointing to same page)
	result := resolved.String()
	originNoFragment := *origin
	originNoFragment.Fragment = ""
	if result == originNoFragment.String() {
		return ""
	}
	return result
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
