package mock

import "github.com/ejankowski/crawlmark"

var _ crawlmark.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of crawlmark.Extractor.
type Extractor struct {
	ExtractFn func(html string, opts crawlmark.ExtractOptions) (*crawlmark.ExtractResult, error)
}

func (e *Extractor) Extract(html string, opts crawlmark.ExtractOptions) (*crawlmark.ExtractResult, error) {
	return e.ExtractFn(html, opts)
}

var _ crawlmark.Converter = (*Converter)(nil)

// Converter is a mock implementation of crawlmark.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ crawlmark.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of crawlmark.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, originURL, scopeURL string) ([]string, error)
}

func (l *LinkExtractor) ExtractLinks(html, originURL, scopeURL string) ([]string, error) {
	return l.ExtractLinksFn(html, originURL, scopeURL)
}
