// Package goquery provides a selector-based fallback implementation of
// sourcebook.Extractor for pages where readability extraction comes up
// empty.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sourcebook"
)

// Ensure Extractor implements sourcebook.Extractor at compile time.
var _ sourcebook.Extractor = (*Extractor)(nil)

// contentSelectors are tried in document order; the first non-empty match
// wins. Semantic containers come before common id/class conventions.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	"#content",
	".content",
}

// Extractor extracts page content with CSS selectors.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*sourcebook.ExtractResult, error) {
	if rawHTML == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "failed to parse HTML: %v", err)
	}

	title := extractTitle(doc)

	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 || strings.TrimSpace(sel.Text()) == "" {
			continue
		}

		html, err := goquery.OuterHtml(sel)
		if err != nil {
			return nil, err
		}
		return &sourcebook.ExtractResult{Title: title, ContentHTML: html}, nil
	}

	// No recognizable container: strip page chrome and use the body.
	body := doc.Find("body").First()
	body.Find("script, style, nav, header, footer, aside").Remove()

	html, err := goquery.OuterHtml(body)
	if err != nil {
		return nil, err
	}
	return &sourcebook.ExtractResult{Title: title, ContentHTML: html}, nil
}

// extractTitle prefers the og:title meta tag over the document title.
func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
