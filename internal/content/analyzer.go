package content

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer removes dangerous HTML elements and attributes from markup
// headed for display. Stored working content is never sanitized.
//
// Thread-safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer with a UGC policy: common formatting
// is preserved while scripts, event handlers and javascript: URLs are
// stripped.
func NewSanitizer() *Sanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowDataURIImages()

	return &Sanitizer{policy: policy}
}

// Sanitize removes dangerous HTML while preserving safe content.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}

// Analyzer extracts display statistics from rendered markup.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// WordCount counts the words in the text content of the given HTML.
func (a *Analyzer) WordCount(html string) int {
	return len(strings.Fields(a.text(html)))
}

// Title returns the text of the first heading, or "" when the document
// has none.
func (a *Analyzer) Title(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1, h2, h3").First().Text())
}

// text extracts plain text, falling back to the raw input when the
// markup cannot be parsed.
func (a *Analyzer) text(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return doc.Text()
}
