// internal/scraper/parser.go
package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed HTML tree with the base URL it was fetched
// from, so relative anchors can be resolved.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// ParseDocument parses raw markup into a queryable document.
func ParseDocument(html string, baseURL string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
	}

	return &Document{doc: doc, base: base}, nil
}

// Select returns all nodes matching the CSS selector.
func (d *Document) Select(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// SelectFirst returns the first node matching the CSS selector.
func (d *Document) SelectFirst(selector string) *goquery.Selection {
	return d.doc.Find(selector).First()
}

// Text returns the document's full text content, used by regex-on-text
// strategies.
func (d *Document) Text() string {
	return d.doc.Text()
}

// Resolve turns a possibly relative href into an absolute URL against
// the document's base.
func (d *Document) Resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid href %q: %w", href, err)
	}
	if d.base == nil {
		return ref.String(), nil
	}
	return d.base.ResolveReference(ref).String(), nil
}
