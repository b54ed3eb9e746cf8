// internal/scraper/links.go
package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cinescrape/internal/config"
	"cinescrape/internal/utils"
)

// LinkDiscoverer locates detail-page anchors on a listing document using
// an ordered list of candidate strategies. The first strategy returning
// at least one match is used exclusively for that document, so links
// from different markup dialects are never mixed on one page.
type LinkDiscoverer struct {
	strategies []config.LinkStrategy
	log        utils.Logger
}

// NewLinkDiscoverer creates a discoverer over the configured strategies.
func NewLinkDiscoverer(strategies []config.LinkStrategy) *LinkDiscoverer {
	return &LinkDiscoverer{
		strategies: strategies,
		log:        utils.NewComponentLogger("links"),
	}
}

// Discover returns the deduplicated, canonicalized detail-page URLs in
// document order. When no strategy matches anything it returns
// ErrNoLinksFound, the terminal signal for pagination.
func (d *LinkDiscoverer) Discover(doc *Document) ([]string, error) {
	for _, strategy := range d.strategies {
		links := d.applyStrategy(doc, strategy)
		if len(links) > 0 {
			d.log.Debugf("found %d links using selector %q", len(links), strategy.Selector)
			return links, nil
		}
	}
	return nil, ErrNoLinksFound
}

func (d *LinkDiscoverer) applyStrategy(doc *Document, strategy config.LinkStrategy) []string {
	seen := make(map[string]struct{})
	var links []string

	doc.Select(strategy.Selector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if strategy.HrefPrefix != "" && !strings.HasPrefix(href, strategy.HrefPrefix) {
			return
		}

		canonical, err := Canonicalize(doc, href)
		if err != nil {
			return
		}
		if _, dup := seen[canonical]; dup {
			return
		}
		seen[canonical] = struct{}{}
		links = append(links, canonical)
	})

	return links
}

// Canonicalize resolves an href to absolute form and strips the query
// string and fragment, yielding the URL's identity form for dedup.
func Canonicalize(doc *Document, href string) (string, error) {
	absolute, err := doc.Resolve(href)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(absolute)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", absolute, err)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
