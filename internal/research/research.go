// Package research looks up corroborating sources for an article title on a
// search-engine results page. Live search is attempted once per run; when it
// yields nothing usable the profile's fixed fallback pair is substituted so
// downstream synthesis always has a references section.
package research

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/quillhq/article-refinery/internal/browser"
	"github.com/quillhq/article-refinery/internal/logger"
	"github.com/quillhq/article-refinery/pkg/sites"
)

// maxSources bounds how many external links a lookup returns.
const maxSources = 2

// Browser opens rendered pages for extraction.
type Browser interface {
	OpenPage(ctx context.Context, url string, opts browser.PageOptions) (browser.Page, error)
}

// Client performs source lookups against the profile's search engine.
type Client struct {
	browser Browser
	profile sites.Profile
}

// NewClient wires a research client.
func NewClient(b Browser, profile sites.Profile) *Client {
	return &Client{browser: b, profile: profile}
}

// FindSources renders a search results page for the title with a mobile user
// agent and returns up to two qualifying external links in discovery order.
// degraded reports that the fallback pair was substituted. Only a render
// failure returns an error.
func (c *Client) FindSources(ctx context.Context, title string) (links []string, degraded bool, err error) {
	searchURL := c.profile.SearchQueryURL(title)
	page, err := c.browser.OpenPage(ctx, searchURL, browser.PageOptions{
		UserAgent: c.profile.MobileUserAgent,
	})
	if err != nil {
		return nil, false, err
	}
	defer page.Close()

	doc, err := page.Document()
	if err != nil {
		return nil, false, err
	}

	links = c.qualifyingLinks(doc)
	if len(links) == 0 {
		logger.WarnObj("live search yielded no usable links; substituting fallback sources", "search_fallback", map[string]any{
			"title":     title,
			"fallbacks": c.profile.FallbackSources,
		})
		return append([]string(nil), c.profile.FallbackSources...), true, nil
	}

	logger.InfoObj("research sources found", "sources", links)
	return links, false, nil
}

// qualifyingLinks walks result anchors in document order and keeps absolute
// http(s) URLs outside the excluded domains, up to maxSources.
func (c *Client) qualifyingLinks(doc *goquery.Document) []string {
	var out []string
	doc.Find(c.profile.SearchResultSelector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || !c.profile.AllowsSource(href) {
			return true
		}
		out = append(out, href)
		return len(out) < maxSources
	})
	return out
}
