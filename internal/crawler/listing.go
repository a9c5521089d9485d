package crawler

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/quillhq/article-refinery/internal/domain"
	"github.com/quillhq/article-refinery/pkg/sites"
)

// Teasers extracts the article teaser links present on a listing page, in
// document order. The source site lists newest-first within a page. Anchors
// without an href or a non-empty title are skipped.
func Teasers(doc *goquery.Document, profile sites.Profile) []domain.ArticleSeed {
	var seeds []domain.ArticleSeed
	doc.Find(profile.TeaserSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		title := strings.TrimSpace(sel.Text())
		if !ok || href == "" || title == "" {
			return
		}
		seeds = append(seeds, domain.ArticleSeed{Title: title, SourceURL: href})
	})
	return seeds
}

// MaxPage returns the highest page number advertised by the listing's
// pagination control. Non-numeric labels ("Next", ellipses) are ignored.
// A listing without pagination anchors is a single page.
func MaxPage(doc *goquery.Document, profile sites.Profile) int {
	max := 0
	doc.Find(profile.PaginationSelector).Each(func(_ int, sel *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(sel.Text()))
		if err != nil {
			return
		}
		if n > max {
			max = n
		}
	})
	if max < 1 {
		return 1
	}
	return max
}
