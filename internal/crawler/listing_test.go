package crawler

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/quillhq/article-refinery/pkg/sites"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestTeasersExtractsInDocumentOrder(t *testing.T) {
	html := `
	<div class="entry-card"><h2 class="entry-title"><a href="https://blog.test/one/">  First Post </a></h2></div>
	<div class="entry-card"><h2 class="entry-title"><a href="https://blog.test/two/">Second Post</a></h2></div>
	<div class="entry-card"><h2 class="entry-title"><a>No Href</a></h2></div>
	<div class="entry-card"><h2 class="entry-title"><a href="https://blog.test/empty/">   </a></h2></div>`

	seeds := Teasers(docFromHTML(t, html), sites.Default())
	if len(seeds) != 2 {
		t.Fatalf("expected 2 teasers, got %d", len(seeds))
	}
	if seeds[0].Title != "First Post" || seeds[0].SourceURL != "https://blog.test/one/" {
		t.Fatalf("unexpected first teaser: %+v", seeds[0])
	}
	if seeds[1].Title != "Second Post" {
		t.Fatalf("unexpected second teaser: %+v", seeds[1])
	}
	if seeds[0].IsLatest || seeds[1].IsLatest {
		t.Fatalf("teasers must not be tagged latest")
	}
}

func TestMaxPageParsesNumericLabels(t *testing.T) {
	html := `
	<a class="page-numbers" href="#">1</a>
	<a class="page-numbers" href="#">2</a>
	<a class="page-numbers" href="#">7</a>
	<a class="page-numbers" href="#">Next</a>
	<a class="page-numbers" href="#">&hellip;</a>`

	if got := MaxPage(docFromHTML(t, html), sites.Default()); got != 7 {
		t.Fatalf("expected max page 7, got %d", got)
	}
}

func TestMaxPageDefaultsToOne(t *testing.T) {
	if got := MaxPage(docFromHTML(t, `<div>no pagination here</div>`), sites.Default()); got != 1 {
		t.Fatalf("expected single-page default 1, got %d", got)
	}

	onlyLabels := `<a class="page-numbers" href="#">Next</a>`
	if got := MaxPage(docFromHTML(t, onlyLabels), sites.Default()); got != 1 {
		t.Fatalf("expected 1 for non-numeric labels, got %d", got)
	}
}
