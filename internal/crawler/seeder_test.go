package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/quillhq/article-refinery/internal/browser"
	"github.com/quillhq/article-refinery/internal/domain"
	"github.com/quillhq/article-refinery/pkg/articlestore"
	"github.com/quillhq/article-refinery/pkg/sites"
)

func testProfile() sites.Profile {
	p := sites.Default()
	p.ListingURL = "https://blog.test/"
	return p
}

// fakePage serves canned HTML and records whether it was closed.
type fakePage struct {
	html   string
	closed bool
}

func (p *fakePage) Document() (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(p.html))
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// fakeBrowser maps URLs to canned listing pages.
type fakeBrowser struct {
	pages   map[string]string
	failURL string
	opened  []string
	issued  []*fakePage
}

func (f *fakeBrowser) OpenPage(_ context.Context, url string, _ browser.PageOptions) (browser.Page, error) {
	f.opened = append(f.opened, url)
	if f.failURL != "" && url == f.failURL {
		return nil, &browser.RenderError{URL: url, Err: errors.New("navigation refused")}
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, &browser.RenderError{URL: url, Err: errors.New("unknown url")}
	}
	page := &fakePage{html: html}
	f.issued = append(f.issued, page)
	return page, nil
}

func (f *fakeBrowser) assertAllClosed(t *testing.T) {
	t.Helper()
	for i, p := range f.issued {
		if !p.closed {
			t.Fatalf("page %d was not closed", i)
		}
	}
}

// fakeStore records creates and can classify URLs as duplicates or failures.
type fakeStore struct {
	created  []articlestore.NewArticle
	dupURLs  map[string]bool
	failURLs map[string]bool
}

func (f *fakeStore) Create(_ context.Context, art articlestore.NewArticle) (*domain.Article, error) {
	if f.dupURLs[art.OriginalURL] {
		return nil, fmt.Errorf("create article: %w", articlestore.ErrDuplicate)
	}
	if f.failURLs[art.OriginalURL] {
		return nil, errors.New("store unavailable")
	}
	f.created = append(f.created, art)
	return &domain.Article{ID: int64(len(f.created)), Title: art.Title, Status: domain.StatusOriginal}, nil
}

// fakeLedger tracks seeded URLs in memory.
type fakeLedger struct {
	seen map[string]bool
}

func (f *fakeLedger) SeenSource(url string) (bool, error) { return f.seen[url], nil }
func (f *fakeLedger) MarkSource(url string) error {
	if f.seen == nil {
		f.seen = make(map[string]bool)
	}
	f.seen[url] = true
	return nil
}

func teaserHTML(page string, n int) string {
	return fmt.Sprintf(
		`<div class="entry-card"><h2 class="entry-title"><a href="https://blog.test/%s-post-%d/">%s Post %d</a></h2></div>`,
		page, n, strings.ToUpper(page), n)
}

func listingHTML(maxPage, teaserCount int, page string) string {
	var b strings.Builder
	for i := 1; i <= teaserCount; i++ {
		b.WriteString(teaserHTML(page, i))
	}
	if maxPage > 1 {
		for i := 1; i <= maxPage; i++ {
			fmt.Fprintf(&b, `<a class="page-numbers" href="#">%d</a>`, i)
		}
	}
	return b.String()
}

func TestBuildWindowThreeFullPages(t *testing.T) {
	fb := &fakeBrowser{pages: map[string]string{
		"https://blog.test/":        listingHTML(3, 10, "p1"),
		"https://blog.test/page/2/": listingHTML(3, 10, "p2"),
		"https://blog.test/page/3/": listingHTML(3, 10, "p3"),
	}}
	seeder := NewSeeder(fb, &fakeStore{}, nil, testProfile())

	window, err := seeder.BuildWindow(context.Background())
	if err != nil {
		t.Fatalf("BuildWindow: %v", err)
	}
	if len(window) != 6 {
		t.Fatalf("expected 6 seeds, got %d", len(window))
	}

	// Page 3 holds the oldest content, bottom-most first.
	wantOld := []string{"P3 Post 10", "P3 Post 9", "P3 Post 8", "P3 Post 7", "P3 Post 6"}
	for i, want := range wantOld {
		if window[i].Title != want {
			t.Fatalf("old seed %d: expected %q, got %q", i, want, window[i].Title)
		}
		if window[i].IsLatest {
			t.Fatalf("old seed %d must not be tagged latest", i)
		}
	}

	newest := window[5]
	if newest.Title != "P1 Post 1" || !newest.IsLatest {
		t.Fatalf("unexpected newest seed: %+v", newest)
	}

	fb.assertAllClosed(t)
}

func TestBuildWindowSinglePageShortListing(t *testing.T) {
	fb := &fakeBrowser{pages: map[string]string{
		"https://blog.test/": listingHTML(1, 2, "p1"),
	}}
	seeder := NewSeeder(fb, &fakeStore{}, nil, testProfile())

	window, err := seeder.BuildWindow(context.Background())
	if err != nil {
		t.Fatalf("BuildWindow: %v", err)
	}

	// 2 old (bottom-most first) + the newest; the loop stops because the
	// page counter reaches zero, not because the window filled.
	if len(window) != 3 {
		t.Fatalf("expected 3 seeds, got %d", len(window))
	}
	if window[0].Title != "P1 Post 2" || window[1].Title != "P1 Post 1" {
		t.Fatalf("unexpected old seeds: %+v", window[:2])
	}
	if !window[2].IsLatest || window[2].Title != "P1 Post 1" {
		t.Fatalf("unexpected newest seed: %+v", window[2])
	}
}

func TestBuildWindowSkipsEmptyPagesAndDedupes(t *testing.T) {
	// Page 3 drifted markup (no teasers); page 2 repeats one of page 1's
	// entries, which must not be collected twice.
	page2 := listingHTML(3, 2, "p2") + teaserHTML("p1", 4)
	fb := &fakeBrowser{pages: map[string]string{
		"https://blog.test/":        listingHTML(3, 4, "p1"),
		"https://blog.test/page/2/": page2,
		"https://blog.test/page/3/": listingHTML(3, 0, "p3"),
	}}
	seeder := NewSeeder(fb, &fakeStore{}, nil, testProfile())

	window, err := seeder.BuildWindow(context.Background())
	if err != nil {
		t.Fatalf("BuildWindow: %v", err)
	}

	urls := make(map[string]int)
	for _, seed := range window[:len(window)-1] {
		urls[seed.SourceURL]++
	}
	for url, count := range urls {
		if count > 1 {
			t.Fatalf("old window contains %q %d times", url, count)
		}
	}

	// Page 2 contributes 3 entries (reversed), page 1 fills the rest.
	if window[0].Title != "P1 Post 4" {
		t.Fatalf("expected repeated entry collected once from page 2, got %q", window[0].Title)
	}
	if len(window) != 6 {
		t.Fatalf("expected 5 old + newest, got %d seeds", len(window))
	}
}

func TestBuildWindowRenderFailureAborts(t *testing.T) {
	fb := &fakeBrowser{
		pages: map[string]string{
			"https://blog.test/": listingHTML(2, 3, "p1"),
		},
		failURL: "https://blog.test/page/2/",
	}
	seeder := NewSeeder(fb, &fakeStore{}, nil, testProfile())

	_, err := seeder.BuildWindow(context.Background())
	if err == nil {
		t.Fatalf("expected render failure to abort the crawl")
	}
	var renderErr *browser.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
	fb.assertAllClosed(t)
}

func TestSeedClassifiesOutcomes(t *testing.T) {
	fb := &fakeBrowser{pages: map[string]string{
		"https://blog.test/": listingHTML(1, 4, "p1"),
	}}
	store := &fakeStore{
		dupURLs:  map[string]bool{"https://blog.test/p1-post-3/": true},
		failURLs: map[string]bool{"https://blog.test/p1-post-2/": true},
	}
	ledger := &fakeLedger{}
	seeder := NewSeeder(fb, store, ledger, testProfile())

	results, err := seeder.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// 4 old + 1 newest (repeat of post 1).
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}

	byURL := make(map[string]domain.SeedResult)
	for _, r := range results[:4] {
		byURL[r.Seed.SourceURL] = r
	}
	if got := byURL["https://blog.test/p1-post-4/"].Outcome; got != domain.SeedCreated {
		t.Fatalf("expected created outcome, got %s", got)
	}
	if got := byURL["https://blog.test/p1-post-3/"].Outcome; got != domain.SeedIgnored {
		t.Fatalf("expected duplicate to be ignored, got %s", got)
	}
	if got := byURL["https://blog.test/p1-post-2/"].Outcome; got != domain.SeedFailed {
		t.Fatalf("expected store failure outcome, got %s", got)
	}

	// The newest repeats post 1, already marked in the ledger by its create.
	last := results[4]
	if !last.Seed.IsLatest || last.Outcome != domain.SeedIgnored {
		t.Fatalf("expected ledger to ignore the repeated newest seed, got %+v", last)
	}

	// A failed create must not poison the ledger.
	if ledger.seen["https://blog.test/p1-post-2/"] {
		t.Fatalf("failed seed must not be marked as seeded")
	}
}
