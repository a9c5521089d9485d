package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/quillhq/article-refinery/internal/browser"
	"github.com/quillhq/article-refinery/pkg/sites"
)

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

type fakeBrowser struct {
	html      string
	err       error
	lastURL   string
	lastOpts  browser.PageOptions
	lastPage  *fakePage
	openCount int
}

func (f *fakeBrowser) OpenPage(_ context.Context, url string, opts browser.PageOptions) (browser.Page, error) {
	f.openCount++
	f.lastURL = url
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	f.lastPage = &fakePage{html: f.html}
	return f.lastPage, nil
}

func resultAnchor(href string) string {
	return `<div class="g"><a href="` + href + `">result</a></div>`
}

func TestFindSourcesReturnsFirstTwoQualifyingLinks(t *testing.T) {
	fb := &fakeBrowser{html: strings.Join([]string{
		resultAnchor("https://www.google.com/imgres?u=x"),
		resultAnchor("https://beyondchats.com/blogs/self-ref/"),
		resultAnchor("ftp://not-web.example.com/doc"),
		resultAnchor("https://first.example.com/story"),
		resultAnchor("https://second.example.com/analysis"),
		resultAnchor("https://third.example.com/ignored"),
	}, "\n")}
	client := NewClient(fb, sites.Default())

	links, degraded, err := client.FindSources(context.Background(), "AI Chatbots in 2025")
	if err != nil {
		t.Fatalf("FindSources: %v", err)
	}
	if degraded {
		t.Fatalf("expected live search result, got degraded")
	}
	want := []string{"https://first.example.com/story", "https://second.example.com/analysis"}
	if len(links) != 2 || links[0] != want[0] || links[1] != want[1] {
		t.Fatalf("unexpected links: %v", links)
	}

	if !strings.Contains(fb.lastURL, "AI+Chatbots+in+2025") {
		t.Fatalf("expected URL-encoded query, got %s", fb.lastURL)
	}
	if !strings.Contains(fb.lastOpts.UserAgent, "iPhone") {
		t.Fatalf("expected mobile user agent, got %q", fb.lastOpts.UserAgent)
	}
	if !fb.lastPage.closed {
		t.Fatalf("search page was not closed")
	}
}

func TestFindSourcesFallsBackWhenNothingQualifies(t *testing.T) {
	fb := &fakeBrowser{html: strings.Join([]string{
		resultAnchor("https://www.google.com/search?q=more"),
		resultAnchor("https://beyondchats.com/blogs/"),
	}, "\n")}
	profile := sites.Default()
	client := NewClient(fb, profile)

	links, degraded, err := client.FindSources(context.Background(), "Blocked Query")
	if err != nil {
		t.Fatalf("FindSources: %v", err)
	}
	if !degraded {
		t.Fatalf("expected degraded fallback")
	}
	if len(links) != len(profile.FallbackSources) {
		t.Fatalf("expected fallback pair, got %v", links)
	}
	for i, want := range profile.FallbackSources {
		if links[i] != want {
			t.Fatalf("fallback %d: expected %q, got %q", i, want, links[i])
		}
	}
	if fb.openCount != 1 {
		t.Fatalf("fallback must not retry the search, opened %d pages", fb.openCount)
	}
}

func TestFindSourcesPropagatesRenderFailure(t *testing.T) {
	fb := &fakeBrowser{err: &browser.RenderError{URL: "x", Err: errors.New("interstitial")}}
	client := NewClient(fb, sites.Default())

	_, _, err := client.FindSources(context.Background(), "Anything")
	if err == nil {
		t.Fatalf("expected render error to propagate")
	}
	var renderErr *browser.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected RenderError, got %v", err)
	}
}
