// Package browser wraps playwright-go behind a small render surface: open a
// page, wait for the document to parse, hand back a goquery-queryable handle.
// Callers own the handle and must close it on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	pw "github.com/playwright-community/playwright-go"
)

// RenderError reports a failed navigation or extraction for a URL.
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.URL, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Page is a rendered document handle.
type Page interface {
	// Document parses the current page content into a queryable document.
	Document() (*goquery.Document, error)
	Close() error
}

// PageOptions control a single navigation.
type PageOptions struct {
	// UserAgent overrides the browser default for this page when non-empty.
	UserAgent string
}

// Session owns a headless Chromium instance shared across page opens. It must
// be closed exactly once when the run ends.
type Session struct {
	pw      *pw.Playwright
	browser pw.Browser
	timeout time.Duration
}

// NewSession starts playwright and launches a headless Chromium. The timeout
// bounds each navigation; expiry surfaces as a RenderError.
func NewSession(navigationTimeout time.Duration) (*Session, error) {
	instance, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := instance.Chromium.Launch(pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(true),
	})
	if err != nil {
		_ = instance.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	if navigationTimeout <= 0 {
		navigationTimeout = 30 * time.Second
	}

	return &Session{pw: instance, browser: browser, timeout: navigationTimeout}, nil
}

// OpenPage navigates to the URL in a fresh tab and returns its handle once the
// document content is parsed. The tab is already closed when an error returns.
func (s *Session) OpenPage(ctx context.Context, url string, opts PageOptions) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{URL: url, Err: err}
	}

	pageOpts := pw.BrowserNewPageOptions{}
	if opts.UserAgent != "" {
		pageOpts.UserAgent = pw.String(opts.UserAgent)
	}

	tab, err := s.browser.NewPage(pageOpts)
	if err != nil {
		return nil, &RenderError{URL: url, Err: fmt.Errorf("new page: %w", err)}
	}

	if _, err := tab.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
		Timeout:   pw.Float(float64(s.timeout.Milliseconds())),
	}); err != nil {
		_ = tab.Close()
		return nil, &RenderError{URL: url, Err: err}
	}

	return &page{tab: tab, url: url}, nil
}

// Close releases the browser and the playwright driver.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}

// page adapts a playwright tab to the Page interface.
type page struct {
	tab pw.Page
	url string
}

func (p *page) Document() (*goquery.Document, error) {
	html, err := p.tab.Content()
	if err != nil {
		return nil, &RenderError{URL: p.url, Err: fmt.Errorf("page content: %w", err)}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &RenderError{URL: p.url, Err: fmt.Errorf("parse html: %w", err)}
	}
	return doc, nil
}

func (p *page) Close() error {
	return p.tab.Close()
}
