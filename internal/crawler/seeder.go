package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/quillhq/article-refinery/internal/browser"
	"github.com/quillhq/article-refinery/internal/domain"
	"github.com/quillhq/article-refinery/internal/logger"
	"github.com/quillhq/article-refinery/pkg/articlestore"
	"github.com/quillhq/article-refinery/pkg/sites"
)

const (
	// oldWindowSize is how many of the oldest articles the window carries
	// alongside the single newest one.
	oldWindowSize = 5

	// placeholderContent seeds every created article until the synthesis
	// phase replaces it.
	placeholderContent = "Original content placeholder..."
)

// Seeder assembles the seed window by paginating the listing backward and
// persists it through the article store, best-effort per seed.
type Seeder struct {
	browser Browser
	store   SeedStore
	ledger  Ledger
	profile sites.Profile
}

// NewSeeder wires a seeder. The ledger may be nil; duplicate classification
// then relies solely on the store's answers.
func NewSeeder(b Browser, store SeedStore, ledger Ledger, profile sites.Profile) *Seeder {
	return &Seeder{browser: b, store: store, ledger: ledger, profile: profile}
}

// BuildWindow crawls the listing backward from its highest page and returns
// at most five of the oldest teasers followed by the newest one, tagged
// latest. Listings with less content yield a smaller window; that is degraded
// output, not an error. Render failures abort the remaining crawl.
func (s *Seeder) BuildWindow(ctx context.Context) ([]domain.ArticleSeed, error) {
	maxPage, err := s.probeMaxPage(ctx)
	if err != nil {
		return nil, err
	}
	logger.DebugObj("listing paginated", "max_page", maxPage)

	old := make([]domain.ArticleSeed, 0, oldWindowSize)
	seen := make(map[string]bool)
	for page := maxPage; len(old) < oldWindowSize && page > 0; page-- {
		teasers, err := s.teasersOn(ctx, page)
		if err != nil {
			return nil, err
		}

		// Pages list newest-first, so the oldest entries of a page sit at
		// the bottom. Reverse to collect oldest-first within the page.
		reverseSeeds(teasers)
		for _, t := range teasers {
			if seen[t.SourceURL] {
				continue
			}
			seen[t.SourceURL] = true
			old = append(old, t)
		}
		logger.DebugObj("listing page crawled", "page_result", map[string]any{
			"page":      page,
			"teasers":   len(teasers),
			"collected": len(old),
		})
	}
	if len(old) > oldWindowSize {
		old = old[:oldWindowSize]
	}

	newest, err := s.teasersOn(ctx, 1)
	if err != nil {
		return nil, err
	}

	window := old
	if len(newest) > 0 {
		latest := newest[0]
		latest.IsLatest = true
		window = append(window, latest)
	}
	return window, nil
}

// Seed builds the window and persists each seed. A failed create is recorded
// and the loop continues; only a crawl failure aborts the run.
func (s *Seeder) Seed(ctx context.Context) ([]domain.SeedResult, error) {
	window, err := s.BuildWindow(ctx)
	if err != nil {
		return nil, fmt.Errorf("build seed window: %w", err)
	}

	results := make([]domain.SeedResult, 0, len(window))
	for _, seed := range window {
		results = append(results, s.persist(ctx, seed))
	}

	logger.InfoObj("seeding completed", "seed_results", results)
	return results, nil
}

func (s *Seeder) persist(ctx context.Context, seed domain.ArticleSeed) domain.SeedResult {
	if s.ledger != nil {
		seen, err := s.ledger.SeenSource(seed.SourceURL)
		if err != nil {
			logger.WarnObj("seed ledger read failed", "ledger_error", map[string]any{
				"url":   seed.SourceURL,
				"error": err.Error(),
			})
		} else if seen {
			return domain.SeedResult{Seed: seed, Outcome: domain.SeedIgnored, Reason: "already seeded"}
		}
	}

	_, err := s.store.Create(ctx, articlestore.NewArticle{
		Title:       seed.Title,
		Content:     placeholderContent,
		OriginalURL: seed.SourceURL,
	})
	switch {
	case err == nil:
		s.markSeeded(seed.SourceURL)
		return domain.SeedResult{Seed: seed, Outcome: domain.SeedCreated}
	case errors.Is(err, articlestore.ErrDuplicate):
		s.markSeeded(seed.SourceURL)
		return domain.SeedResult{Seed: seed, Outcome: domain.SeedIgnored, Reason: "duplicate"}
	default:
		logger.WarnObj("seed create failed", "seed_error", map[string]any{
			"title": seed.Title,
			"url":   seed.SourceURL,
			"error": err.Error(),
		})
		return domain.SeedResult{Seed: seed, Outcome: domain.SeedFailed, Reason: err.Error()}
	}
}

func (s *Seeder) markSeeded(url string) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.MarkSource(url); err != nil {
		logger.WarnObj("seed ledger write failed", "ledger_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	}
}

func (s *Seeder) probeMaxPage(ctx context.Context) (int, error) {
	var max int
	err := s.withPage(ctx, s.profile.PageURL(1), func(doc *goquery.Document) error {
		max = MaxPage(doc, s.profile)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("probe page count: %w", err)
	}
	return max, nil
}

func (s *Seeder) teasersOn(ctx context.Context, page int) ([]domain.ArticleSeed, error) {
	var teasers []domain.ArticleSeed
	err := s.withPage(ctx, s.profile.PageURL(page), func(doc *goquery.Document) error {
		teasers = Teasers(doc, s.profile)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("crawl listing page %d: %w", page, err)
	}
	return teasers, nil
}

// withPage opens the URL, runs fn over the parsed document, and closes the
// page handle on every path.
func (s *Seeder) withPage(ctx context.Context, url string, fn func(*goquery.Document) error) error {
	page, err := s.browser.OpenPage(ctx, url, browser.PageOptions{})
	if err != nil {
		return err
	}
	defer page.Close()

	doc, err := page.Document()
	if err != nil {
		return err
	}
	return fn(doc)
}

func reverseSeeds(seeds []domain.ArticleSeed) {
	for i, j := 0, len(seeds)-1; i < j; i, j = i+1, j-1 {
		seeds[i], seeds[j] = seeds[j], seeds[i]
	}
}
