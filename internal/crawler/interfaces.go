package crawler

import (
	"context"

	"github.com/quillhq/article-refinery/internal/browser"
	"github.com/quillhq/article-refinery/internal/domain"
	"github.com/quillhq/article-refinery/pkg/articlestore"
)

// Browser opens rendered pages for extraction.
type Browser interface {
	OpenPage(ctx context.Context, url string, opts browser.PageOptions) (browser.Page, error)
}

// SeedStore persists discovered seeds (subset of the article store API).
type SeedStore interface {
	Create(ctx context.Context, art articlestore.NewArticle) (*domain.Article, error)
}

// Ledger tracks source URLs already handed to the store across runs.
type Ledger interface {
	SeenSource(url string) (bool, error)
	MarkSource(url string) error
}
