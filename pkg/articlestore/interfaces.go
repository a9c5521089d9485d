package articlestore

import (
	"context"

	"github.com/quillhq/article-refinery/internal/domain"
)

// NewArticle is the create payload accepted by the article store.
type NewArticle struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	OriginalURL string `json:"original_url,omitempty"`
}

// Store is the article persistence collaborator, an HTTP JSON API.
type Store interface {
	// List returns all stored articles, newest-created first.
	List(ctx context.Context) ([]domain.Article, error)
	// Create stores a scraped article with status "original". Duplicate
	// submissions surface as ErrDuplicate.
	Create(ctx context.Context, art NewArticle) (*domain.Article, error)
	// LatestUnprocessed returns the most-recently-created article still in
	// status "original", or nil when none exists.
	LatestUnprocessed(ctx context.Context) (*domain.Article, error)
	// UpdateContent replaces an article's content and moves it to status
	// "updated". Fails when the id is unknown.
	UpdateContent(ctx context.Context, id int64, content string) (*domain.Article, error)
}
