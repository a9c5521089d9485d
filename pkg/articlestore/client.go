package articlestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/quillhq/article-refinery/internal/domain"
	"github.com/quillhq/article-refinery/pkg/httpclient"
)

// ErrDuplicate reports that the store rejected a create as a duplicate (or
// validation conflict). Callers treat it as an ignorable outcome, not a failure.
var ErrDuplicate = errors.New("article already exists")

// StatusError is returned when the store answers with a non-2xx status.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("article store %s: status %d: %s", e.Op, e.Code, e.Body)
}

// Client talks to the article store HTTP API.
type Client struct {
	baseURL string
	client  *resty.Client
}

// NewClient builds a store client for the given API base URL
// (e.g. http://localhost/api).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpclient.NewRestyHTTPClient(timeout),
	}
}

var _ Store = (*Client)(nil)

// List fetches all articles, newest-created first.
func (c *Client) List(ctx context.Context) ([]domain.Article, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + "/articles")
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	if resp.IsError() {
		return nil, &StatusError{Op: "list", Code: resp.StatusCode(), Body: bodySnippet(resp.Body())}
	}

	var articles []domain.Article
	if err := json.Unmarshal(resp.Body(), &articles); err != nil {
		return nil, fmt.Errorf("decode article list: %w", err)
	}
	return articles, nil
}

// Create stores a scraped article. The store answers 201 with the created
// record; conflict-class statuses map to ErrDuplicate.
func (c *Client) Create(ctx context.Context, art NewArticle) (*domain.Article, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(art).
		Post(c.baseURL + "/articles")
	if err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	if resp.IsError() {
		if isDuplicateStatus(resp.StatusCode()) {
			return nil, fmt.Errorf("create article %q: %w", art.Title, ErrDuplicate)
		}
		return nil, &StatusError{Op: "create", Code: resp.StatusCode(), Body: bodySnippet(resp.Body())}
	}

	var created domain.Article
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return nil, fmt.Errorf("decode created article: %w", err)
	}
	return &created, nil
}

// LatestUnprocessed fetches the most-recently-created article still in status
// "original". A null or empty payload means there is nothing to process.
func (c *Client) LatestUnprocessed(ctx context.Context) (*domain.Article, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + "/articles/latest")
	if err != nil {
		return nil, fmt.Errorf("fetch latest unprocessed: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, &StatusError{Op: "latest", Code: resp.StatusCode(), Body: bodySnippet(resp.Body())}
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var article domain.Article
	if err := json.Unmarshal(body, &article); err != nil {
		return nil, fmt.Errorf("decode latest article: %w", err)
	}
	if article.ID == 0 {
		return nil, nil
	}
	return &article, nil
}

// UpdateContent replaces the article's content; the store flips its status to
// "updated" as part of the same write.
func (c *Client) UpdateContent(ctx context.Context, id int64, content string) (*domain.Article, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"content": content}).
		Put(fmt.Sprintf("%s/articles/%d", c.baseURL, id))
	if err != nil {
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}
	if resp.IsError() {
		return nil, &StatusError{Op: "update", Code: resp.StatusCode(), Body: bodySnippet(resp.Body())}
	}

	var updated domain.Article
	if err := json.Unmarshal(resp.Body(), &updated); err != nil {
		return nil, fmt.Errorf("decode updated article: %w", err)
	}
	return &updated, nil
}

func isDuplicateStatus(code int) bool {
	return code == http.StatusConflict || code == http.StatusUnprocessableEntity
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		return s[:512] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
