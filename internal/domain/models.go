package domain

// Domain contains core models shared across the pipeline.

// Article statuses as exposed by the article store.
const (
	StatusOriginal = "original"
	StatusUpdated  = "updated"
)

// ArticleSeed is a transient article stub discovered on a listing page.
// It is not persisted directly; the seeder hands it to the article store.
type ArticleSeed struct {
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	IsLatest  bool   `json:"is_latest"`
}

// Article is the persisted record owned by the external article store.
type Article struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	OriginalURL string `json:"original_url"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// SeedOutcome classifies the result of persisting one seed.
type SeedOutcome string

const (
	SeedCreated SeedOutcome = "created"
	SeedIgnored SeedOutcome = "ignored"
	SeedFailed  SeedOutcome = "failed"
)

// SeedResult pairs a seed with its persistence outcome so callers can
// distinguish ignored duplicates from true store failures.
type SeedResult struct {
	Seed    ArticleSeed `json:"seed"`
	Outcome SeedOutcome `json:"outcome"`
	Reason  string      `json:"reason,omitempty"`
}
