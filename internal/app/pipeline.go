package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quillhq/article-refinery/internal/domain"
	"github.com/quillhq/article-refinery/internal/logger"
	"github.com/quillhq/article-refinery/pkg/events"
)

// State identifies a phase of a pipeline run.
type State string

const (
	StateIdle         State = "idle"
	StateSeeding      State = "seeding"
	StateCooldown     State = "cooldown"
	StateResearching  State = "researching"
	StateSynthesizing State = "synthesizing"
	StateUpdating     State = "updating"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// eventSource tags every published run event.
const eventSource = "article-refinery"

// Seeder assembles and persists the seed window.
type Seeder interface {
	Seed(ctx context.Context) ([]domain.SeedResult, error)
}

// Researcher finds corroborating sources for an article title.
type Researcher interface {
	FindSources(ctx context.Context, title string) (links []string, degraded bool, err error)
}

// Rewriter produces enriched content for a title and its sources.
type Rewriter interface {
	Rewrite(ctx context.Context, title string, sources []string) (string, error)
}

// ArticleStore is the slice of the store API the orchestrator touches.
type ArticleStore interface {
	LatestUnprocessed(ctx context.Context) (*domain.Article, error)
	UpdateContent(ctx context.Context, id int64, content string) (*domain.Article, error)
}

// EventSink receives run events (the events fanout satisfies this).
type EventSink interface {
	Publish(ctx context.Context, evt events.Event) (int, error)
}

// Pipeline sequences one run: seed the window, cool down, then research,
// rewrite, and update the latest unprocessed article. A seeding failure is
// contained and the enrichment half still runs; an enrichment failure aborts
// without partial mutation. No state is retried.
type Pipeline struct {
	seeder     Seeder
	store      ArticleStore
	researcher Researcher
	rewriter   Rewriter
	sink       EventSink
	cooldown   time.Duration
	log        logger.Logger
	state      State
}

// NewPipeline wires the orchestrator. sink may be nil.
func NewPipeline(seeder Seeder, store ArticleStore, researcher Researcher, rewriter Rewriter, sink EventSink, cooldown time.Duration, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pipeline{
		seeder:     seeder,
		store:      store,
		researcher: researcher,
		rewriter:   rewriter,
		sink:       sink,
		cooldown:   cooldown,
		log:        log,
		state:      StateIdle,
	}
}

// State reports the phase the pipeline last reached.
func (p *Pipeline) State() State {
	return p.state
}

// RunOnce executes one full pipeline pass.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	p.state = StateSeeding
	p.emit(ctx, "run.started", map[string]any{"cooldown": p.cooldown.String()})

	var seedErr error
	results, err := p.seeder.Seed(ctx)
	if err != nil {
		seedErr = fmt.Errorf("seeding: %w", err)
		p.log.ErrorObj("seeding phase failed", "error", err.Error())
		p.emit(ctx, "seeding.failed", map[string]any{"error": err.Error()})
	} else {
		p.emit(ctx, "seeding.completed", map[string]any{"results": results})
	}

	p.state = StateCooldown
	if err := p.coolDown(ctx); err != nil {
		p.state = StateFailed
		return errors.Join(seedErr, err)
	}

	if err := p.enrich(ctx); err != nil {
		failedIn := p.state
		p.state = StateFailed
		p.log.ErrorObj("enrichment phase failed", "error", err.Error())
		p.emit(ctx, "run.failed", map[string]any{"phase": string(failedIn), "error": err.Error()})
		return errors.Join(seedErr, err)
	}

	if seedErr != nil {
		p.state = StateFailed
		p.emit(ctx, "run.failed", map[string]any{"phase": string(StateSeeding), "error": seedErr.Error()})
		return seedErr
	}

	p.state = StateDone
	p.emit(ctx, "run.completed", nil)
	return nil
}

// coolDown waits the fixed inter-phase delay so the store's latest read
// reflects just-written rows even under eventual-consistency lag.
func (p *Pipeline) coolDown(ctx context.Context) error {
	if p.cooldown <= 0 {
		return nil
	}
	timer := time.NewTimer(p.cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// enrich runs the second half: select work, research, rewrite, update. When
// the store has no unprocessed article the run is a no-op and succeeds.
func (p *Pipeline) enrich(ctx context.Context) error {
	article, err := p.store.LatestUnprocessed(ctx)
	if err != nil {
		return fmt.Errorf("fetch latest unprocessed: %w", err)
	}
	if article == nil {
		p.log.InfoObj("no unprocessed article; nothing to enrich", "phase", string(StateCooldown))
		return nil
	}
	p.log.InfoObj("selected article for enrichment", "article", map[string]any{
		"id":    article.ID,
		"title": article.Title,
	})

	p.state = StateResearching
	sources, degraded, err := p.researcher.FindSources(ctx, article.Title)
	if err != nil {
		return fmt.Errorf("research sources for %q: %w", article.Title, err)
	}
	if degraded {
		p.emit(ctx, "search.degraded", map[string]any{"article_id": article.ID, "fallbacks": sources})
	}

	p.state = StateSynthesizing
	content, err := p.rewriter.Rewrite(ctx, article.Title, sources)
	if err != nil {
		return fmt.Errorf("rewrite article %d: %w", article.ID, err)
	}

	p.state = StateUpdating
	if _, err := p.store.UpdateContent(ctx, article.ID, content); err != nil {
		return fmt.Errorf("store updated content for article %d: %w", article.ID, err)
	}

	p.emit(ctx, "article.updated", map[string]any{"article_id": article.ID, "sources": sources})
	return nil
}

// emit publishes a run event; sink failures are logged, never fatal.
func (p *Pipeline) emit(ctx context.Context, typ string, data map[string]any) {
	if p.sink == nil {
		return
	}
	if _, err := p.sink.Publish(ctx, events.NewEvent(eventSource, typ, data)); err != nil {
		p.log.WarnObj("event publish failed", "event_error", map[string]any{
			"type":  typ,
			"error": err.Error(),
		})
	}
}
