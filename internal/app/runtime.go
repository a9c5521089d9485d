package app

import (
	"context"
	"fmt"
	"time"

	"github.com/quillhq/article-refinery/internal/browser"
	"github.com/quillhq/article-refinery/internal/config"
	"github.com/quillhq/article-refinery/internal/crawler"
	"github.com/quillhq/article-refinery/internal/logger"
	"github.com/quillhq/article-refinery/internal/research"
	"github.com/quillhq/article-refinery/internal/storage"
	"github.com/quillhq/article-refinery/internal/synthesis"
	"github.com/quillhq/article-refinery/pkg/articlestore"
	"github.com/quillhq/article-refinery/pkg/events"
	"github.com/quillhq/article-refinery/pkg/httpclient"
	"github.com/quillhq/article-refinery/pkg/sites"
)

// geminiTimeout bounds one model invocation; generation is slower than the
// store round trips.
const geminiTimeout = 90 * time.Second

// Runtime owns the per-run resources (browser session, seed ledger) and the
// wired pipeline. It exists so the entrypoint stays a thin shell.
type Runtime struct {
	cfg      *config.Config
	session  *browser.Session
	ledger   storage.Ledger
	pipeline *Pipeline
	log      logger.Logger
}

// NewRuntime builds a runtime from config: site profile, event sinks, store
// client, browser session, ledger, and the pipeline itself.
func NewRuntime(cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	profile, err := loadProfile(cfg)
	if err != nil {
		return nil, err
	}
	log.InfoObj("site profile loaded", "profile_meta", map[string]any{
		"id":          profile.ID,
		"listing_url": profile.ListingURL,
	})

	fanout, err := buildEventFanout(cfg, log)
	if err != nil {
		return nil, err
	}

	ledger, err := storage.NewLedger(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SeedTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init seed ledger: %w", err)
	}

	session, err := browser.NewSession(cfg.NavigationTimeout)
	if err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("init browser session: %w", err)
	}

	store := articlestore.NewClient(cfg.ArticleStoreBaseURL, cfg.StoreTimeout)
	seeder := crawler.NewSeeder(session, store, ledger, profile)
	researcher := research.NewClient(session, profile)
	rewriter := synthesis.NewRewriter(
		httpclient.NewRestyClient(geminiTimeout),
		cfg.GeminiBaseURL,
		cfg.GeminiModel,
		cfg.GeminiAPIKey,
	)

	pipeline := NewPipeline(seeder, store, researcher, rewriter, fanout, cfg.Cooldown, log)

	return &Runtime{
		cfg:      cfg,
		session:  session,
		ledger:   ledger,
		pipeline: pipeline,
		log:      log,
	}, nil
}

// Run executes one pipeline pass and releases run-scoped resources on every
// path.
func (r *Runtime) Run(ctx context.Context) error {
	if r == nil || r.pipeline == nil {
		return fmt.Errorf("runtime is not initialized")
	}
	defer r.close()

	start := time.Now()
	err := r.pipeline.RunOnce(ctx)
	r.log.InfoObj("pipeline run finished", "run_meta", map[string]any{
		"state":      string(r.pipeline.State()),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

func (r *Runtime) close() {
	if r.session != nil {
		if err := r.session.Close(); err != nil {
			r.log.ErrorObj("browser session close failed", "error", err.Error())
		}
	}
	if r.ledger != nil {
		if err := r.ledger.Close(); err != nil {
			r.log.ErrorObj("seed ledger close failed", "error", err.Error())
		}
	}
}

func loadProfile(cfg *config.Config) (sites.Profile, error) {
	if cfg.SiteProfileFile == "" {
		return sites.Default(), nil
	}
	profile, err := sites.Load(cfg.SiteProfileFile)
	if err != nil {
		return sites.Profile{}, fmt.Errorf("load site profile: %w", err)
	}
	return profile, nil
}

func buildEventFanout(cfg *config.Config, log logger.Logger) (*events.Fanout, error) {
	if cfg.EventsFile == "" {
		return events.NewFanout([]events.Publisher{events.NewLogPublisher("log", log)}), nil
	}

	reg, err := events.LoadRegistry(cfg.EventsFile)
	if err != nil {
		return nil, fmt.Errorf("load events registry: %w", err)
	}
	pubs, err := events.BuildAll(events.DefaultRegistry(), reg.Enabled(), log)
	if err != nil {
		return nil, fmt.Errorf("build event publishers: %w", err)
	}
	if len(pubs) == 0 {
		pubs = []events.Publisher{events.NewLogPublisher("log", log)}
	}
	return events.NewFanout(pubs), nil
}
