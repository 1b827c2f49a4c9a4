package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"amc-news-assistant/internal/config"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/observability"
	"amc-news-assistant/internal/storage"
)

// RefreshSource forces a scrape that bypasses the freshness cache.
type RefreshSource interface {
	Refresh(ctx context.Context) ([]models.Article, error)
}

// RefreshStats describes one refresh pass.
type RefreshStats struct {
	Scraped int
	Saved   int
	Pruned  int64
}

// Refresher keeps the cache and the article store warm on a schedule.
type Refresher struct {
	source RefreshSource
	store  storage.Repository
	maxAge time.Duration
	mode   string
	spec   string
	logger *observability.Logger
	now    func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewRefresher builds a refresher from the scheduler config. store may be nil.
func NewRefresher(cfg config.SchedulerConfig, maxAge time.Duration, source RefreshSource, store storage.Repository, logger *observability.Logger) (*Refresher, error) {
	r := &Refresher{
		source: source,
		store:  store,
		maxAge: maxAge,
		mode:   cfg.Mode,
		logger: logger,
		now:    time.Now,
	}

	switch cfg.Mode {
	case "interval":
		if cfg.IntervalS <= 0 {
			return nil, fmt.Errorf("scheduler interval must be > 0")
		}
		r.spec = fmt.Sprintf("@every %ds", cfg.IntervalS)
	case "cron":
		if _, err := cron.ParseStandard(cfg.CronExpr); err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.CronExpr, err)
		}
		r.spec = cfg.CronExpr
	case "oneshot", "off":
	default:
		return nil, fmt.Errorf("unknown scheduler mode: %s", cfg.Mode)
	}
	return r, nil
}

// Start schedules refresh passes. In oneshot mode a single pass runs in the
// background; in off mode nothing is scheduled.
func (r *Refresher) Start(ctx context.Context) error {
	switch r.mode {
	case "off":
		r.logger.Info("Scheduled refresh disabled")
		return nil
	case "oneshot":
		go r.runLogged(ctx)
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DefaultLogger)))
	if _, err := c.AddFunc(r.spec, func() { r.runLogged(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	c.Start()
	r.cron = c
	r.running = true

	r.logger.Info("Scheduled refresh started", "mode", r.mode, "schedule", r.spec)
	return nil
}

// Stop waits for a running pass to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	<-r.cron.Stop().Done()
	r.running = false
	r.logger.Info("Scheduled refresh stopped")
}

// RunOnce scrapes the site, saves the result and prunes stale rows from the store.
func (r *Refresher) RunOnce(ctx context.Context) (RefreshStats, error) {
	var stats RefreshStats

	articles, err := r.source.Refresh(ctx)
	if err != nil {
		return stats, err
	}
	stats.Scraped = len(articles)

	if r.store == nil {
		return stats, nil
	}

	if err := r.store.SaveArticles(ctx, articles); err != nil {
		return stats, err
	}
	stats.Saved = len(articles)

	if r.maxAge > 0 {
		pruned, err := r.store.PruneOlderThan(ctx, r.now().Add(-r.maxAge))
		if err != nil {
			return stats, err
		}
		stats.Pruned = pruned
	}
	return stats, nil
}

func (r *Refresher) runLogged(ctx context.Context) {
	start := time.Now()
	stats, err := r.RunOnce(ctx)
	if err != nil {
		r.logger.Error("Refresh failed", "error", err, "duration", time.Since(start).String())
		return
	}
	r.logger.Info("Refresh completed",
		"scraped", stats.Scraped,
		"saved", stats.Saved,
		"pruned", stats.Pruned,
		"duration", time.Since(start).String(),
	)
}
