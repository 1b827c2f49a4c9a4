package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"amc-news-assistant/internal/cache"
	"amc-news-assistant/internal/config"
	"amc-news-assistant/internal/fetcher"
	"amc-news-assistant/internal/institutional"
	"amc-news-assistant/internal/normalize"
	"amc-news-assistant/internal/observability"
	"amc-news-assistant/internal/ranker"
	"amc-news-assistant/internal/scraper"
	"amc-news-assistant/internal/storage"
	"amc-news-assistant/internal/storage/mssql"
	"amc-news-assistant/internal/storage/postgres"
)

// Services holds everything built from one configuration.
type Services struct {
	Config       *config.Config
	Logger       *observability.Logger
	Metrics      *observability.Metrics
	Scraper      *scraper.ContentScraper
	Store        storage.Repository
	Orchestrator *Orchestrator
	Refresher    *Refresher

	browser *fetcher.BrowserFetcher
	redis   *redis.Client
}

// Bootstrap wires the pipeline. A store that cannot be reached is logged and
// left out; every other failure is returned.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Services, error) {
	s := &Services{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	pageFetcher, err := s.buildFetcher()
	if err != nil {
		return nil, err
	}

	selectors := scraper.DefaultSelectors()
	if cfg.Site.SelectorsFile != "" {
		selectors, err = scraper.LoadSelectors(cfg.Site.SelectorsFile)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to load selectors: %w", err)
		}
	}

	extractor, err := scraper.NewExtractor(selectors, cfg.Site.BaseURL, normalize.NewNormalizer(cfg.Normalize))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	c, err := s.buildCache()
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Scraper = scraper.NewContentScraper(cfg.Site.BaseURL, pageFetcher, extractor, c, logger,
		scraper.ScraperOptions{MaxLinks: cfg.Site.MaxLinks, Metrics: s.Metrics})

	s.Store = s.buildStore(ctx)

	s.Orchestrator = NewOrchestrator(
		s.Store,
		s.Scraper,
		ranker.NewRanker(ranker.DefaultLimit),
		institutional.NewAnswerer(),
		scraper.NewDateParser(),
		cfg.Storage.QueryLimit,
		logger,
		s.Metrics,
	)

	s.Refresher, err = NewRefresher(cfg.Scheduler, cfg.GetStoreMaxAge(), s.Scraper, s.Store, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Services) buildFetcher() (scraper.PageFetcher, error) {
	if s.Config.Rod.Enabled {
		b, err := fetcher.NewBrowserFetcher(s.Config, s.Logger, s.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create browser fetcher: %w", err)
		}
		s.browser = b
		return b, nil
	}

	f, err := fetcher.NewFetcher(s.Config, s.Logger, s.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}
	return f, nil
}

func (s *Services) buildCache() (cache.Cache, error) {
	cfg := s.Config.Cache
	switch cfg.Backend {
	case "redis":
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.redis = client
		return cache.NewRedisCache(client, cfg.Redis.Key, s.Config.GetCacheDuration(), s.Logger), nil
	default:
		return cache.NewFileCache(cfg.Path, s.Config.GetCacheDuration(), s.Logger), nil
	}
}

func (s *Services) buildStore(ctx context.Context) storage.Repository {
	cfg := s.Config.Storage

	var (
		store storage.Repository
		err   error
	)
	switch cfg.Driver {
	case "mssql":
		store, err = mssql.NewRepository(cfg.DSN, cfg.CommandTimeoutMS, s.Logger)
	case "postgres":
		store, err = postgres.NewRepository(ctx, cfg.DSN, cfg.CommandTimeoutMS, s.Logger)
	default:
		s.Logger.Info("Article store disabled, serving from scrapes only")
		return nil
	}

	if err != nil {
		s.Logger.Warn("Article store not available", "driver", cfg.Driver, "error", err)
		return nil
	}
	s.Logger.Info("Connected to article store", "driver", cfg.Driver)
	return store
}

// Close releases the store, the redis connection and the browser.
func (s *Services) Close() error {
	var errs []error
	if s.Refresher != nil {
		s.Refresher.Stop()
	}
	if s.Store != nil {
		errs = append(errs, s.Store.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	return errors.Join(errs...)
}
