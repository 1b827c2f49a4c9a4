package scraper

import (
	"context"
	"fmt"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/cache"
	"amc-news-assistant/internal/fetcher"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/observability"
)

// PageFetcher downloads a page. Relative URLs are resolved against the site base.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.FetchResponse, error)
}

// ContentScraper produces the current article list for the site, preferring a
// fresh cached snapshot over network access.
type ContentScraper struct {
	rootURL   string
	maxLinks  int
	fetcher   PageFetcher
	extractor *Extractor
	cache     cache.Cache
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// ScraperOptions configures optional ContentScraper collaborators.
type ScraperOptions struct {
	// MaxLinks caps how many candidates are fetched per pass. 0 means no cap.
	MaxLinks int
	Metrics  *observability.Metrics
}

func NewContentScraper(
	rootURL string,
	f PageFetcher,
	extractor *Extractor,
	c cache.Cache,
	logger *observability.Logger,
	opts ScraperOptions,
) *ContentScraper {
	return &ContentScraper{
		rootURL:   rootURL,
		maxLinks:  opts.MaxLinks,
		fetcher:   f,
		extractor: extractor,
		cache:     c,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// GetArticles never fails. A fresh snapshot is returned as is. Otherwise the
// site is scraped; when that yields nothing the last snapshot is returned
// regardless of its age, and failing that an empty list.
func (s *ContentScraper) GetArticles(ctx context.Context) []models.Article {
	if snap, ok := s.cache.Load(ctx); ok && len(snap.Data) > 0 {
		s.metrics.ObserveScrape(observability.ScrapeFreshCache, len(snap.Data))
		return snap.Data
	}

	articles, err := s.Refresh(ctx)
	if err == nil {
		return articles
	}

	s.logger.Error("Error scraping AMC website", "url", s.rootURL, "error", err)
	return s.fallback(ctx)
}

// Refresh scrapes the site ignoring the cache and stores a non-empty result.
// It returns an error when the root page cannot be fetched or nothing was found.
func (s *ContentScraper) Refresh(ctx context.Context) ([]models.Article, error) {
	articles, err := s.scrape(ctx)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		s.logger.Warn("No news items found", "url", s.rootURL)
		return nil, apperr.Newf(apperr.KindExtraction, "scrape", "no articles found at %s", s.rootURL)
	}

	if err := s.cache.Save(ctx, articles); err != nil {
		// Policy for cache errors is to carry on without the cache.
		s.logger.Warn("Cache saving error", "error", err, "policy", apperr.PolicyFor(apperr.KindOf(err)))
	}

	s.metrics.ObserveScrape(observability.ScrapeLive, len(articles))
	s.logger.Info("Successfully processed articles", "count", len(articles))
	return articles, nil
}

func (s *ContentScraper) fallback(ctx context.Context) []models.Article {
	if snap, ok := s.cache.LoadStale(ctx); ok && len(snap.Data) > 0 {
		s.logger.Warn("Serving stale cache", "timestamp", snap.Timestamp, "articles", len(snap.Data))
		s.metrics.ObserveScrape(observability.ScrapeStaleCache, len(snap.Data))
		return snap.Data
	}
	s.metrics.ObserveScrape(observability.ScrapeEmpty, 0)
	return []models.Article{}
}

func (s *ContentScraper) scrape(ctx context.Context) ([]models.Article, error) {
	s.logger.Info("Fetching content", "url", s.rootURL)

	resp, err := s.fetcher.Fetch(ctx, s.rootURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch main page: %w", err)
	}

	candidates, err := s.extractor.ExtractListing(string(resp.Body))
	if err != nil {
		return nil, err
	}
	s.logger.Info("Found candidate links", "count", len(candidates))

	seen := make(map[string]bool, len(candidates))
	articles := make([]models.Article, 0, len(candidates))

	for i, candidate := range candidates {
		if s.maxLinks > 0 && i >= s.maxLinks {
			s.logger.Info("Link cap reached", "max_links", s.maxLinks)
			break
		}
		if err := ctx.Err(); err != nil {
			return articles, err
		}
		if seen[candidate.URL] {
			continue
		}

		article, ok := s.processLink(ctx, candidate)
		if !ok || seen[article.URL] {
			continue
		}
		seen[article.URL] = true
		articles = append(articles, article)
	}

	return articles, nil
}

// processLink fetches and extracts one candidate. Failures are logged and skipped.
func (s *ContentScraper) processLink(ctx context.Context, candidate Candidate) (models.Article, bool) {
	s.logger.Debug("Processing URL", "url", candidate.URL)

	resp, err := s.fetcher.Fetch(ctx, candidate.URL)
	if err != nil {
		s.logger.Warn("Error processing link", "url", candidate.URL, "error", err, "policy", apperr.PolicySkipItem)
		return models.Article{}, false
	}

	article, ok, err := s.extractor.ExtractArticle(string(resp.Body), candidate)
	if err != nil {
		s.logger.Warn("Error extracting article", "url", candidate.URL, "error", err, "policy", apperr.PolicyFor(apperr.KindExtraction))
		return models.Article{}, false
	}
	if !ok {
		s.logger.Debug("Skipping link without title", "url", candidate.URL)
		return models.Article{}, false
	}

	s.logger.Info("Added article", "title", article.Title, "url", article.URL)
	return article, true
}
