package fetcher

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/config"
	"amc-news-assistant/internal/observability"
)

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 8 << 20

// ErrEmptyURL is returned for a blank fetch target.
var ErrEmptyURL = errors.New("empty url")

type Fetcher struct {
	client      *http.Client
	cfg         *config.Config
	base        *url.URL
	logger      *observability.Logger
	metrics     *observability.Metrics
	robotsCache *RobotsCache
	rateLimiter *RateLimiter
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

func NewFetcher(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) (*Fetcher, error) {
	base, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	client := &http.Client{
		Timeout: cfg.GetHTTPTimeout(),
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        cfg.HTTP.MaxIdleConnections,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     cfg.GetIdleConnectionTimeout(),
		},
	}

	f := &Fetcher{
		client:      client,
		cfg:         cfg,
		base:        base,
		logger:      logger,
		metrics:     metrics,
		rateLimiter: NewRateLimiter(cfg.RateLimit.RPM, cfg.RateLimit.Burst),
	}
	if cfg.HTTP.RespectRobots {
		f.robotsCache = NewRobotsCache(client, cfg.HTTP.UserAgent, cfg.GetRobotsCacheTTL())
	}
	return f, nil
}

// Resolve turns rawURL into an absolute URL against the configured base.
func (f *Fetcher) Resolve(rawURL string) (string, error) {
	return resolve(f.base, rawURL)
}

func resolve(base *url.URL, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrEmptyURL
	}
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Fetch downloads rawURL, retrying up to http.max_attempts times. Every non-2xx
// response fails the attempt. The final failure is returned as a fetch error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResponse, error) {
	target, err := f.Resolve(rawURL)
	if err != nil {
		return nil, apperr.New(apperr.KindFetch, "fetch", err)
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return nil, apperr.New(apperr.KindFetch, "fetch", fmt.Errorf("invalid URL: %w", err))
	}

	if f.robotsCache != nil {
		allowed, err := f.robotsCache.IsAllowed(ctx, target)
		if err != nil {
			return nil, apperr.New(apperr.KindFetch, "fetch", fmt.Errorf("robots.txt check failed: %w", err))
		}
		if !allowed {
			return nil, apperr.Newf(apperr.KindFetch, "fetch", "URL disallowed by robots.txt: %s", target)
		}
	}

	if err := f.rateLimiter.Wait(ctx, parsedURL.Host); err != nil {
		return nil, apperr.New(apperr.KindFetch, "fetch", fmt.Errorf("rate limit error: %w", err))
	}

	var resp *FetchResponse
	attempts := f.cfg.HTTP.MaxAttempts
	err = retry(ctx, attempts, f.calculateBackoff, func(attempt int) error {
		f.logger.Debug("Fetching page", "url", target, "attempt", attempt, "max_attempts", attempts)

		r, fetchErr := f.fetchOnce(ctx, target)
		f.metrics.ObserveFetchAttempt(fetchErr)
		if fetchErr != nil {
			f.logger.Warn("Fetch attempt failed", "url", target, "attempt", attempt, "error", fetchErr)
			return fetchErr
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, apperr.New(apperr.KindFetch, "fetch "+target, err)
	}

	return resp, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, target string) (*FetchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.GetHTTPTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.cfg.HTTP.UserAgent)
	req.Header.Set("Accept-Language", f.cfg.HTTP.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Cache-Control", "max-age=0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.Debug("Failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Fetched page",
		"url", target,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"bytes", len(body),
	)

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Headers:    resp.Header,
	}, nil
}

// calculateBackoff returns the delay before the given retry (1-based). A zero
// backoff.min_ms retries immediately.
func (f *Fetcher) calculateBackoff(attempt int) time.Duration {
	minMS := f.cfg.Backoff.MinMS
	maxMS := f.cfg.Backoff.MaxMS
	jitterPct := f.cfg.Backoff.JitterPct
	if minMS <= 0 {
		return 0
	}
	if maxMS < minMS {
		maxMS = minMS
	}

	// Exponential backoff: min * 2^(attempt-1)
	exponential := minMS
	for i := 1; i < attempt && exponential < maxMS; i++ {
		exponential *= 2
	}
	if exponential > maxMS {
		exponential = maxMS
	}

	// Apply jitter: ±jitterPct%
	jitterRange := float64(exponential) * float64(jitterPct) / 100
	jitter := (rand.Float64() - 0.5) * 2 * jitterRange
	finalMS := float64(exponential) + jitter

	if finalMS < float64(minMS) {
		finalMS = float64(minMS)
	}

	return time.Duration(math.Max(finalMS, 0)) * time.Millisecond
}
