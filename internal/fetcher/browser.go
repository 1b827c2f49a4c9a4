package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/config"
	"amc-news-assistant/internal/observability"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserFetcher renders pages in headless Chrome. Used for listings that are
// built client-side. The browser is launched on first use.
type BrowserFetcher struct {
	cfg     *config.Config
	base    *url.URL
	logger  *observability.Logger
	metrics *observability.Metrics

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

func NewBrowserFetcher(cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics) (*BrowserFetcher, error) {
	base, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	return &BrowserFetcher{
		cfg:     cfg,
		base:    base,
		logger:  logger,
		metrics: metrics,
	}, nil
}

func (b *BrowserFetcher) Resolve(rawURL string) (string, error) {
	return resolve(b.base, rawURL)
}

func (b *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*FetchResponse, error) {
	target, err := b.Resolve(rawURL)
	if err != nil {
		return nil, apperr.New(apperr.KindFetch, "browser fetch", err)
	}

	browser, err := b.ensureBrowser()
	if err != nil {
		return nil, apperr.New(apperr.KindFetch, "browser fetch", err)
	}

	var html string
	attempts := b.cfg.HTTP.MaxAttempts
	err = retry(ctx, attempts, func(int) time.Duration { return 0 }, func(attempt int) error {
		h, renderErr := b.render(ctx, browser, target)
		b.metrics.ObserveFetchAttempt(renderErr)
		if renderErr != nil {
			b.logger.Warn("Browser render failed", "url", target, "attempt", attempt, "error", renderErr)
			return renderErr
		}
		html = h
		return nil
	})
	if err != nil {
		return nil, apperr.New(apperr.KindFetch, "browser fetch "+target, err)
	}

	return &FetchResponse{
		StatusCode: 200,
		Body:       []byte(html),
		URL:        target,
	}, nil
}

func (b *BrowserFetcher) render(ctx context.Context, browser *rod.Browser, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.GetRodPageTimeout())
	defer cancel()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return "", fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.Timeout(b.cfg.GetRodWaitLoadTimeout()).WaitLoad(); err != nil {
		return "", fmt.Errorf("wait load: %w", err)
	}

	if delay := b.cfg.GetRodLazyLoadDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("read html: %w", err)
	}
	b.logger.Debug("Rendered page", "url", target, "bytes", len(html))
	return html, nil
}

func (b *BrowserFetcher) ensureBrowser() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	l := launcher.New().Headless(true)
	if b.cfg.Rod.ChromePath != "" {
		l = l.Bin(b.cfg.Rod.ChromePath)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect chrome: %w", err)
	}

	b.launcher = l
	b.browser = browser
	b.logger.Info("Headless browser started", "control_url", controlURL)
	return browser, nil
}

// Close shuts the browser down if it was started.
func (b *BrowserFetcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Kill()
	b.browser = nil
	b.launcher = nil
	return err
}
