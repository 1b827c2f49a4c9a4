package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const maxRobotsBodyBytes = 512 * 1024

// RobotsCache caches parsed robots.txt per host. Missing or unreachable
// robots.txt allows everything.
type RobotsCache struct {
	client    *http.Client
	userAgent string
	cache     map[string]*robotsEntry
	ttl       time.Duration
	mu        sync.RWMutex
}

type robotsEntry struct {
	data      *robotstxt.RobotsData
	expiresAt time.Time
}

func NewRobotsCache(client *http.Client, userAgent string, ttl time.Duration) *RobotsCache {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RobotsCache{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotsEntry),
		ttl:       ttl,
	}
}

func (rc *RobotsCache) IsAllowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	if host == "" {
		return false, fmt.Errorf("empty host in url %q", rawURL)
	}

	rc.mu.RLock()
	cached, exists := rc.cache[host]
	rc.mu.RUnlock()

	if !exists || time.Now().After(cached.expiresAt) {
		cached = rc.fetch(ctx, parsed.Scheme, host)
		rc.mu.Lock()
		rc.cache[host] = cached
		rc.mu.Unlock()
	}

	if cached.data == nil {
		return true, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return cached.data.TestAgent(path, rc.userAgent), nil
}

func (rc *RobotsCache) fetch(ctx context.Context, scheme, host string) *robotsEntry {
	entry := &robotsEntry{expiresAt: time.Now().Add(rc.ttl)}
	if scheme == "" {
		scheme = "https"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+host+"/robots.txt", http.NoBody)
	if err != nil {
		return entry
	}
	req.Header.Set("User-Agent", rc.userAgent)

	resp, err := rc.client.Do(req)
	if err != nil {
		return entry
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return entry
	}

	// FromStatusAndBytes maps 4xx to allow-all and 5xx to disallow-all.
	// Server errors are treated as allow-all here.
	if resp.StatusCode >= 500 {
		return entry
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return entry
	}
	entry.data = data
	return entry
}
