package storage

import (
	"context"
	"strings"
	"time"

	"amc-news-assistant/internal/models"
)

// Repository persists articles keyed by URL.
type Repository interface {
	// SaveArticles upserts by URL and stamps the last-updated time. Invalid articles are skipped.
	SaveArticles(ctx context.Context, articles []models.Article) error

	// GetArticles runs a full-text search, falls back to a case-insensitive
	// substring match when that finds nothing, and returns the most recently
	// updated articles when query is empty.
	GetArticles(ctx context.Context, query string, limit int) ([]models.Article, error)

	// GetArticleByURL returns found=false when no article has that URL.
	GetArticleByURL(ctx context.Context, url string) (article models.Article, found bool, err error)

	// PruneOlderThan deletes articles not updated since cutoff and returns how many were removed.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// SearchTerms splits a query into distinct lower-cased words.
func SearchTerms(query string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		f = strings.Trim(f, `"'?!.,;:()[]{}«»“”`)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// EscapeLike escapes LIKE wildcards using backslash as the escape character.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `[`, `\[`)
	return r.Replace(s)
}
