package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"amc-news-assistant/internal/cache"
	"amc-news-assistant/internal/config"
	"amc-news-assistant/internal/fetcher"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/normalize"
	"amc-news-assistant/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body>
<div class="top-nav"><a href="/about">About</a></div>
<section>
  <h2>ኢትዮጵያ</h2>
  <ul>
    <li><a href="/news/1">የመጀመሪያ</a></li>
    <li><a href="/news/2#comments">ሁለተኛ</a></li>
  </ul>
</section>
<div class="post-list">
  <a href="/news/1">duplicate</a>
  <a href="/news/broken">broken</a>
  <a href="/news/untitled"></a>
  <a href="#">skip</a>
</div>
</body></html>`

const article1HTML = `<html><body>
<h1 class="entry-title">የመጀመሪያው ዜና</h1>
<span class="post-date">2024-03-01</span>
<a class="category-link">ፖለቲካ</a>
<div class="post-content"><p>የኢትዮጵያ   ዜና ይዘት</p><script>track()</script></div>
</body></html>`

const article2HTML = `<html><body>
<h2 class="post-heading">ሁለተኛው ዜና</h2>
<time class="published-time">2024-03-05</time>
<div class="entry-body">ሌላ ይዘት</div>
</body></html>`

const untitledHTML = `<html><body><div class="content">no title here</div></body></html>`

type siteServer struct {
	*httptest.Server
	requests atomic.Int32
}

func newSite(t *testing.T) *siteServer {
	t.Helper()
	site := &siteServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		site.requests.Add(1)
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(listingHTML))
	})
	pages := map[string]string{
		"/news/1":        article1HTML,
		"/news/2":        article2HTML,
		"/news/untitled": untitledHTML,
	}
	for path, body := range pages {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			site.requests.Add(1)
			_, _ = w.Write([]byte(body))
		})
	}
	mux.HandleFunc("/news/broken", func(w http.ResponseWriter, r *http.Request) {
		site.requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	site.Server = httptest.NewServer(mux)
	t.Cleanup(site.Close)
	return site
}

func newTestExtractor(t *testing.T, baseURL string) *Extractor {
	t.Helper()
	ex, err := NewExtractor(DefaultSelectors(), baseURL, normalize.NewNormalizer(config.NormalizeConfig{
		TrimNBSP:       true,
		CollapseSpaces: true,
	}))
	require.NoError(t, err)
	return ex
}

func newTestScraper(t *testing.T, baseURL string, c cache.Cache) *ContentScraper {
	t.Helper()
	cfg := config.Default()
	cfg.Site.BaseURL = baseURL
	cfg.HTTP.RespectRobots = false
	cfg.RateLimit.RPM = 0

	f, err := fetcher.NewFetcher(&cfg, observability.NewNopLogger(), nil)
	require.NoError(t, err)

	return NewContentScraper(baseURL, f, newTestExtractor(t, baseURL), c, observability.NewNopLogger(), ScraperOptions{})
}

func TestExtractListing(t *testing.T) {
	ex := newTestExtractor(t, "https://ameco.et")

	candidates, err := ex.ExtractListing(listingHTML)
	require.NoError(t, err)

	var urls []string
	for _, c := range candidates {
		urls = append(urls, c.URL)
	}
	assert.Equal(t, []string{
		"https://ameco.et/news/1",
		"https://ameco.et/news/2",
		"https://ameco.et/news/broken",
		"https://ameco.et/news/untitled",
	}, urls)
	assert.Equal(t, "የመጀመሪያ", candidates[0].AnchorText)
}

func TestExtractArticle(t *testing.T) {
	ex := newTestExtractor(t, "https://ameco.et")

	article, ok, err := ex.ExtractArticle(article1HTML, Candidate{URL: "https://ameco.et/news/1", AnchorText: "anchor"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "የመጀመሪያው ዜና", article.Title)
	assert.Equal(t, "የኢትዮጵያ ዜና ይዘት", article.Content)
	assert.Equal(t, "2024-03-01", article.Date)
	assert.Equal(t, "ፖለቲካ", article.Category)
	assert.Equal(t, "https://ameco.et/news/1", article.URL)
}

func TestExtractArticleDefaults(t *testing.T) {
	ex := newTestExtractor(t, "https://ameco.et")

	article, ok, err := ex.ExtractArticle(`<html><body><p>plain</p></body></html>`, Candidate{URL: "https://ameco.et/x", AnchorText: "ከመልህቅ"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ከመልህቅ", article.Title, "anchor text is the title fallback")
	assert.Equal(t, "", article.Content)
	assert.Equal(t, "", article.Date)
	assert.Equal(t, models.DefaultCategory, article.Category)

	_, ok, err = ex.ExtractArticle(untitledHTML, Candidate{URL: "https://ameco.et/untitled"})
	require.NoError(t, err)
	assert.False(t, ok, "no title means no article")

	_, ok, err = ex.ExtractArticle(article1HTML, Candidate{})
	require.NoError(t, err)
	assert.False(t, ok, "no url means no article")
}

func TestCustomMatchers(t *testing.T) {
	selectors := DefaultSelectors()
	selectors.Title = []ClassHint{{Tags: []string{"div"}, ClassTerms: []string{"headline"}}}

	ex, err := NewExtractor(selectors, "https://ameco.et", normalize.NewNormalizer(config.NormalizeConfig{CollapseSpaces: true}))
	require.NoError(t, err)

	article, ok, err := ex.ExtractArticle(`<div class="Main-Headline">ርዕስ</div>`, Candidate{URL: "https://ameco.et/a"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ርዕስ", article.Title)
}

func TestLoadSelectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selectors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
section_keywords: ["ስፖርት"]
title:
  - tags: [h1]
    class_terms: [headline]
`), 0o644))

	s, err := LoadSelectors(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ስፖርት"}, s.SectionKeywords)
	assert.Equal(t, []string{"headline"}, s.Title[0].ClassTerms)
	assert.Equal(t, DefaultSelectors().Content, s.Content, "unset keys keep defaults")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("title:\n  - tags: [h1]\n"), 0o644))
	_, err = LoadSelectors(bad)
	assert.Error(t, err)

	_, err = LoadSelectors("")
	assert.Error(t, err)
}

func TestGetArticlesLiveScrape(t *testing.T) {
	site := newSite(t)
	c := cache.NewFileCache(filepath.Join(t.TempDir(), "amc_cache.json"), time.Hour, observability.NewNopLogger())
	s := newTestScraper(t, site.URL, c)

	articles := s.GetArticles(context.Background())

	require.Len(t, articles, 2)
	assert.Equal(t, "የመጀመሪያው ዜና", articles[0].Title)
	assert.Equal(t, site.URL+"/news/1", articles[0].URL)
	assert.Equal(t, "ሁለተኛው ዜና", articles[1].Title)
	assert.Equal(t, site.URL+"/news/2", articles[1].URL)

	snap, ok := c.Load(context.Background())
	require.True(t, ok, "successful scrape is cached")
	assert.Len(t, snap.Data, 2)
}

func TestGetArticlesFreshCacheSkipsNetwork(t *testing.T) {
	site := newSite(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "amc_cache.json")
	writer := cache.NewFileCache(path, time.Hour, observability.NewNopLogger(),
		cache.WithClock(func() time.Time { return time.Now().Add(-45 * time.Minute) }))
	cached := []models.Article{{Title: "ተሸጎጠ", URL: "https://ameco.et/cached", Category: "News"}}
	require.NoError(t, writer.Save(ctx, cached))

	s := newTestScraper(t, site.URL, cache.NewFileCache(path, time.Hour, observability.NewNopLogger()))

	articles := s.GetArticles(ctx)
	assert.Equal(t, cached, articles)
	assert.Equal(t, int32(0), site.requests.Load())
}

func TestGetArticlesStaleFallback(t *testing.T) {
	ctx := context.Background()
	offline := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer offline.Close()

	path := filepath.Join(t.TempDir(), "amc_cache.json")
	old := cache.NewFileCache(path, time.Hour, observability.NewNopLogger(),
		cache.WithClock(func() time.Time { return time.Now().Add(-48 * time.Hour) }))
	stale := []models.Article{{Title: "የቆየ", URL: "https://ameco.et/old", Category: "News"}}
	require.NoError(t, old.Save(ctx, stale))

	s := newTestScraper(t, offline.URL, cache.NewFileCache(path, time.Hour, observability.NewNopLogger()))

	assert.Equal(t, stale, s.GetArticles(ctx))
}

func TestGetArticlesEmptyFallback(t *testing.T) {
	offline := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer offline.Close()

	c := cache.NewFileCache(filepath.Join(t.TempDir(), "amc_cache.json"), time.Hour, observability.NewNopLogger())
	s := newTestScraper(t, offline.URL, c)

	articles := s.GetArticles(context.Background())
	require.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestRefreshIgnoresFreshCache(t *testing.T) {
	site := newSite(t)
	ctx := context.Background()
	c := cache.NewFileCache(filepath.Join(t.TempDir(), "amc_cache.json"), time.Hour, observability.NewNopLogger())
	require.NoError(t, c.Save(ctx, []models.Article{{Title: "old", URL: "https://ameco.et/old"}}))

	s := newTestScraper(t, site.URL, c)
	articles, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Positive(t, site.requests.Load())
}

func TestMaxLinks(t *testing.T) {
	site := newSite(t)
	c := cache.NewFileCache(filepath.Join(t.TempDir(), "amc_cache.json"), time.Hour, observability.NewNopLogger())
	s := newTestScraper(t, site.URL, c)
	s.maxLinks = 1

	articles, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}
