package app

import (
	"context"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/institutional"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/observability"
	"amc-news-assistant/internal/ranker"
	"amc-news-assistant/internal/scraper"
	"amc-news-assistant/internal/storage"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	SourceInfo = "AMC Info"
	SourceNews = "AMC News"

	MessageFound    = "Content retrieved successfully"
	MessageNotFound = "No relevant content found"
)

// ArticleSource returns the current article list and never fails.
type ArticleSource interface {
	GetArticles(ctx context.Context) []models.Article
}

type Request struct {
	Message  string `json:"message"`
	Language string `json:"language,omitempty"`
}

type ContextEntry struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Date     string `json:"date"`
	Language string `json:"language"`
}

type Response struct {
	Status          string         `json:"status"`
	Context         []ContextEntry `json:"context"`
	Source          string         `json:"source"`
	Message         string         `json:"message"`
	IsInstitutional bool           `json:"is_institutional"`
	TotalResults    int            `json:"total_results"`
}

// Orchestrator answers one question from static institutional text, the
// article store, or a scrape of the site, in that order.
type Orchestrator struct {
	store      storage.Repository
	source     ArticleSource
	ranker     *ranker.Ranker
	answerer   *institutional.Answerer
	dateParser *scraper.DateParser
	queryLimit int
	logger     *observability.Logger
	metrics    *observability.Metrics
}

// NewOrchestrator builds an orchestrator. store may be nil.
func NewOrchestrator(
	store storage.Repository,
	source ArticleSource,
	r *ranker.Ranker,
	answerer *institutional.Answerer,
	dp *scraper.DateParser,
	queryLimit int,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Orchestrator {
	if queryLimit <= 0 {
		queryLimit = 5
	}
	return &Orchestrator{
		store:      store,
		source:     source,
		ranker:     r,
		answerer:   answerer,
		dateParser: dp,
		queryLimit: queryLimit,
		logger:     logger,
		metrics:    metrics,
	}
}

// Ask answers req. A blank message yields a validation error and touches
// neither the store nor the site.
func (o *Orchestrator) Ask(ctx context.Context, req Request) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Panic while processing question", "panic", r, "stack", string(debug.Stack()))
			resp = Response{}
			err = apperr.Newf(apperr.KindInternal, "ask", "%v", r)
		}
	}()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, apperr.Newf(apperr.KindValidation, "ask", "No message provided")
	}

	o.logger.Info("Processing question", "message", message)

	if o.answerer.IsInstitutional(message) {
		kind := o.answerer.Classify(message)
		o.metrics.ObserveAsk(SourceInfo)
		return Response{
			Status:          StatusSuccess,
			Context:         []ContextEntry{},
			Source:          SourceInfo,
			Message:         o.answerer.Answer(kind, req.Language),
			IsInstitutional: true,
			TotalResults:    0,
		}, nil
	}

	entries := o.fromStore(ctx, message)
	if len(entries) == 0 {
		entries = o.fromScrape(ctx, message)
	}

	entries = o.cleanEntries(entries)
	o.sortByDate(entries)

	resp = Response{
		Status:       StatusSuccess,
		Context:      entries,
		Source:       SourceNews,
		Message:      MessageNotFound,
		TotalResults: len(entries),
	}
	if len(entries) > 0 {
		resp.Message = MessageFound
	}

	o.metrics.ObserveAsk(SourceNews)
	o.logger.Info("Successfully processed request", "total_results", resp.TotalResults)
	return resp, nil
}

func (o *Orchestrator) fromStore(ctx context.Context, message string) []ContextEntry {
	if o.store == nil {
		return nil
	}

	articles, err := o.store.GetArticles(ctx, message, o.queryLimit)
	if err != nil {
		o.logger.Warn("Error retrieving articles from store", "error", err)
		return nil
	}
	o.logger.Info("Found articles in database", "count", len(articles))

	entries := make([]ContextEntry, 0, len(articles))
	for _, a := range articles {
		entries = append(entries, ContextEntry{Title: a.Title, URL: a.URL, Date: a.Date, Language: a.Language})
	}
	return entries
}

func (o *Orchestrator) fromScrape(ctx context.Context, message string) []ContextEntry {
	o.logger.Info("Attempting to scrape new content")

	articles := o.source.GetArticles(ctx)
	results := o.ranker.Rank(articles, message, true)
	if len(results) == 0 {
		o.logger.Warn("No relevant articles found from scraping", "scraped", len(articles))
	}

	if o.store != nil && len(articles) > 0 {
		if err := o.store.SaveArticles(ctx, articles); err != nil {
			o.logger.Warn("Could not save articles to store", "error", err)
		} else {
			o.logger.Info("Saved scraped articles to database", "count", len(articles))
		}
	}

	entries := make([]ContextEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, ContextEntry{Title: r.Title, URL: r.URL, Date: r.Date, Language: r.Language})
	}
	return entries
}

// cleanEntries trims fields, drops entries without title or URL and defaults the language.
func (o *Orchestrator) cleanEntries(entries []ContextEntry) []ContextEntry {
	cleaned := make([]ContextEntry, 0, len(entries))
	for _, e := range entries {
		e.Title = strings.TrimSpace(e.Title)
		e.URL = strings.TrimSpace(e.URL)
		e.Date = strings.TrimSpace(e.Date)
		e.Language = strings.ToLower(strings.TrimSpace(e.Language))
		if e.Language == "" {
			e.Language = models.LangAmharic
		}

		if e.Title == "" || e.URL == "" {
			o.logger.Warn("Skipping article with missing title or URL", "url", e.URL)
			continue
		}
		cleaned = append(cleaned, e)
	}
	return cleaned
}

// sortByDate orders newest first. Unparsable dates sort last, ties fall back
// to the raw string descending.
func (o *Orchestrator) sortByDate(entries []ContextEntry) {
	instants := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		if _, ok := instants[e.Date]; ok {
			continue
		}
		t, err := o.dateParser.Parse(e.Date)
		if err != nil {
			t = time.Time{}
		}
		instants[e.Date] = t
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := instants[entries[i].Date], instants[entries[j].Date]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return entries[i].Date > entries[j].Date
	})
}
