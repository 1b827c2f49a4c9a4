// Package ranker scores articles against a free-text question by token overlap.
package ranker

import (
	"sort"
	"strings"

	"amc-news-assistant/internal/models"
)

const (
	DefaultLimit = 10

	exactTitleScore = 10
	termTitleScore  = 5
	termBodyScore   = 2
)

// Candidate is an article with its relevance score.
type Candidate struct {
	Article    models.Article
	Score      int
	ExactMatch bool
}

// Result is a ranked article without its body.
type Result struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Language string `json:"language"`
}

type Ranker struct {
	limit int
}

func NewRanker(limit int) *Ranker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Ranker{limit: limit}
}

// Score computes the relevance of one article. Articles without a title or
// URL score zero.
func Score(article models.Article, query string) Candidate {
	c := Candidate{Article: article}
	if !article.Valid() {
		return c
	}

	q := strings.ToLower(query)
	title := strings.ToLower(article.Title)
	content := strings.ToLower(article.Content)

	if strings.Contains(title, q) {
		c.Score += exactTitleScore
		c.ExactMatch = true
	}
	for _, term := range strings.Fields(q) {
		if strings.Contains(title, term) {
			c.Score += termTitleScore
		}
		if strings.Contains(content, term) {
			c.Score += termBodyScore
		}
	}
	return c
}

// Rank returns at most the configured number of relevant articles, exact title
// matches first and then by score. Ties keep input order. English articles are
// dropped unless includeEnglish is set.
func (r *Ranker) Rank(articles []models.Article, query string, includeEnglish bool) []Result {
	if strings.TrimSpace(query) == "" {
		return []Result{}
	}

	candidates := make([]Candidate, 0, len(articles))
	for _, a := range articles {
		c := Score(a, query)
		if c.Score <= 0 && !c.ExactMatch {
			continue
		}
		if !includeEnglish && models.DetectLanguage(a.Title) == models.LangEnglish {
			continue
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].ExactMatch != candidates[j].ExactMatch {
			return candidates[i].ExactMatch
		}
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > r.limit {
		candidates = candidates[:r.limit]
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, Result{
			Title:    c.Article.Title,
			URL:      c.Article.URL,
			Date:     c.Article.Date,
			Category: c.Article.Category,
			Language: models.DetectLanguage(c.Article.Title),
		})
	}
	return results
}
