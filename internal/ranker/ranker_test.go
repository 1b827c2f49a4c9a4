package ranker

import (
	"fmt"
	"testing"

	"amc-news-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		article   models.Article
		query     string
		wantScore int
		wantExact bool
	}{
		{
			name:      "exact title match with single term",
			article:   models.Article{Title: "ኢትዮጵያ", URL: "u", Content: ""},
			query:     "ኢትዮጵያ",
			wantScore: 15,
			wantExact: true,
		},
		{
			name:      "term in title and content",
			article:   models.Article{Title: "የኢትዮጵያ ዜና", URL: "u", Content: "ስለ ኢትዮጵያ"},
			query:     "ኢትዮጵያ",
			wantScore: 17,
			wantExact: true,
		},
		{
			name:      "content only",
			article:   models.Article{Title: "ዜና", URL: "u", Content: "ስለ ግብርና"},
			query:     "ግብርና",
			wantScore: 2,
		},
		{
			name:      "case insensitive multi term",
			article:   models.Article{Title: "Africa Summit", URL: "u", Content: "leaders met"},
			query:     "AFRICA leaders",
			wantScore: 5 + 2,
		},
		{
			name:    "missing url scores zero",
			article: models.Article{Title: "ኢትዮጵያ"},
			query:   "ኢትዮጵያ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Score(tt.article, tt.query)
			assert.Equal(t, tt.wantScore, c.Score)
			assert.Equal(t, tt.wantExact, c.ExactMatch)
		})
	}
}

func TestRankOrderingIsStable(t *testing.T) {
	articles := []models.Article{
		{Title: "ግብርና", URL: "a", Content: "ኢትዮጵያ"},  // 2
		{Title: "ኢትዮጵያ", URL: "b"},                 // exact 15
		{Title: "ሌላ", URL: "c", Content: "ኢትዮጵያ"},   // 2
		{Title: "ስፖርት", URL: "d"},                   // 0
		{Title: "የኢትዮጵያ", URL: "e", Content: "x"},   // exact 15
		{Title: "ባህል", URL: "f", Content: "ኢትዮጵያ"},  // 2
	}

	results := NewRanker(0).Rank(articles, "ኢትዮጵያ", true)

	var urls []string
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	assert.Equal(t, []string{"b", "e", "a", "c", "f"}, urls)
}

func TestRankLimitsResults(t *testing.T) {
	var articles []models.Article
	for i := 0; i < 25; i++ {
		articles = append(articles, models.Article{Title: "ዜና", URL: fmt.Sprintf("u%d", i), Content: "ዜና"})
	}

	results := NewRanker(DefaultLimit).Rank(articles, "ዜና", true)
	assert.Len(t, results, DefaultLimit)
	assert.Equal(t, "u0", results[0].URL)
}

func TestRankNoZeroScoreEntries(t *testing.T) {
	articles := []models.Article{
		{Title: "ስፖርት", URL: "a", Content: "እግር ኳስ"},
		{Title: "ባህል", URL: "b"},
	}

	results := NewRanker(0).Rank(articles, "ኢኮኖሚ", true)
	require.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRankEnglishFilter(t *testing.T) {
	articles := []models.Article{
		{Title: "Ethiopia news", URL: "en", Content: "ኢትዮጵያ"},
		{Title: "ኢትዮጵያ", URL: "am"},
	}

	withEnglish := NewRanker(0).Rank(articles, "ኢትዮጵያ", true)
	require.Len(t, withEnglish, 2)
	assert.Equal(t, "am", withEnglish[0].URL)
	assert.Equal(t, models.LangAmharic, withEnglish[0].Language)
	assert.Equal(t, models.LangEnglish, withEnglish[1].Language)

	amharicOnly := NewRanker(0).Rank(articles, "ኢትዮጵያ", false)
	require.Len(t, amharicOnly, 1)
	assert.Equal(t, "am", amharicOnly[0].URL)
}

func TestRankResultsCarryNoContent(t *testing.T) {
	articles := []models.Article{{Title: "ዜና", URL: "u", Date: "2024-01-01", Category: "Sport", Content: "ዜና"}}

	results := NewRanker(0).Rank(articles, "ዜና", true)
	require.Len(t, results, 1)
	assert.Equal(t, Result{Title: "ዜና", URL: "u", Date: "2024-01-01", Category: "Sport", Language: models.LangAmharic}, results[0])
}
