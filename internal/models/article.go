package models

import (
	"strings"
	"unicode/utf8"
)

const (
	LangAmharic = "am"
	LangEnglish = "en"

	DefaultCategory = "News"
)

// Article is a single news item extracted from the site. URL is the unique key.
type Article struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Language string `json:"language,omitempty"`
}

// Valid reports whether the article has both a title and a URL.
func (a Article) Valid() bool {
	return strings.TrimSpace(a.Title) != "" && strings.TrimSpace(a.URL) != ""
}

// DetectLanguage tags a title as English when any of its characters is ASCII,
// Amharic otherwise. Whitespace counts as ASCII.
func DetectLanguage(title string) string {
	for _, r := range title {
		if r < utf8.RuneSelf {
			return LangEnglish
		}
	}
	return LangAmharic
}

// NormalizeLanguage maps a requested language onto a supported tag, defaulting to Amharic.
func NormalizeLanguage(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case LangEnglish:
		return LangEnglish
	default:
		return LangAmharic
	}
}
