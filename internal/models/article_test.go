package models

import "testing"

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"ኢትዮጵያ", LangAmharic},
		{"የአማራ፡ክልል", LangAmharic},
		{"Ethiopia today", LangEnglish},
		{"ኢትዮጵያ 2016", LangEnglish},
		{"ኢትዮጵያ ዜና", LangEnglish},
		{"", LangAmharic},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.title); got != tt.expected {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.title, got, tt.expected)
		}
	}
}

func TestArticleValid(t *testing.T) {
	tests := []struct {
		name    string
		article Article
		want    bool
	}{
		{"complete", Article{Title: "t", URL: "https://ameco.et/a"}, true},
		{"missing title", Article{URL: "https://ameco.et/a"}, false},
		{"blank title", Article{Title: "   ", URL: "https://ameco.et/a"}, false},
		{"missing url", Article{Title: "t"}, false},
	}

	for _, tt := range tests {
		if got := tt.article.Valid(); got != tt.want {
			t.Errorf("%s: Valid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	if got := NormalizeLanguage(" EN "); got != LangEnglish {
		t.Errorf("NormalizeLanguage(EN) = %q", got)
	}
	if got := NormalizeLanguage("fr"); got != LangAmharic {
		t.Errorf("NormalizeLanguage(fr) = %q", got)
	}
	if got := NormalizeLanguage(""); got != LangAmharic {
		t.Errorf("NormalizeLanguage(\"\") = %q", got)
	}
}
