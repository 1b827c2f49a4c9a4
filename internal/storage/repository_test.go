package storage

import "testing"

func TestSearchTerms(t *testing.T) {
	got := SearchTerms(`  "ኢትዮጵያ" ዜና? ዜና  Africa, `)
	want := []string{"ኢትዮጵያ", "ዜና", "africa"}

	if len(got) != len(want) {
		t.Fatalf("SearchTerms() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SearchTerms()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if terms := SearchTerms("   "); len(terms) != 0 {
		t.Errorf("SearchTerms(blank) = %v, want empty", terms)
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`a\b`, `a\\b`},
		{"[x]", `\[x]`},
		{"ዜና", "ዜና"},
	}

	for _, tt := range tests {
		if got := EscapeLike(tt.input); got != tt.expected {
			t.Errorf("EscapeLike(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
