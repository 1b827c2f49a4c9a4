package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Matcher decides whether an element belongs to a category such as "section" or "title".
type Matcher interface {
	Matches(sel *goquery.Selection) bool
}

type MatcherFunc func(sel *goquery.Selection) bool

func (f MatcherFunc) Matches(sel *goquery.Selection) bool { return f(sel) }

func (h ClassHint) Matches(sel *goquery.Selection) bool {
	if !hasTag(sel, h.Tags) {
		return false
	}
	class, ok := sel.Attr("class")
	if !ok || class == "" {
		return false
	}
	return containsAny(strings.ToLower(class), h.ClassTerms)
}

// TextHint matches elements with one of Tags whose text contains one of Keywords.
type TextHint struct {
	Tags     []string
	Keywords []string
}

func (h TextHint) Matches(sel *goquery.Selection) bool {
	if !hasTag(sel, h.Tags) {
		return false
	}
	return containsAny(sel.Text(), h.Keywords)
}

// AnyOf matches when any of the matchers does.
func AnyOf(matchers ...Matcher) Matcher {
	return MatcherFunc(func(sel *goquery.Selection) bool {
		for _, m := range matchers {
			if m.Matches(sel) {
				return true
			}
		}
		return false
	})
}

func hintMatchers(hints []ClassHint) []Matcher {
	out := make([]Matcher, 0, len(hints))
	for _, h := range hints {
		out = append(out, h)
	}
	return out
}

// findFirst returns the first element in document order matched by the
// earliest matcher in the list that matches anything.
func findFirst(root *goquery.Selection, matchers []Matcher) *goquery.Selection {
	all := root.Find("*")
	for _, m := range matchers {
		found := all.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return m.Matches(s)
		}).First()
		if found.Length() > 0 {
			return found
		}
	}
	return nil
}

func hasTag(sel *goquery.Selection, tags []string) bool {
	name := goquery.NodeName(sel)
	for _, t := range tags {
		if strings.EqualFold(name, t) {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(s, t) {
			return true
		}
	}
	return false
}
