package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/normalize"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns listing and article markup into candidates and articles.
type Extractor struct {
	base       *url.URL
	normalizer *normalize.Normalizer

	section  Matcher
	title    []Matcher
	content  []Matcher
	date     []Matcher
	category []Matcher
}

func NewExtractor(selectors *Selectors, baseURL string, normalizer *normalize.Normalizer) (*Extractor, error) {
	if selectors == nil {
		selectors = DefaultSelectors()
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	return &Extractor{
		base:       base,
		normalizer: normalizer,
		section: AnyOf(
			sectionHeadingMatcher(selectors),
			ClassHint{Tags: selectors.ContainerTags, ClassTerms: selectors.ContainerClassTerms},
		),
		title:    hintMatchers(selectors.Title),
		content:  hintMatchers(selectors.Content),
		date:     hintMatchers(selectors.Date),
		category: hintMatchers(selectors.Category),
	}, nil
}

// sectionHeadingMatcher matches the parent of a keyword heading.
func sectionHeadingMatcher(s *Selectors) Matcher {
	heading := TextHint{Tags: s.HeadingTags, Keywords: s.SectionKeywords}
	return MatcherFunc(func(sel *goquery.Selection) bool {
		found := false
		sel.ChildrenFiltered("*").EachWithBreak(func(_ int, child *goquery.Selection) bool {
			found = heading.Matches(child)
			return !found
		})
		return found
	})
}

// ExtractListing returns every link inside a news section, deduplicated by
// resolved absolute URL in document order.
func (e *Extractor) ExtractListing(markup string) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, apperr.New(apperr.KindExtraction, "extract listing", fmt.Errorf("failed to parse HTML: %w", err))
	}

	seen := make(map[string]bool)
	var candidates []Candidate

	doc.Find("*").Each(func(_ int, sel *goquery.Selection) {
		if !e.section.Matches(sel) {
			return
		}
		sel.Find("a").Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return
			}
			abs := normalize.ResolveURL(e.base, href)
			if abs == "" || seen[abs] {
				return
			}
			seen[abs] = true
			candidates = append(candidates, Candidate{
				URL:        abs,
				AnchorText: e.normalizer.CleanText(a.Text()),
			})
		})
	})

	return candidates, nil
}

// ExtractArticle builds an Article from an article page. ok is false when no
// title can be found; that is not an error.
func (e *Extractor) ExtractArticle(markup string, candidate Candidate) (models.Article, bool, error) {
	if strings.TrimSpace(candidate.URL) == "" {
		return models.Article{}, false, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return models.Article{}, false, apperr.New(apperr.KindExtraction, "extract article", fmt.Errorf("failed to parse HTML: %w", err))
	}
	root := doc.Selection

	title := ""
	if sel := findFirst(root, e.title); sel != nil {
		title = e.normalizer.CleanText(sel.Text())
	}
	if title == "" {
		title = e.normalizer.CleanText(candidate.AnchorText)
	}

	article := models.Article{
		Title:    title,
		URL:      candidate.URL,
		Category: models.DefaultCategory,
	}
	if !article.Valid() {
		return models.Article{}, false, nil
	}

	if sel := findFirst(root, e.date); sel != nil {
		article.Date = e.normalizer.CleanText(sel.Text())
	}
	if sel := findFirst(root, e.category); sel != nil {
		if category := e.normalizer.CleanText(sel.Text()); category != "" {
			article.Category = category
		}
	}
	// Content last: stripping non-content nodes mutates the document.
	if sel := findFirst(root, e.content); sel != nil {
		article.Content = e.normalizer.SelectionText(sel)
	}
	article.Language = models.DetectLanguage(article.Title)

	return article, true, nil
}
