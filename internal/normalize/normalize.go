package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"amc-news-assistant/internal/config"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// NonContentSelector matches elements dropped from article bodies before text extraction.
const NonContentSelector = "script, style, iframe, nav, header, footer"

var spaceRun = regexp.MustCompile(`\s+`)

type Normalizer struct {
	cfg config.NormalizeConfig
}

func NewNormalizer(cfg config.NormalizeConfig) *Normalizer {
	return &Normalizer{cfg: cfg}
}

// CleanText composes Ethiopic runes to NFC, replaces NBSP and collapses whitespace per config.
func (n *Normalizer) CleanText(text string) string {
	text = norm.NFC.String(text)

	if n.cfg.TrimNBSP {
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.cfg.CollapseSpaces {
		text = spaceRun.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}

// SelectionText removes non-content descendants of sel and returns its cleaned text.
// The selection is modified in place.
func (n *Normalizer) SelectionText(sel *goquery.Selection) string {
	sel.Find(NonContentSelector).Remove()
	return n.CleanText(sel.Text())
}

// CleanHTML parses a fragment and returns its cleaned visible text.
func (n *Normalizer) CleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return n.SelectionText(doc.Selection)
}

// TruncatePreview cuts text to MaxPreviewChars runes, preferring the last word boundary.
func (n *Normalizer) TruncatePreview(text string) string {
	limit := n.cfg.MaxPreviewChars
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	truncated := string(runes[:limit-1])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimSpace(truncated) + "…"
}

// ResolveURL resolves href against base and drops the fragment.
// Only http and https results are returned; anything else yields "".
func ResolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	resolved.RawFragment = ""

	return resolved.String()
}
