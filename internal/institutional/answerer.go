// Package institutional answers questions about the corporation itself from
// static bilingual text.
package institutional

import (
	"strings"

	"amc-news-assistant/internal/models"

	"github.com/cloudflare/ahocorasick"
)

// Kind selects which institutional block to return.
type Kind string

const (
	KindMission Kind = "mission"
	KindVision  Kind = "vision"
	KindValues  Kind = "values"
	KindAbout   Kind = "about"
	KindAll     Kind = "all"
)

// Record is the institutional text for one language.
type Record struct {
	About   string
	Mission string
	Vision  string
	Values  string
}

// Keywords that mark a question as institutional.
var institutionalKeywords = []string{
	"mission", "vision", "value", "about amc", "what is amc",
	"who is amc", "tell me about amc", "information about amc",
	"ተልዕኮ", "ራዕይ", "እሴት", "ስለ አማራ ሚዲያ", "አማራ ሚዲያ ምንድን ነው",
	"አማራ ሚዲያ ማን ነው", "ስለ አማራ ሚዲያ ንገረኝ", "የአማራ ሚዲያ መረጃ",
}

// classification is checked in order; the first kind with a hit wins.
var classification = []struct {
	kind  Kind
	words []string
}{
	{KindMission, []string{"mission", "ተልዕኮ"}},
	{KindVision, []string{"vision", "ራዕይ"}},
	{KindValues, []string{"value", "እሴት"}},
	{KindAbout, []string{"what is", "who is", "about", "ምንድን ነው", "ማን ነው", "ስለ"}},
}

// Answerer matches questions against the keyword sets in a single pass each.
// It is safe for concurrent use.
type Answerer struct {
	detector   *ahocorasick.Matcher
	classifier *ahocorasick.Matcher
	kindByHit  []Kind
}

func NewAnswerer() *Answerer {
	var words []string
	var kinds []Kind
	for _, c := range classification {
		for _, w := range c.words {
			words = append(words, w)
			kinds = append(kinds, c.kind)
		}
	}

	return &Answerer{
		detector:   ahocorasick.NewStringMatcher(institutionalKeywords),
		classifier: ahocorasick.NewStringMatcher(words),
		kindByHit:  kinds,
	}
}

// IsInstitutional reports whether text asks about the corporation.
func (a *Answerer) IsInstitutional(text string) bool {
	return len(a.detector.MatchThreadSafe([]byte(strings.ToLower(text)))) > 0
}

// Classify picks the block to answer with: mission, vision, values, about, or all.
func (a *Answerer) Classify(text string) Kind {
	hits := a.classifier.MatchThreadSafe([]byte(strings.ToLower(text)))

	seen := make(map[Kind]bool, len(hits))
	for _, idx := range hits {
		if idx >= 0 && idx < len(a.kindByHit) {
			seen[a.kindByHit[idx]] = true
		}
	}
	for _, c := range classification {
		if seen[c.kind] {
			return c.kind
		}
	}
	return KindAll
}

// Answer returns the static text for kind in lang. Unknown languages get Amharic.
func (a *Answerer) Answer(kind Kind, lang string) string {
	rec := records[models.NormalizeLanguage(lang)]

	switch kind {
	case KindMission:
		return rec.Mission
	case KindVision:
		return rec.Vision
	case KindValues:
		return rec.Values
	case KindAbout:
		return rec.About
	default:
		return strings.Join([]string{rec.About, rec.Mission, rec.Vision, rec.Values}, "\n\n")
	}
}
