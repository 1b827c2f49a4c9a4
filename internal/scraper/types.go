package scraper

// Candidate is a link discovered on the listing page.
type Candidate struct {
	URL        string
	AnchorText string
}

// ClassHint matches elements with one of Tags whose class attribute contains one of ClassTerms.
type ClassHint struct {
	Tags       []string `yaml:"tags"`
	ClassTerms []string `yaml:"class_terms"`
}

// Selectors holds the extraction hints. Hint lists are tried in order and
// the first element matching any hint wins.
type Selectors struct {
	SectionKeywords     []string    `yaml:"section_keywords"`
	HeadingTags         []string    `yaml:"heading_tags"`
	ContainerTags       []string    `yaml:"container_tags"`
	ContainerClassTerms []string    `yaml:"container_class_terms"`
	Title               []ClassHint `yaml:"title"`
	Content             []ClassHint `yaml:"content"`
	Date                []ClassHint `yaml:"date"`
	Category            []ClassHint `yaml:"category"`
}
