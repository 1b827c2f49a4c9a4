package scraper

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultSelectors returns the hints tuned for the ameco.et markup.
func DefaultSelectors() *Selectors {
	return &Selectors{
		SectionKeywords:     []string{"አማራ", "ኢትዮጵያ", "አፍሪካ", "ዓለም", "ዜና"},
		HeadingTags:         []string{"h1", "h2", "h3", "h4", "h5", "h6"},
		ContainerTags:       []string{"article", "div"},
		ContainerClassTerms: []string{"post", "article", "news"},
		Title: []ClassHint{
			{Tags: []string{"h1", "h2", "h3"}, ClassTerms: []string{"title", "heading"}},
		},
		Content: []ClassHint{
			{Tags: []string{"div", "article"}, ClassTerms: []string{"content", "body", "text"}},
		},
		Date: []ClassHint{
			{Tags: []string{"time", "span"}, ClassTerms: []string{"date", "time", "meta"}},
		},
		Category: []ClassHint{
			{Tags: []string{"span", "a"}, ClassTerms: []string{"category"}},
		},
	}
}

// LoadSelectors reads hints from a YAML file. Keys left out of the file keep
// their default values.
func LoadSelectors(filePath string) (*Selectors, error) {
	if filePath == "" {
		return nil, fmt.Errorf("selectors file path is empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close selectors file: %v\n", closeErr)
		}
	}()

	selectors := DefaultSelectors()
	if err := yaml.NewDecoder(file).Decode(selectors); err != nil {
		return nil, fmt.Errorf("failed to parse selectors YAML: %w", err)
	}

	if err := validateSelectors(selectors); err != nil {
		return nil, err
	}

	return selectors, nil
}

func validateSelectors(s *Selectors) error {
	if len(s.HeadingTags) == 0 && len(s.ContainerTags) == 0 {
		return fmt.Errorf("heading_tags or container_tags is required")
	}
	if len(s.HeadingTags) > 0 && len(s.SectionKeywords) == 0 {
		return fmt.Errorf("section_keywords is required with heading_tags")
	}
	if len(s.ContainerTags) > 0 && len(s.ContainerClassTerms) == 0 {
		return fmt.Errorf("container_class_terms is required with container_tags")
	}
	for name, hints := range map[string][]ClassHint{
		"title": s.Title, "content": s.Content, "date": s.Date, "category": s.Category,
	} {
		for i, h := range hints {
			if len(h.Tags) == 0 || len(h.ClassTerms) == 0 {
				return fmt.Errorf("%s[%d]: tags and class_terms are required", name, i)
			}
		}
	}
	return nil
}
