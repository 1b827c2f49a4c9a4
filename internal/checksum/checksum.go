package checksum

import (
	"crypto/sha256"
	"fmt"

	"amc-news-assistant/internal/models"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateContentHash returns hex SHA256(url|title|content|date). The date is
// hashed as scraped so reformatting on the site counts as a change.
func (g *Generator) GenerateContentHash(article models.Article) string {
	content := fmt.Sprintf("%s|%s|%s|%s", article.URL, article.Title, article.Content, article.Date)
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}

// VerifyContentHash reports whether expectedHash still matches the article.
func (g *Generator) VerifyContentHash(expectedHash string, article models.Article) bool {
	return g.GenerateContentHash(article) == expectedHash
}
