package checksum

import (
	"testing"

	"amc-news-assistant/internal/models"
)

func TestGenerateContentHash(t *testing.T) {
	gen := NewGenerator()

	article := models.Article{
		URL:     "https://ameco.et/news/123",
		Title:   "የሙከራ ዜና",
		Content: "የዜናው ይዘት",
		Date:    "መስከረም 2, 2016",
	}

	hash1 := gen.GenerateContentHash(article)
	hash2 := gen.GenerateContentHash(article)

	if hash1 != hash2 {
		t.Errorf("Hash not deterministic: %s != %s", hash1, hash2)
	}

	if len(hash1) != 64 {
		t.Errorf("Hash wrong length: %d, expected 64", len(hash1))
	}

	changed := article
	changed.Title = "ሌላ ርዕስ"
	if hash1 == gen.GenerateContentHash(changed) {
		t.Errorf("Hash should change when title changes")
	}

	recategorized := article
	recategorized.Category = "Sport"
	if hash1 != gen.GenerateContentHash(recategorized) {
		t.Errorf("Hash should ignore category")
	}
}

func TestVerifyContentHash(t *testing.T) {
	gen := NewGenerator()

	article := models.Article{
		URL:     "https://ameco.et/news/123",
		Title:   "የሙከራ ዜና",
		Content: "የዜናው ይዘት",
	}

	hash := gen.GenerateContentHash(article)

	if !gen.VerifyContentHash(hash, article) {
		t.Errorf("VerifyContentHash failed for correct data")
	}

	article.Content = "የተቀየረ ይዘት"
	if gen.VerifyContentHash(hash, article) {
		t.Errorf("VerifyContentHash should fail for changed content")
	}
}
