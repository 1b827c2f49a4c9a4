package mssql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mssqldb "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/observability"
)

var columns = []string{"URL", "Title", "Content", "DateRaw", "Category", "Language"}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepositoryFromDB(db, 5*time.Second, observability.NewNopLogger()), mock
}

func TestSaveArticlesSkipsInvalidAndCommits(t *testing.T) {
	repo, mock := newMockRepository(t)

	articles := []models.Article{
		{URL: "https://ameco.et/news/1", Title: "የኢትዮጵያ ዜና", Content: "ይዘት", Date: "መስከረም 2, 2016", Category: "News"},
		{URL: "", Title: "no url"},
		{URL: "https://ameco.et/news/2", Title: "Africa update", Category: "World", Language: "en"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("MERGE INTO TblArticles")).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("MERGE INTO TblArticles")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveArticles(context.Background(), articles))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveArticlesRollsBackOnError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("MERGE INTO TblArticles")).
		WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	err := repo.SaveArticles(context.Background(), []models.Article{
		{URL: "https://ameco.et/news/1", Title: "ዜና"},
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticlesEmptyQueryReturnsRecent(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY [LastUpdated] DESC")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("https://ameco.et/news/1", "ዜና", "ይዘት", "መስከረም 2, 2016", "News", "am"))

	articles, err := repo.GetArticles(context.Background(), "  ", 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "am", articles[0].Language)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticlesFullTextHit(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("CONTAINS(([Title], [Content]), @Search)")).
		WithArgs(5, `"ኢትዮጵያ" OR "ዜና"`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("https://ameco.et/news/1", "የኢትዮጵያ ዜና", "ይዘት", nil, nil, nil))

	articles, err := repo.GetArticles(context.Background(), "ኢትዮጵያ ዜና", 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Empty(t, articles[0].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticlesFallsBackToLike(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("CONTAINS")).
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectQuery(regexp.QuoteMeta("LIKE @Pattern ESCAPE")).
		WithArgs(5, `%100\%%`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("https://ameco.et/news/3", "100% ሽፋን", "", "", "News", "am"))

	articles, err := repo.GetArticles(context.Background(), "100%", 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "https://ameco.et/news/3", articles[0].URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticlesWithoutFullTextIndex(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("CONTAINS")).
		WillReturnError(mssqldb.Error{Number: errNotFullTextIndexed, Message: "not full-text indexed"})
	mock.ExpectQuery(regexp.QuoteMeta("LIKE @Pattern")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("https://ameco.et/news/1", "ዜና", "", "", "", ""))

	articles, err := repo.GetArticles(context.Background(), "ዜና", 5)
	require.NoError(t, err)
	assert.Len(t, articles, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticlesSurfacesOtherErrors(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("CONTAINS")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetArticles(context.Background(), "ዜና", 5)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStore))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticleByURL(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE [URL] = @URL")).
		WithArgs("https://ameco.et/news/1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("https://ameco.et/news/1", "ዜና", "ይዘት", "", "News", "am"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE [URL] = @URL")).
		WithArgs("https://ameco.et/missing").
		WillReturnRows(sqlmock.NewRows(columns))

	article, found, err := repo.GetArticleByURL(context.Background(), "https://ameco.et/news/1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "ዜና", article.Title)

	_, found, err = repo.GetArticleByURL(context.Background(), "https://ameco.et/missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPruneOlderThan(t *testing.T) {
	repo, mock := newMockRepository(t)

	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM TblArticles WHERE [LastUpdated] < @Cutoff")).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.PruneOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContainsCondition(t *testing.T) {
	assert.Equal(t, `"a" OR "b"`, containsCondition([]string{"a", `b"`}))
}
