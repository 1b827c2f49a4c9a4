package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mssqldb "github.com/microsoft/go-mssqldb"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/checksum"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/observability"
	"amc-news-assistant/internal/storage"
)

// SQL Server error numbers raised when full-text search is unavailable.
const (
	errNotFullTextIndexed = 7601
	errFullTextDisabled   = 7616
)

const articleColumns = `[URL], [Title], [Content], [DateRaw], [Category], [Language]`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
	checksum       *checksum.Generator
}

var _ storage.Repository = (*Repository)(nil)

func NewRepository(dsn string, commandTimeoutMS int, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewRepositoryFromDB(db, time.Duration(commandTimeoutMS)*time.Millisecond, logger), nil
}

// NewRepositoryFromDB wraps an open handle.
func NewRepositoryFromDB(db *sql.DB, commandTimeout time.Duration, logger *observability.Logger) *Repository {
	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
		checksum:       checksum.NewGenerator(),
	}
}

const upsertQuery = `
	MERGE INTO TblArticles WITH (HOLDLOCK) AS target
	USING (SELECT @URL AS URL) AS source
	ON target.[URL] = source.URL
	WHEN MATCHED THEN
		UPDATE SET
			[Title] = @Title,
			[Content] = @Content,
			[DateRaw] = @DateRaw,
			[Category] = @Category,
			[Language] = @Language,
			[CheckSum] = @CheckSum,
			[LastUpdated] = @LastUpdated
	WHEN NOT MATCHED THEN
		INSERT ([URL], [Title], [Content], [DateRaw], [Category], [Language], [CheckSum], [LastUpdated])
		VALUES (@URL, @Title, @Content, @DateRaw, @Category, @Language, @CheckSum, @LastUpdated);
`

// SaveArticles upserts all valid articles in one transaction.
func (r *Repository) SaveArticles(ctx context.Context, articles []models.Article) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.New(apperr.KindStore, "save articles", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	saved := 0
	for _, a := range articles {
		if !a.Valid() {
			continue
		}
		lang := a.Language
		if lang == "" {
			lang = models.DetectLanguage(a.Title)
		}

		_, err := tx.ExecContext(ctx, upsertQuery,
			sql.Named("URL", a.URL),
			sql.Named("Title", a.Title),
			sql.Named("Content", a.Content),
			sql.Named("DateRaw", a.Date),
			sql.Named("Category", a.Category),
			sql.Named("Language", lang),
			sql.Named("CheckSum", r.checksum.GenerateContentHash(a)),
			sql.Named("LastUpdated", now),
		)
		if err != nil {
			return apperr.New(apperr.KindStore, "save articles", fmt.Errorf("failed to execute upsert for %s: %w", a.URL, err))
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return apperr.New(apperr.KindStore, "save articles", fmt.Errorf("failed to commit: %w", err))
	}

	r.logger.Info("Successfully saved/updated articles", "count", saved)
	return nil
}

func (r *Repository) GetArticles(ctx context.Context, query string, limit int) ([]models.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query = strings.TrimSpace(query)
	if query == "" {
		return r.queryArticles(ctx, `SELECT TOP (@Limit) `+articleColumns+` FROM TblArticles ORDER BY [LastUpdated] DESC`,
			sql.Named("Limit", limit))
	}

	if terms := storage.SearchTerms(query); len(terms) > 0 {
		articles, err := r.queryArticles(ctx,
			`SELECT TOP (@Limit) `+articleColumns+` FROM TblArticles
			WHERE CONTAINS(([Title], [Content]), @Search)
			ORDER BY [LastUpdated] DESC`,
			sql.Named("Limit", limit),
			sql.Named("Search", containsCondition(terms)),
		)
		switch {
		case err == nil && len(articles) > 0:
			return articles, nil
		case err != nil && !isFullTextUnavailable(err):
			return nil, err
		case err != nil:
			r.logger.Debug("Full-text search unavailable, using LIKE", "error", err)
		}
	}

	return r.queryArticles(ctx,
		`SELECT TOP (@Limit) `+articleColumns+` FROM TblArticles
		WHERE [Title] LIKE @Pattern ESCAPE '\' OR [Content] LIKE @Pattern ESCAPE '\'
		ORDER BY [LastUpdated] DESC`,
		sql.Named("Limit", limit),
		sql.Named("Pattern", "%"+storage.EscapeLike(query)+"%"),
	)
}

func (r *Repository) GetArticleByURL(ctx context.Context, url string) (models.Article, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var a models.Article
	var dateRaw, category, language sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT `+articleColumns+` FROM TblArticles WHERE [URL] = @URL`,
		sql.Named("URL", url),
	).Scan(&a.URL, &a.Title, &a.Content, &dateRaw, &category, &language)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Article{}, false, nil
		}
		return models.Article{}, false, apperr.New(apperr.KindStore, "get article by url", fmt.Errorf("failed to query database: %w", err))
	}
	a.Date, a.Category, a.Language = dateRaw.String, category.String, language.String

	return a, true, nil
}

func (r *Repository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM TblArticles WHERE [LastUpdated] < @Cutoff`,
		sql.Named("Cutoff", cutoff.UTC()),
	)
	if err != nil {
		return 0, apperr.New(apperr.KindStore, "prune articles", fmt.Errorf("failed to delete: %w", err))
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, apperr.New(apperr.KindStore, "prune articles", fmt.Errorf("failed to get rows affected: %w", err))
	}
	return removed, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) queryArticles(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.KindStore, "get articles", fmt.Errorf("failed to query database: %w", err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Error("Failed to close rows", "error", err.Error())
		}
	}()

	articles := []models.Article{}
	for rows.Next() {
		var a models.Article
		var dateRaw, category, language sql.NullString
		if err := rows.Scan(&a.URL, &a.Title, &a.Content, &dateRaw, &category, &language); err != nil {
			return nil, apperr.New(apperr.KindStore, "get articles", fmt.Errorf("failed to scan row: %w", err))
		}
		a.Date, a.Category, a.Language = dateRaw.String, category.String, language.String
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.New(apperr.KindStore, "get articles", err)
	}
	return articles, nil
}

// containsCondition ORs quoted terms: "a" OR "b".
func containsCondition(terms []string) string {
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(t, `"`, "")+`"`)
	}
	return strings.Join(quoted, " OR ")
}

func isFullTextUnavailable(err error) bool {
	var sqlErr mssqldb.Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Number == errNotFullTextIndexed || sqlErr.Number == errFullTextDisabled
	}
	return false
}
