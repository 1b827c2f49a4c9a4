// Package postgres stores articles in PostgreSQL with a generated tsvector
// column for full-text search.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/checksum"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/observability"
	"amc-news-assistant/internal/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS articles (
		url          TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		content      TEXT NOT NULL DEFAULT '',
		date_raw     TEXT NOT NULL DEFAULT '',
		category     TEXT NOT NULL DEFAULT '',
		language     TEXT NOT NULL DEFAULT '',
		checksum     TEXT NOT NULL DEFAULT '',
		last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
		search       TSVECTOR GENERATED ALWAYS AS (
			to_tsvector('simple', coalesce(title, '') || ' ' || coalesce(content, ''))
		) STORED
	);
	CREATE INDEX IF NOT EXISTS articles_search_idx ON articles USING GIN (search);
	CREATE INDEX IF NOT EXISTS articles_last_updated_idx ON articles (last_updated DESC);
`

const selectColumns = `url, title, content, date_raw, category, language`

const upsertQuery = `
	INSERT INTO articles (url, title, content, date_raw, category, language, checksum, last_updated)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (url) DO UPDATE SET
		title = EXCLUDED.title,
		content = EXCLUDED.content,
		date_raw = EXCLUDED.date_raw,
		category = EXCLUDED.category,
		language = EXCLUDED.language,
		checksum = EXCLUDED.checksum,
		last_updated = EXCLUDED.last_updated
`

type Repository struct {
	pool           *pgxpool.Pool
	commandTimeout time.Duration
	logger         *observability.Logger
	checksum       *checksum.Generator
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository connects, pings and creates the schema if it is missing.
func NewRepository(ctx context.Context, dsn string, commandTimeoutMS int, logger *observability.Logger) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	r := &Repository{
		pool:           pool,
		commandTimeout: time.Duration(commandTimeoutMS) * time.Millisecond,
		logger:         logger,
		checksum:       checksum.NewGenerator(),
	}

	if err := r.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := r.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return apperr.New(apperr.KindStore, "ensure schema", err)
	}
	return nil
}

// SaveArticles sends all upserts in one batch inside a transaction.
func (r *Repository) SaveArticles(ctx context.Context, articles []models.Article) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, a := range articles {
		if !a.Valid() {
			continue
		}
		lang := a.Language
		if lang == "" {
			lang = models.DetectLanguage(a.Title)
		}
		batch.Queue(upsertQuery, a.URL, a.Title, a.Content, a.Date, a.Category, lang,
			r.checksum.GenerateContentHash(a), now)
	}
	if batch.Len() == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.New(apperr.KindStore, "save articles", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperr.New(apperr.KindStore, "save articles", fmt.Errorf("failed to execute batch: %w", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.New(apperr.KindStore, "save articles", fmt.Errorf("failed to commit: %w", err))
	}

	r.logger.Info("Successfully saved/updated articles", "count", batch.Len())
	return nil
}

func (r *Repository) GetArticles(ctx context.Context, query string, limit int) ([]models.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	query = strings.TrimSpace(query)
	if query == "" {
		return r.queryArticles(ctx,
			`SELECT `+selectColumns+` FROM articles ORDER BY last_updated DESC LIMIT $1`, limit)
	}

	articles, err := r.queryArticles(ctx,
		`SELECT `+selectColumns+` FROM articles
		WHERE search @@ plainto_tsquery('simple', $1)
		ORDER BY ts_rank(search, plainto_tsquery('simple', $1)) DESC, last_updated DESC
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	if len(articles) > 0 {
		return articles, nil
	}

	return r.queryArticles(ctx,
		`SELECT `+selectColumns+` FROM articles
		WHERE title ILIKE $1 ESCAPE '\' OR content ILIKE $1 ESCAPE '\'
		ORDER BY last_updated DESC
		LIMIT $2`, "%"+storage.EscapeLike(query)+"%", limit)
}

func (r *Repository) GetArticleByURL(ctx context.Context, url string) (models.Article, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	var a models.Article
	err := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM articles WHERE url = $1`, url).
		Scan(&a.URL, &a.Title, &a.Content, &a.Date, &a.Category, &a.Language)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Article{}, false, nil
	}
	if err != nil {
		return models.Article{}, false, apperr.New(apperr.KindStore, "get article by url", err)
	}
	return a, true, nil
}

func (r *Repository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE last_updated < $1`, cutoff.UTC())
	if err != nil {
		return 0, apperr.New(apperr.KindStore, "prune articles", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) queryArticles(ctx context.Context, query string, args ...any) ([]models.Article, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.New(apperr.KindStore, "get articles", err)
	}

	articles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Article, error) {
		var a models.Article
		err := row.Scan(&a.URL, &a.Title, &a.Content, &a.Date, &a.Category, &a.Language)
		return a, err
	})
	if err != nil {
		return nil, apperr.New(apperr.KindStore, "get articles", err)
	}
	return articles, nil
}
