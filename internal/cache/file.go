package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/observability"
)

// FileCache keeps the snapshot in a JSON file. Writes go to a temp file that
// is renamed over the target, so readers see either the old or the new snapshot.
type FileCache struct {
	path     string
	duration time.Duration
	logger   *observability.Logger
	now      func() time.Time
}

func NewFileCache(path string, duration time.Duration, logger *observability.Logger, opts ...Option) *FileCache {
	o := buildOptions(opts)
	return &FileCache{
		path:     path,
		duration: duration,
		logger:   logger,
		now:      o.now,
	}
}

func (c *FileCache) Load(ctx context.Context) (Snapshot, bool) {
	snap, ok := c.read()
	if !ok {
		return Snapshot{}, false
	}
	if !snap.Fresh(c.now(), c.duration) {
		c.logger.Debug("Cache expired", "path", c.path, "timestamp", snap.Timestamp)
		return Snapshot{}, false
	}
	c.logger.Info("Using cached content", "path", c.path, "articles", len(snap.Data))
	return snap, true
}

func (c *FileCache) LoadStale(ctx context.Context) (Snapshot, bool) {
	return c.read()
}

func (c *FileCache) read() (Snapshot, bool) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("Cache loading error", "path", c.path, "error", err)
		}
		return Snapshot{}, false
	}

	snap, err := decodeRecord(raw)
	if err != nil {
		c.logger.Warn("Cache loading error", "path", c.path, "error", err)
		return Snapshot{}, false
	}
	return snap, true
}

func (c *FileCache) Save(ctx context.Context, articles []models.Article) error {
	payload, err := encodeRecord(c.now(), articles)
	if err != nil {
		return apperr.New(apperr.KindCache, "cache save", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.New(apperr.KindCache, "cache save", fmt.Errorf("create cache dir: %w", err))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return apperr.New(apperr.KindCache, "cache save", fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return apperr.New(apperr.KindCache, "cache save", fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return apperr.New(apperr.KindCache, "cache save", fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return apperr.New(apperr.KindCache, "cache save", fmt.Errorf("close temp file: %w", err))
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return apperr.New(apperr.KindCache, "cache save", fmt.Errorf("rename temp file: %w", err))
	}

	c.logger.Info("Content cached successfully", "path", c.path, "articles", len(articles))
	return nil
}
