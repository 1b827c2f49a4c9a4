package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/config"
	"amc-news-assistant/internal/models"
	"amc-news-assistant/internal/observability"

	"github.com/redis/go-redis/v9"
)

const redisConnectTimeout = 5 * time.Second

// ErrEmptyAddress is returned when no redis address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

// NewRedisClient connects and pings the server.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// RedisCache stores the snapshot under a single key. The key never expires
// so a stale snapshot stays available as a fallback.
type RedisCache struct {
	client   *redis.Client
	key      string
	duration time.Duration
	logger   *observability.Logger
	now      func() time.Time
}

func NewRedisCache(client *redis.Client, key string, duration time.Duration, logger *observability.Logger, opts ...Option) *RedisCache {
	o := buildOptions(opts)
	return &RedisCache{
		client:   client,
		key:      key,
		duration: duration,
		logger:   logger,
		now:      o.now,
	}
}

func (c *RedisCache) Load(ctx context.Context) (Snapshot, bool) {
	snap, ok := c.read(ctx)
	if !ok || !snap.Fresh(c.now(), c.duration) {
		return Snapshot{}, false
	}
	c.logger.Info("Using cached content", "key", c.key, "articles", len(snap.Data))
	return snap, true
}

func (c *RedisCache) LoadStale(ctx context.Context) (Snapshot, bool) {
	return c.read(ctx)
}

func (c *RedisCache) read(ctx context.Context) (Snapshot, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache loading error", "key", c.key, "error", err)
		}
		return Snapshot{}, false
	}

	snap, err := decodeRecord(raw)
	if err != nil {
		c.logger.Warn("Cache loading error", "key", c.key, "error", err)
		return Snapshot{}, false
	}
	return snap, true
}

func (c *RedisCache) Save(ctx context.Context, articles []models.Article) error {
	payload, err := encodeRecord(c.now(), articles)
	if err != nil {
		return apperr.New(apperr.KindCache, "cache save", err)
	}
	if err := c.client.Set(ctx, c.key, payload, 0).Err(); err != nil {
		return apperr.New(apperr.KindCache, "cache save", err)
	}
	c.logger.Info("Content cached successfully", "key", c.key, "articles", len(articles))
	return nil
}
