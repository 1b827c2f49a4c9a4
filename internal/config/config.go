package config

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Site          SiteConfig          `yaml:"site"`
	HTTP          HTTPConfig          `yaml:"http"`
	Backoff       BackoffConfig       `yaml:"backoff"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Rod           RodConfig           `yaml:"rod"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Cache         CacheConfig         `yaml:"cache"`
	Storage       StorageConfig       `yaml:"storage"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
	AI            AIConfig            `yaml:"ai"`
}

type SiteConfig struct {
	BaseURL       string `yaml:"base_url" env:"SITE_BASE_URL"`
	SelectorsFile string `yaml:"selectors_file" env:"SELECTORS_FILE"`
	MaxLinks      int    `yaml:"max_links"`
}

type HTTPConfig struct {
	UserAgent              string `yaml:"user_agent"`
	AcceptLanguage         string `yaml:"accept_language"`
	TimeoutMS              int    `yaml:"timeout_ms"`
	MaxAttempts            int    `yaml:"max_attempts"`
	MaxIdleConnections     int    `yaml:"max_idle_connections"`
	IdleConnectionTimeoutS int    `yaml:"idle_connection_timeout_s"`
	RespectRobots          bool   `yaml:"respect_robots"`
	RobotsCacheTTLHours    int    `yaml:"robots_cache_ttl_hours"`
}

// BackoffConfig is the delay between fetch attempts. MinMS of 0 disables it.
type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type RateLimitConfig struct {
	RPM   int `yaml:"rpm"`
	Burst int `yaml:"burst"`
}

type RodConfig struct {
	Enabled          bool   `yaml:"enabled" env:"ROD_ENABLED"`
	ChromePath       string `yaml:"chrome_path" env:"ROD_CHROME_PATH"`
	PageTimeoutS     int    `yaml:"page_timeout_s"`
	WaitLoadTimeoutS int    `yaml:"wait_load_timeout_s"`
	LazyLoadDelayS   int    `yaml:"lazy_load_delay_s"`
}

type NormalizeConfig struct {
	TrimNBSP        bool `yaml:"trim_nbsp"`
	CollapseSpaces  bool `yaml:"collapse_spaces"`
	MaxPreviewChars int  `yaml:"max_preview_chars"`
}

type CacheConfig struct {
	Backend   string      `yaml:"backend" env:"CACHE_BACKEND"`
	Path      string      `yaml:"path" env:"CACHE_PATH"`
	DurationS int         `yaml:"duration_s"`
	Redis     RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	Key      string `yaml:"key"`
}

// StorageConfig describes the article store. Driver "none" runs without one.
// MaxAgeS bounds how long stored articles are retained and is unrelated to the scrape cache duration.
type StorageConfig struct {
	Driver           string `yaml:"driver" env:"STORE_DRIVER"`
	DSN              string `yaml:"dsn" env:"STORE_DSN,MONGODB_URI,MONGO_URI"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
	QueryLimit       int    `yaml:"query_limit"`
	MaxAgeS          int    `yaml:"max_age_s" env:"MAX_CACHE_AGE"`
}

type SchedulerConfig struct {
	Mode      string `yaml:"mode" env:"SCHEDULER_MODE"`
	IntervalS int    `yaml:"interval_s" env:"SCRAPE_INTERVAL"`
	CronExpr  string `yaml:"cron_expr"`
}

type ServerConfig struct {
	Addr             string `yaml:"addr" env:"SERVER_ADDR"`
	ShutdownTimeoutS int    `yaml:"shutdown_timeout_s"`
	Version          string `yaml:"version"`
}

type ObservabilityConfig struct {
	LogPath  string `yaml:"log_path" env:"LOG_PATH"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// AIConfig is carried for the answer-generation collaborator; nothing in this module calls it.
type AIConfig struct {
	DeepSeekAPIKey string `yaml:"deepseek_api_key" env:"DEEPSEEK_API_KEY"`
}

// Default returns the configuration used when no file overrides a value.
func Default() Config {
	return Config{
		Site: SiteConfig{
			BaseURL: "https://ameco.et",
		},
		HTTP: HTTPConfig{
			UserAgent:              "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			AcceptLanguage:         "en-US,en;q=0.5",
			TimeoutMS:              10000,
			MaxAttempts:            3,
			MaxIdleConnections:     100,
			IdleConnectionTimeoutS: 90,
			RespectRobots:          true,
			RobotsCacheTTLHours:    12,
		},
		RateLimit: RateLimitConfig{
			RPM:   120,
			Burst: 5,
		},
		Rod: RodConfig{
			PageTimeoutS:     30,
			WaitLoadTimeoutS: 15,
		},
		Normalize: NormalizeConfig{
			TrimNBSP:        true,
			CollapseSpaces:  true,
			MaxPreviewChars: 120,
		},
		Cache: CacheConfig{
			Backend:   "file",
			Path:      "data/amc_cache.json",
			DurationS: 3600,
			Redis: RedisConfig{
				Address: "localhost:6379",
				Key:     "amc:cache:articles",
			},
		},
		Storage: StorageConfig{
			Driver:           "none",
			CommandTimeoutMS: 5000,
			QueryLimit:       5,
			MaxAgeS:          86400,
		},
		Scheduler: SchedulerConfig{
			Mode:      "interval",
			IntervalS: 3600,
		},
		Server: ServerConfig{
			Addr:             ":5000",
			ShutdownTimeoutS: 10,
			Version:          "1.0.0",
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("site.base_url must be an absolute http(s) URL: %q", c.Site.BaseURL)
	}
	if c.Site.MaxLinks < 0 {
		return fmt.Errorf("site.max_links must be >= 0")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.TimeoutMS <= 0 {
		return fmt.Errorf("http.timeout_ms must be > 0")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.Backoff.MinMS < 0 || c.Backoff.MaxMS < 0 {
		return fmt.Errorf("backoff.min_ms and backoff.max_ms must be >= 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS && c.Backoff.MaxMS > 0 {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	if c.RateLimit.RPM < 0 {
		return fmt.Errorf("rate_limit.rpm must be >= 0")
	}
	if c.Rod.Enabled {
		if c.Rod.PageTimeoutS <= 0 {
			return fmt.Errorf("rod.page_timeout_s must be > 0")
		}
		if c.Rod.WaitLoadTimeoutS <= 0 {
			return fmt.Errorf("rod.wait_load_timeout_s must be > 0")
		}
		if c.Rod.LazyLoadDelayS < 0 {
			return fmt.Errorf("rod.lazy_load_delay_s must be >= 0")
		}
	}
	switch c.Cache.Backend {
	case "file":
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required when cache.backend is 'file'")
		}
	case "redis":
		if c.Cache.Redis.Address == "" {
			return fmt.Errorf("cache.redis.address is required when cache.backend is 'redis'")
		}
		if c.Cache.Redis.Key == "" {
			return fmt.Errorf("cache.redis.key is required when cache.backend is 'redis'")
		}
	default:
		return fmt.Errorf("cache.backend must be 'file' or 'redis'")
	}
	if c.Cache.DurationS <= 0 {
		return fmt.Errorf("cache.duration_s must be > 0")
	}
	switch c.Storage.Driver {
	case "none":
	case "mssql", "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required when storage.driver is %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be 'none', 'mssql' or 'postgres'")
	}
	if c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0")
	}
	if c.Storage.QueryLimit <= 0 {
		return fmt.Errorf("storage.query_limit must be > 0")
	}
	if c.Storage.MaxAgeS < 0 {
		return fmt.Errorf("storage.max_age_s must be >= 0")
	}
	if c.Scheduler.Mode == "" || (c.Scheduler.Mode != "interval" && c.Scheduler.Mode != "cron" && c.Scheduler.Mode != "oneshot" && c.Scheduler.Mode != "off") {
		return fmt.Errorf("scheduler.mode must be 'interval', 'cron', 'oneshot' or 'off'")
	}
	if c.Scheduler.Mode == "interval" && c.Scheduler.IntervalS <= 0 {
		return fmt.Errorf("scheduler.interval_s must be > 0 when mode is 'interval'")
	}
	if c.Scheduler.Mode == "cron" && c.Scheduler.CronExpr == "" {
		return fmt.Errorf("scheduler.cron_expr must be set when mode is 'cron'")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	return nil
}

// Getters
func (c *Config) GetHTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutMS) * time.Millisecond
}

func (c *Config) GetIdleConnectionTimeout() time.Duration {
	return time.Duration(c.HTTP.IdleConnectionTimeoutS) * time.Second
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.HTTP.RobotsCacheTTLHours) * time.Hour
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetCacheDuration() time.Duration {
	return time.Duration(c.Cache.DurationS) * time.Second
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetStoreMaxAge() time.Duration {
	return time.Duration(c.Storage.MaxAgeS) * time.Second
}

func (c *Config) GetSchedulerInterval() time.Duration {
	return time.Duration(c.Scheduler.IntervalS) * time.Second
}

func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutS) * time.Second
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodWaitLoadTimeout() time.Duration {
	return time.Duration(c.Rod.WaitLoadTimeoutS) * time.Second
}

func (c *Config) GetRodLazyLoadDelay() time.Duration {
	return time.Duration(c.Rod.LazyLoadDelayS) * time.Second
}
