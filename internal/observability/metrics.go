package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scrape outcomes recorded by ObserveScrape.
const (
	ScrapeLive       = "live"
	ScrapeFreshCache = "fresh_cache"
	ScrapeStaleCache = "stale_cache"
	ScrapeEmpty      = "empty"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	scrapeRuns      *prometheus.CounterVec
	scrapedArticles prometheus.Gauge
	fetchAttempts   *prometheus.CounterVec
	askRequests     *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scrapeRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amc",
			Name:      "scrape_runs_total",
			Help:      "Scrape passes by outcome.",
		}, []string{"outcome"}),
		scrapedArticles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "amc",
			Name:      "scraped_articles",
			Help:      "Articles returned by the last scrape pass.",
		}),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amc",
			Name:      "fetch_attempts_total",
			Help:      "Outbound page fetch attempts by result.",
		}, []string{"result"}),
		askRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "amc",
			Name:      "ask_requests_total",
			Help:      "Answered questions by source.",
		}, []string{"source"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "amc",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.scrapeRuns,
		m.scrapedArticles,
		m.fetchAttempts,
		m.askRequests,
		m.httpDuration,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveScrape(outcome string, articles int) {
	if m == nil {
		return
	}
	m.scrapeRuns.WithLabelValues(outcome).Inc()
	m.scrapedArticles.Set(float64(articles))
}

func (m *Metrics) ObserveFetchAttempt(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetchAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAsk(source string) {
	if m == nil {
		return
	}
	m.askRequests.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
