package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.ObserveScrape(ScrapeLive, 4)
	m.ObserveScrape(ScrapeStaleCache, 2)
	m.ObserveFetchAttempt(nil)
	m.ObserveFetchAttempt(errors.New("timeout"))
	m.ObserveFetchAttempt(errors.New("timeout"))
	m.ObserveAsk("institutional")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.scrapeRuns.WithLabelValues(ScrapeLive)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.scrapedArticles))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchAttempts.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.askRequests.WithLabelValues("institutional")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveScrape(ScrapeEmpty, 0)
	m.ObserveFetchAttempt(nil)
	m.ObserveAsk("scrape")
	m.ObserveHTTP(http.MethodGet, "/api/health", 200, time.Millisecond)
	require.NotNil(t, m.Handler())
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTP(http.MethodPost, "/api/ask", 200, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "amc_http_request_duration_seconds")
}

func TestLoggerLevels(t *testing.T) {
	logger := NewLogger("", "debug")
	logger.With("component", "test").Debug("debug entry", "k", 1)
	logger.Info("info entry")

	NewNopLogger().Error("discarded", "error", "x")
}
