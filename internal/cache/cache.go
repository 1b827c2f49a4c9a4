// Package cache keeps the last successful scrape so repeated questions within
// the freshness window are answered without touching the site.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"amc-news-assistant/internal/models"
)

// Snapshot is the most recent scrape result.
type Snapshot struct {
	Timestamp time.Time
	Data      []models.Article
}

// Fresh reports whether the snapshot is younger than duration at now.
func (s Snapshot) Fresh(now time.Time, duration time.Duration) bool {
	return now.Sub(s.Timestamp) < duration
}

// Cache stores one snapshot at a time. Load and LoadStale never fail: an
// unreadable or missing snapshot is reported as absent.
type Cache interface {
	Load(ctx context.Context) (Snapshot, bool)
	LoadStale(ctx context.Context) (Snapshot, bool)
	Save(ctx context.Context, articles []models.Article) error
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// record is the persisted layout: {"timestamp": "<ISO-8601>", "data": [...]}.
type record struct {
	Timestamp string           `json:"timestamp"`
	Data      []models.Article `json:"data"`
}

// timestampLayouts accepts zoned timestamps and the zone-less form written by
// older deployments, which is read as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func encodeRecord(now time.Time, articles []models.Article) ([]byte, error) {
	if articles == nil {
		articles = []models.Article{}
	}
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record{Timestamp: now.Format(time.RFC3339Nano), Data: articles}); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func decodeRecord(raw []byte) (Snapshot, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Timestamp: ts, Data: rec.Data}, nil
}
