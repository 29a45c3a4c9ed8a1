// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	StreamCacheHits   prometheus.Counter
	StreamCacheMisses prometheus.Counter
	LiveLookups       prometheus.Counter
	LiveLookupsFailed prometheus.Counter
	CapturesStarted   prometheus.Counter
	CapturesFailed    prometheus.Counter
	CapturesSucceeded prometheus.Counter
	FramesReused      prometheus.Counter
	QuotesSaved       prometheus.Counter
	QuotesServed      prometheus.Counter
	QuotesDeleted     prometheus.Counter

	// Histograms (seconds)
	CaptureDuration prometheus.Observer

	// Gauges
	QuoteCountGauge prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		StreamCacheHits = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_stream_cache_hits_total", Help: "Stream info served from the link cache"})
		StreamCacheMisses = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_stream_cache_misses_total", Help: "Stream info requests that missed the link cache"})
		LiveLookups = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_live_lookups_total", Help: "Live channel listing queries issued"})
		LiveLookupsFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_live_lookups_failed_total", Help: "Live channel listing queries that failed"})
		CapturesStarted = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_captures_started_total", Help: "Frame captures started"})
		CapturesFailed = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_captures_failed_total", Help: "Frame captures failed"})
		CapturesSucceeded = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_captures_succeeded_total", Help: "Frame captures succeeded"})
		FramesReused = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_frames_reused_total", Help: "Captures served from a fresh on-disk frame"})
		QuotesSaved = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_quotes_saved_total", Help: "Quotes saved"})
		QuotesServed = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_quotes_served_total", Help: "Quotes served via random retrieval"})
		QuotesDeleted = promauto.NewCounter(prometheus.CounterOpts{Name: "recorder_quotes_deleted_total", Help: "Quotes deleted"})
		CaptureDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "recorder_capture_duration_seconds", Help: "Frame capture duration seconds", Buckets: prometheus.DefBuckets})
		QuoteCountGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "recorder_quotes", Help: "Current number of stored quotes"})
	})
}

// SetQuoteCount records the current stored quote count.
func SetQuoteCount(n int) {
	if QuoteCountGauge != nil {
		QuoteCountGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records it in obs if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with a corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
