// Package metrics counts flow attempts with Prometheus collectors and exports
// them in the node-exporter textfile format at the end of a command.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fileconv/internal/logging"
	"fileconv/internal/services"
	"fileconv/internal/session"
)

// Metrics owns a private registry so each command run exports only its own
// attempts.
type Metrics struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	uploads            *prometheus.CounterVec
	uploadDuration     prometheus.Histogram
	conversions        *prometheus.CounterVec
	conversionDuration *prometheus.HistogramVec
	progressTicks      prometheus.Histogram
	downloads          *prometheus.CounterVec
	downloadBytes      prometheus.Counter
	lastSuccess        prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New(logger *slog.Logger) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logger:   logging.NewComponentLogger(logger, "metrics"),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileconv_uploads_total",
				Help: "Upload attempts by outcome",
			},
			[]string{"outcome"},
		),
		uploadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fileconv_upload_duration_seconds",
				Help:    "Time from upload request to response",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileconv_conversions_total",
				Help: "Conversion attempts by category, target format and outcome",
			},
			[]string{"category", "target_format", "outcome"},
		),
		conversionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fileconv_conversion_duration_seconds",
				Help:    "Time from conversion request to terminal state, display delay included",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		),
		progressTicks: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fileconv_progress_ticks",
				Help:    "Cosmetic progress increments applied before the request resolved",
				Buckets: prometheus.LinearBuckets(0, 3, 7),
			},
		),
		downloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fileconv_downloads_total",
				Help: "Download attempts by outcome",
			},
			[]string{"outcome"},
		),
		downloadBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fileconv_download_bytes_total",
				Help: "Bytes written by successful downloads",
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "fileconv_last_conversion_success_timestamp_seconds",
				Help: "Unix time of the last successful conversion",
			},
		),
	}
	m.registry.MustRegister(
		m.uploads,
		m.uploadDuration,
		m.conversions,
		m.conversionDuration,
		m.progressTicks,
		m.downloads,
		m.downloadBytes,
		m.lastSuccess,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordUpload(_ context.Context, rec session.UploadRecord) {
	outcome := services.Outcome(rec.Err)
	m.uploads.WithLabelValues(outcome).Inc()
	if outcome != services.OutcomeInvalid {
		m.uploadDuration.Observe(rec.Duration.Seconds())
	}
}

func (m *Metrics) RecordConversion(_ context.Context, rec session.ConversionRecord) {
	outcome := services.Outcome(rec.Err)
	category := rec.Category
	if category == "" {
		category = "unknown"
	}
	m.conversions.WithLabelValues(category, rec.TargetFormat, outcome).Inc()
	m.conversionDuration.WithLabelValues(outcome).Observe(rec.Duration.Seconds())
	m.progressTicks.Observe(float64(rec.Ticks))
	if rec.Err == nil {
		m.lastSuccess.Set(float64(rec.Started.Add(rec.Duration).Unix()))
	}
}

// RecordDownload counts a download attempt.
func (m *Metrics) RecordDownload(bytes int64, err error) {
	m.downloads.WithLabelValues(services.Outcome(err)).Inc()
	if err == nil {
		m.downloadBytes.Add(float64(bytes))
	}
}

// WriteTextfile writes the registry to path for the node-exporter textfile
// collector. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	started := time.Now()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	m.logger.Debug("metrics written", logging.String("path", path), logging.Duration("elapsed", time.Since(started)))
	return nil
}
