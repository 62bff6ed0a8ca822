// Package observability provides structured logging and Prometheus metrics
// for the analytics service.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from the configured level and format
// ("json" or "console").
func NewLogger(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if format == "console" {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return cfg.Build()
}

// Metrics holds the Prometheus instruments for the service.
type Metrics struct {
	registry *prometheus.Registry

	// Ingestion
	DatasetsLoaded  *prometheus.CounterVec // source: upload, generate
	RecordsIngested prometheus.Counter
	RowsDropped     prometheus.Counter
	DatasetRecords  prometheus.Gauge

	// Analytics
	AnalysesTotal    *prometheus.CounterVec // kind: temporal, predictions, clustering
	AnalysisDuration *prometheus.HistogramVec
}

// NewMetrics registers the service metrics on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		DatasetsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "incidentscope_datasets_loaded_total",
			Help: "Datasets that replaced the working slot, by source.",
		}, []string{"source"}),
		RecordsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "incidentscope_records_ingested_total",
			Help: "Incident records that survived ingestion.",
		}),
		RowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "incidentscope_rows_dropped_total",
			Help: "Input rows dropped for unparseable timestamps.",
		}),
		DatasetRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "incidentscope_dataset_records",
			Help: "Record count of the current working dataset.",
		}),
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "incidentscope_analyses_total",
			Help: "Analyses run, by kind.",
		}, []string{"kind"}),
		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "incidentscope_analysis_duration_seconds",
			Help:    "Wall time per analysis, by kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
