package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global metric container for the pipeline.
type Metrics struct {
	// Stage metrics
	StageRunsTotal *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec

	// APSP engine metrics
	PivotRoundsTotal     prometheus.Counter
	BlockBroadcastsTotal *prometheus.CounterVec
	BlocksGatheredTotal  prometheus.Counter
	GraphVertices        *prometheus.HistogramVec
	APSPBlockSize        prometheus.Gauge

	// Medoid engine metrics
	SwapEvaluationsTotal prometheus.Counter
	ImprovementPasses    prometheus.Counter
	ClusterCost          prometheus.Gauge

	// Service info
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics initializes the pipeline metrics.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		StageRunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stage_runs_total",
				Help:      "Total number of pipeline stage executions",
			},
			[]string{"stage", "status"},
		),

		StageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stage executions",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"stage"},
		),

		PivotRoundsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "apsp_pivot_rounds_total",
				Help:      "Total number of pivot-block rounds executed",
			},
		),

		BlockBroadcastsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "apsp_block_broadcasts_total",
				Help:      "Total number of block broadcasts by phase",
			},
			[]string{"phase"},
		),

		BlocksGatheredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "apsp_blocks_gathered_total",
				Help:      "Total number of blocks collected by the coordinator",
			},
		),

		GraphVertices: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_vertices_total",
				Help:      "Number of vertices in processed graphs",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000},
			},
			[]string{"stage"},
		),

		APSPBlockSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "apsp_block_size",
				Help:      "Block edge length chosen for the last APSP run",
			},
		),

		SwapEvaluationsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pam_swap_evaluations_total",
				Help:      "Total number of medoid swap candidates evaluated",
			},
		),

		ImprovementPasses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pam_improvement_passes_total",
				Help:      "Total number of completed improvement passes",
			},
		),

		ClusterCost: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "pam_total_cost",
				Help:      "Total cost of the last clustering result",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service metadata",
			},
			[]string{"version", "environment"},
		),
	}

	prometheus.MustRegister(NewRuntimeCollector(namespace, subsystem))

	defaultMetrics = m
	return m
}

// Default returns the global metrics container, or nil when metrics are
// disabled.
func Default() *Metrics {
	return defaultMetrics
}

// RecordStage records one stage execution.
func (m *Metrics) RecordStage(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StageRunsTotal.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Serve starts the metrics HTTP server. It returns the server so the caller
// can shut it down when the job finishes.
func Serve(port int, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		// The job keeps running without metrics.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics server stopped", "error", err)
		}
	}()

	return srv
}
