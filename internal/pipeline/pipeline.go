// Package pipeline wires the distributed engines to configuration, logging,
// metrics, tracing and the file formats. The three stage entry points back
// the pipeline binaries.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"seqclust/pkg/config"
	"seqclust/pkg/logger"
	"seqclust/pkg/metrics"
	"seqclust/pkg/telemetry"
)

// Runtime carries the process-wide facilities of one pipeline invocation.
type Runtime struct {
	Cfg     *config.Config
	RunID   string
	Metrics *metrics.Metrics

	provider   *telemetry.Provider
	metricsSrv *http.Server
}

// NewRuntime initializes logging, metrics and tracing from the configuration.
// Call Close before the process exits.
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	rt := &Runtime{
		Cfg:   cfg,
		RunID: uuid.NewString(),
	}

	if cfg.Metrics.Enabled {
		rt.Metrics = metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		rt.Metrics.ServiceInfo.WithLabelValues(cfg.App.Version, cfg.App.Environment).Set(1)
		rt.metricsSrv = metrics.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	provider, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Warn("failed to init telemetry, continuing without tracing", "error", err)
	} else {
		rt.provider = provider
	}

	logger.Info("pipeline runtime ready",
		"run_id", rt.RunID,
		"participants", cfg.Engine.Participants,
		"environment", cfg.App.Environment,
	)

	return rt, nil
}

// Close flushes telemetry and stops the metrics server.
func (rt *Runtime) Close(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rt.provider != nil {
		if err := rt.provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shutdown telemetry", "error", err)
		}
	}
	if rt.metricsSrv != nil {
		if err := rt.metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shutdown metrics server", "error", err)
		}
	}
}

// recordStage pushes one stage outcome into metrics, when enabled.
func (rt *Runtime) recordStage(stage string, elapsed time.Duration, err error) {
	if rt.Metrics != nil {
		rt.Metrics.RecordStage(stage, elapsed, err)
	}
}

// summary prints a line of the coordinator's run summary on stdout.
func summary(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}
