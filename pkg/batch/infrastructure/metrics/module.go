package metrics

import (
	"context"

	"go.uber.org/fx"

	config "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	metrics "github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	logger "github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// NewMetricRecorder selects the recorder named by cfg.Metrics.Backend.
func NewMetricRecorder(ctx context.Context, cfg *config.ObservabilityConfig) (metrics.MetricRecorder, error) {
	switch cfg.Metrics.Backend {
	case "prometheus":
		return NewPrometheusRecorder(cfg.Metrics), nil
	case "otel":
		reader, err := NewOTelMetricReader(ctx, cfg.Metrics)
		if err != nil {
			return nil, err
		}
		return NewOTelRecorder(reader, cfg.Tracing.ServiceName)
	default:
		logger.Debugf("Metrics backend '%s': metrics disabled.", cfg.Metrics.Backend)
		return metrics.NewNoOpMetricRecorder(), nil
	}
}

// NewTracer selects the tracer named by cfg.Tracing.Exporter.
func NewTracer(ctx context.Context, cfg *config.ObservabilityConfig) (metrics.Tracer, error) {
	if cfg.Tracing.Exporter == "" || cfg.Tracing.Exporter == "none" {
		return metrics.NewNoOpTracer(), nil
	}
	exp, err := NewSpanExporter(ctx, cfg.Tracing)
	if err != nil {
		return nil, err
	}
	return NewOpenTelemetryTracer(cfg.Tracing.ServiceName, sdktraceBatcher(exp)), nil
}

func registerFlush(lc fx.Lifecycle, v interface{}) {
	f, ok := v.(metrics.Flusher)
	if !ok {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := f.Flush(ctx); err != nil {
				logger.Errorf("Failed to flush observability data: %v", err)
			}
			return nil
		},
	})
}

// Module provides the metric recorder and tracer, flushing both when the application stops.
var Module = fx.Options(
	fx.Provide(func(lc fx.Lifecycle, cfg *config.ObservabilityConfig) (metrics.MetricRecorder, error) {
		r, err := NewMetricRecorder(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		registerFlush(lc, r)
		return r, nil
	}),
	fx.Provide(func(lc fx.Lifecycle, cfg *config.ObservabilityConfig) (metrics.Tracer, error) {
		t, err := NewTracer(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		registerFlush(lc, t)
		return t, nil
	}),
)
