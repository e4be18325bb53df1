package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	config "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	metrics "github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
)

const instrumentationName = "github.com/Yognotiano/TESIS"

// OTelRecorder is an OpenTelemetry implementation of metrics.MetricRecorder.
type OTelRecorder struct {
	provider *sdkmetric.MeterProvider

	jobs        otelmetric.Int64Counter
	jobDuration otelmetric.Float64Histogram
	stepTime    otelmetric.Float64Histogram
	reads       otelmetric.Int64Counter
	writes      otelmetric.Int64Counter
	skips       otelmetric.Int64Counter
	operations  otelmetric.Float64Histogram
}

// NewOTelMetricReader builds the periodic OTLP reader described by cfg.
func NewOTelMetricReader(ctx context.Context, cfg config.MetricsConfig) (sdkmetric.Reader, error) {
	var (
		exp sdkmetric.Exporter
		err error
	)
	switch cfg.OTLPProtocol {
	case "http":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		exp, err = otlpmetrichttp.New(ctx, opts...)
	case "", "grpc":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint))
		}
		exp, err = otlpmetricgrpc.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol '%s'", cfg.OTLPProtocol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp metric exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}

// NewOTelRecorder creates a recorder exporting through reader.
func NewOTelRecorder(reader sdkmetric.Reader, serviceName string) (*OTelRecorder, error) {
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
	meter := provider.Meter(instrumentationName)

	r := &OTelRecorder{provider: provider}
	var err error
	if r.jobs, err = meter.Int64Counter("thermolog.jobs", otelmetric.WithDescription("Finished job executions.")); err != nil {
		return nil, err
	}
	if r.jobDuration, err = meter.Float64Histogram("thermolog.job.duration", otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	if r.stepTime, err = meter.Float64Histogram("thermolog.step.duration", otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	if r.reads, err = meter.Int64Counter("thermolog.items.read"); err != nil {
		return nil, err
	}
	if r.writes, err = meter.Int64Counter("thermolog.items.written"); err != nil {
		return nil, err
	}
	if r.skips, err = meter.Int64Counter("thermolog.items.skipped"); err != nil {
		return nil, err
	}
	if r.operations, err = meter.Float64Histogram("thermolog.operation.duration", otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *OTelRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {}

func (r *OTelRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	attrs := otelmetric.WithAttributes(
		attribute.String("job_name", execution.JobName),
		attribute.String("status", execution.Status.String()),
	)
	r.jobs.Add(ctx, 1, attrs)
	if execution.EndTime != nil {
		r.jobDuration.Record(ctx, execution.EndTime.Sub(execution.StartTime).Seconds(), attrs)
	}
}

func (r *OTelRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {}

func (r *OTelRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution) {
	if execution.EndTime == nil {
		return
	}
	r.stepTime.Record(ctx, execution.EndTime.Sub(execution.StartTime).Seconds(), otelmetric.WithAttributes(
		attribute.String("job_name", jobNameOf(execution)),
		attribute.String("step_name", execution.StepName),
		attribute.String("status", execution.Status.String()),
	))
}

func (r *OTelRecorder) RecordItemRead(ctx context.Context, stepName string, count int) {
	r.reads.Add(ctx, int64(count), stepAttrs(ctx, stepName))
}

func (r *OTelRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	r.writes.Add(ctx, int64(count), stepAttrs(ctx, stepName))
}

func (r *OTelRecorder) RecordItemSkip(ctx context.Context, stepName string, reason string) {
	r.skips.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("job_name", jobNameFromContext(ctx)),
		attribute.String("step_name", stepName),
		attribute.String("reason", reason),
	))
}

func (r *OTelRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	attrs := []attribute.KeyValue{attribute.String("operation", name)}
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	r.operations.Record(ctx, duration.Seconds(), otelmetric.WithAttributes(attrs...))
}

// Flush exports pending data and shuts the provider down.
func (r *OTelRecorder) Flush(ctx context.Context) error {
	if err := r.provider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("failed to flush otel metrics: %w", err)
	}
	return r.provider.Shutdown(ctx)
}

func stepAttrs(ctx context.Context, stepName string) otelmetric.MeasurementOption {
	return otelmetric.WithAttributes(
		attribute.String("job_name", jobNameFromContext(ctx)),
		attribute.String("step_name", stepName),
	)
}

var (
	_ metrics.MetricRecorder = (*OTelRecorder)(nil)
	_ metrics.Flusher        = (*OTelRecorder)(nil)
)
