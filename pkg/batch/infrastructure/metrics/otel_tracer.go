package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	config "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	metrics "github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	logger "github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// OpenTelemetryTracer is an implementation of metrics.Tracer using OpenTelemetry.
type OpenTelemetryTracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewSpanExporter builds the OTLP span exporter selected by cfg.Exporter.
func NewSpanExporter(ctx context.Context, cfg config.TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlpgrpc":
		var opts []otlptracegrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	case "otlphttp":
		var opts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported trace exporter '%s'", cfg.Exporter)
	}
}

// NewOpenTelemetryTracer creates a tracer whose spans go to the given processors.
func NewOpenTelemetryTracer(serviceName string, processors ...sdktrace.SpanProcessor) *OpenTelemetryTracer {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	}
	for _, p := range processors {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}
	provider := sdktrace.NewTracerProvider(opts...)
	return &OpenTelemetryTracer{provider: provider, tracer: provider.Tracer(instrumentationName)}
}

// StartJobSpan starts a new span for a JobExecution.
func (t *OpenTelemetryTracer) StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "job "+execution.JobName, trace.WithAttributes(
		attribute.String("job.execution_id", execution.ID),
		attribute.String("job.parameters", execution.Parameters.String()),
	))
	return ctx, func() {
		span.SetAttributes(attribute.String("job.status", execution.Status.String()))
		span.End()
	}
}

// StartStepSpan starts a new span for a StepExecution.
func (t *OpenTelemetryTracer) StartStepSpan(ctx context.Context, execution *model.StepExecution) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "step "+execution.StepName, trace.WithAttributes(
		attribute.String("step.execution_id", execution.ID),
	))
	return ctx, func() {
		span.SetAttributes(
			attribute.String("step.status", execution.Status.String()),
			attribute.Int("step.read_count", execution.ReadCount),
			attribute.Int("step.write_count", execution.WriteCount),
			attribute.Int("step.skip_count", execution.SkipReadCount),
		)
		span.End()
	}
}

// RecordError marks the current span as failed.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, trace.WithAttributes(attribute.String("module", module)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordEvent adds an event to the current span. Attribute values are rendered with %v.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", v)))
	}
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

func sdktraceBatcher(exp sdktrace.SpanExporter) sdktrace.SpanProcessor {
	return sdktrace.NewBatchSpanProcessor(exp)
}

// Flush exports pending spans and shuts the provider down.
func (t *OpenTelemetryTracer) Flush(ctx context.Context) error {
	if err := t.provider.ForceFlush(ctx); err != nil {
		logger.Warnf("Failed to flush spans: %v", err)
	}
	return t.provider.Shutdown(ctx)
}

var (
	_ metrics.Tracer  = (*OpenTelemetryTracer)(nil)
	_ metrics.Flusher = (*OpenTelemetryTracer)(nil)
)
