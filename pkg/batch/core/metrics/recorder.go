// Package metrics abstracts metric collection and tracing for batch execution.
package metrics

import (
	"context"
	"time"

	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
)

// MetricRecorder records metrics about job, step and item level events.
// Backends (Prometheus, OpenTelemetry) implement it; NoOpMetricRecorder is the fallback.
type MetricRecorder interface {
	// RecordJobStart records the start of a JobExecution.
	RecordJobStart(ctx context.Context, execution *model.JobExecution)
	// RecordJobEnd records the end of a JobExecution.
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)
	// RecordStepStart records the start of a StepExecution.
	RecordStepStart(ctx context.Context, execution *model.StepExecution)
	// RecordStepEnd records the end of a StepExecution.
	RecordStepEnd(ctx context.Context, execution *model.StepExecution)

	// RecordItemRead records count items (source lines, table rows) read by stepName.
	RecordItemRead(ctx context.Context, stepName string, count int)
	// RecordItemWrite records count items written by stepName.
	RecordItemWrite(ctx context.Context, stepName string, count int)
	// RecordItemSkip records one skipped item. reason is a short error kind
	// such as "line_skip", "file_open" or "header_malformed".
	RecordItemSkip(ctx context.Context, stepName string, reason string)

	// RecordDuration records the execution time of a named operation.
	//   tags: additional labels, e.g. {"format": "parquet"}.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}

// Flusher is implemented by recorders that must export on shutdown (textfile, push gateway, OTLP).
type Flusher interface {
	Flush(ctx context.Context) error
}
