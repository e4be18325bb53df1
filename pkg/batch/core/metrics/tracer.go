package metrics

import (
	"context"

	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
)

// Tracer abstracts distributed tracing of job and step executions.
type Tracer interface {
	// StartJobSpan starts a span for a JobExecution.
	// The returned function ends the span; call it in a defer statement.
	StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func())
	// StartStepSpan starts a span for a StepExecution, usually under a job span.
	StartStepSpan(ctx context.Context, execution *model.StepExecution) (context.Context, func())
	// RecordError records an error on the current span.
	RecordError(ctx context.Context, module string, err error)
	// RecordEvent records a named event on the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
