package port

import (
	"context"

	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
)

type stepExecutionKey struct{}

// WithStepExecution returns a context carrying se.
func WithStepExecution(ctx context.Context, se *model.StepExecution) context.Context {
	return context.WithValue(ctx, stepExecutionKey{}, se)
}

// GetStepExecutionFromContext returns the StepExecution stored by WithStepExecution, or nil.
func GetStepExecutionFromContext(ctx context.Context) *model.StepExecution {
	se, _ := ctx.Value(stepExecutionKey{}).(*model.StepExecution)
	return se
}
