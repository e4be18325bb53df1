// Package port defines the core interfaces (ports) for the batch application.
// Steps, tasklets, readers and writers are expressed here so the launcher and
// the thermometer jobs can depend on abstractions rather than on backends.
package port

import (
	"context"
	"errors"

	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
)

// ErrNoMoreItems is returned by ItemReader.Read once the source is exhausted.
var ErrNoMoreItems = errors.New("no more items to read")

// Job is a named, ordered list of steps.
type Job interface {
	// JobName returns the logical name of the job.
	JobName() string
	// Steps returns the steps in execution order.
	Steps() []Step
}

// Step is a single unit of work executed within a job.
type Step interface {
	// Execute runs the step and updates stepExecution with its outcome.
	//
	// Parameters:
	//   ctx: The context for the operation.
	//   jobExecution: The owning JobExecution.
	//   stepExecution: The StepExecution to populate.
	//
	// Returns:
	//   error: A fatal error. Skippable problems are counted on stepExecution instead.
	Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error
	// StepName returns the logical name of the step.
	StepName() string
}

// JobLauncher starts jobs.
type JobLauncher interface {
	// Launch runs job to completion and returns its JobExecution. The returned error
	// is the first fatal error, if any; the execution is returned in both cases.
	Launch(ctx context.Context, job Job, params model.JobParameters) (*model.JobExecution, error)
}

// ItemReader is the interface for a data reading component.
// O is the type of item to be read.
type ItemReader[O any] interface {
	// Open opens resources and restores state from ExecutionContext.
	Open(ctx context.Context, ec model.ExecutionContext) error
	// Read reads the next item. Returns ErrNoMoreItems if no more items are available.
	Read(ctx context.Context) (O, error)
	// Close closes resources.
	Close(ctx context.Context) error
}

// ItemWriter is the interface for a data writing component.
// I is the type of item to be written.
type ItemWriter[I any] interface {
	// Open opens resources and restores state from ExecutionContext.
	Open(ctx context.Context, ec model.ExecutionContext) error
	// Write persists a list of items.
	Write(ctx context.Context, items []I) error
	// Close flushes and closes resources. Nothing is guaranteed to be persisted before Close returns.
	Close(ctx context.Context) error
	// GetTargetName returns the storage or database connection name written to.
	GetTargetName() string
	// GetTableName returns the name of the target table.
	GetTableName() string
}

// Tasklet is the interface for a step that performs a single operation.
type Tasklet interface {
	// Execute executes the business logic of the Tasklet.
	// Returns an ExitStatus such as ExitStatusCompleted upon success.
	Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)
	// Close releases resources.
	Close(ctx context.Context) error
	// SetExecutionContext sets the ExecutionContext.
	SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error
	// GetExecutionContext retrieves the ExecutionContext.
	GetExecutionContext(ctx context.Context) (model.ExecutionContext, error)
}

// JobExecutionListener observes job boundaries.
type JobExecutionListener interface {
	BeforeJob(ctx context.Context, jobExecution *model.JobExecution)
	AfterJob(ctx context.Context, jobExecution *model.JobExecution)
}

// StepExecutionListener observes step boundaries.
type StepExecutionListener interface {
	BeforeStep(ctx context.Context, stepExecution *model.StepExecution)
	AfterStep(ctx context.Context, stepExecution *model.StepExecution)
}
