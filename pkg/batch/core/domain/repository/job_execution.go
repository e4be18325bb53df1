package repository

import (
	"context"
	"errors"

	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
)

// ErrJobExecutionNotFound is the error returned when a JobExecution is not found.
var ErrJobExecutionNotFound = errors.New("job execution not found")

type JobExecution interface {
	// SaveJobExecution persists a new JobExecution
	SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error

	// UpdateJobExecution updates the state of an existing JobExecution
	UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error

	// FindJobExecutionByID finds a JobExecution by its ID, with its StepExecutions loaded
	FindJobExecutionByID(ctx context.Context, executionID string) (*model.JobExecution, error)

	// FindJobExecutionsByJobName returns all executions of jobName, latest first
	FindJobExecutionsByJobName(ctx context.Context, jobName string) ([]*model.JobExecution, error)
}
