// Package tasklet runs a port.Tasklet as a job step.
package tasklet

import (
	"context"

	port "github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	repository "github.com/Yognotiano/TESIS/pkg/batch/core/domain/repository"
	metrics "github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	exception "github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	logger "github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// TaskletStep is a port.Step that delegates to a single Tasklet.
type TaskletStep struct {
	name                   string
	tasklet                port.Tasklet
	jobRepository          repository.JobRepository
	stepExecutionListeners []port.StepExecutionListener
	metricRecorder         metrics.MetricRecorder
	tracer                 metrics.Tracer
}

// NewTaskletStep creates a new TaskletStep. Nil recorder and tracer fall back to no-ops.
func NewTaskletStep(
	name string,
	tasklet port.Tasklet,
	jobRepository repository.JobRepository,
	listeners []port.StepExecutionListener,
	metricRecorder metrics.MetricRecorder,
	tracer metrics.Tracer,
) *TaskletStep {
	if metricRecorder == nil {
		metricRecorder = metrics.NewNoOpMetricRecorder()
	}
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	return &TaskletStep{
		name:                   name,
		tasklet:                tasklet,
		jobRepository:          jobRepository,
		stepExecutionListeners: listeners,
		metricRecorder:         metricRecorder,
		tracer:                 tracer,
	}
}

// StepName returns the step name.
func (s *TaskletStep) StepName() string {
	return s.name
}

// Execute runs the Tasklet and records the outcome on stepExecution.
func (s *TaskletStep) Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) (err error) {
	logger.Debugf("TaskletStep '%s' executing.", s.name)

	ctx, endSpan := s.tracer.StartStepSpan(ctx, stepExecution)
	defer endSpan()
	ctx = port.WithStepExecution(ctx, stepExecution)

	stepExecution.MarkAsStarted()
	if err := s.jobRepository.UpdateStepExecution(ctx, stepExecution); err != nil {
		return exception.NewBatchError(s.name, "Failed to update StepExecution status to STARTED", err, false, false)
	}
	s.metricRecorder.RecordStepStart(ctx, stepExecution)

	if err := s.tasklet.SetExecutionContext(ctx, stepExecution.ExecutionContext); err != nil {
		stepExecution.MarkAsFailed(err)
		_ = s.jobRepository.UpdateStepExecution(ctx, stepExecution)
		return exception.NewBatchError(s.name, "Failed to set Tasklet ExecutionContext", err, false, false)
	}

	for _, l := range s.stepExecutionListeners {
		l.BeforeStep(ctx, stepExecution)
	}

	exitStatus, err := s.tasklet.Execute(ctx, stepExecution)

	if ec, getErr := s.tasklet.GetExecutionContext(ctx); getErr == nil {
		stepExecution.ExecutionContext = ec
	} else {
		logger.Warnf("TaskletStep '%s': Failed to retrieve ExecutionContext from Tasklet: %v", s.name, getErr)
	}

	if closeErr := s.tasklet.Close(ctx); closeErr != nil {
		logger.Errorf("TaskletStep '%s': Failed to close Tasklet: %v", s.name, closeErr)
		if err == nil {
			err = closeErr
		}
	}

	if err != nil {
		s.tracer.RecordError(ctx, s.name, err)
		stepExecution.MarkAsFailed(err)
	} else {
		stepExecution.MarkAsCompleted()
		stepExecution.ExitStatus = exitStatus
	}

	for _, l := range s.stepExecutionListeners {
		l.AfterStep(ctx, stepExecution)
	}
	s.metricRecorder.RecordStepEnd(ctx, stepExecution)

	if updateErr := s.jobRepository.UpdateStepExecution(ctx, stepExecution); updateErr != nil {
		logger.Errorf("TaskletStep '%s': Failed to update final StepExecution state: %v", s.name, updateErr)
		if err == nil {
			err = updateErr
		}
	}

	logger.Debugf("TaskletStep '%s' finished. ExitStatus: %s", s.name, stepExecution.ExitStatus)
	return err
}

var _ port.Step = (*TaskletStep)(nil)
