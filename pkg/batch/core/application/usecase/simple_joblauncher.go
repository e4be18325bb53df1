// Package usecase runs jobs.
package usecase

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	port "github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	repository "github.com/Yognotiano/TESIS/pkg/batch/core/domain/repository"
	metrics "github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	exception "github.com/Yognotiano/TESIS/pkg/batch/support/util/exception"
	logger "github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// SimpleJobLauncher runs a job's steps sequentially in the caller's goroutine.
type SimpleJobLauncher struct {
	jobRepository  repository.JobRepository
	metricRecorder metrics.MetricRecorder
	tracer         metrics.Tracer
	listeners      []port.JobExecutionListener
}

// LauncherParams are the fx dependencies of SimpleJobLauncher.
type LauncherParams struct {
	fx.In
	JobRepository  repository.JobRepository
	MetricRecorder metrics.MetricRecorder
	Tracer         metrics.Tracer
	Listeners      []port.JobExecutionListener `group:"job_listeners"`
}

// NewSimpleJobLauncher creates a new SimpleJobLauncher.
func NewSimpleJobLauncher(p LauncherParams) *SimpleJobLauncher {
	return &SimpleJobLauncher{
		jobRepository:  p.JobRepository,
		metricRecorder: p.MetricRecorder,
		tracer:         p.Tracer,
		listeners:      p.Listeners,
	}
}

// Launch runs job to completion. The JobExecution is returned even when a step fails;
// the error is the failing step's error.
func (l *SimpleJobLauncher) Launch(ctx context.Context, job port.Job, params model.JobParameters) (*model.JobExecution, error) {
	const op = "SimpleJobLauncher.Launch"
	logger.Debugf("Launching Job '%s'. Parameters: %s", job.JobName(), params.String())

	je := model.NewJobExecution(job.JobName(), params)
	if err := l.jobRepository.SaveJobExecution(ctx, je); err != nil {
		return nil, exception.NewBatchError(op, fmt.Sprintf("Failed to save JobExecution for '%s'", job.JobName()), err, false, false)
	}

	ctx, endSpan := l.tracer.StartJobSpan(ctx, je)
	defer endSpan()

	je.MarkAsStarted()
	l.metricRecorder.RecordJobStart(ctx, je)
	for _, li := range l.listeners {
		li.BeforeJob(ctx, je)
	}

	runErr := l.runSteps(ctx, job, je)
	if runErr != nil {
		l.tracer.RecordError(ctx, job.JobName(), runErr)
		je.MarkAsFailed(runErr)
	} else {
		je.MarkAsCompleted()
	}

	for _, li := range l.listeners {
		li.AfterJob(ctx, je)
	}
	l.metricRecorder.RecordJobEnd(ctx, je)
	if err := l.jobRepository.UpdateJobExecution(ctx, je); err != nil {
		logger.Errorf("Failed to update final JobExecution state (ID: %s): %v", je.ID, err)
	}
	return je, runErr
}

func (l *SimpleJobLauncher) runSteps(ctx context.Context, job port.Job, je *model.JobExecution) error {
	for _, step := range job.Steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		se := model.NewStepExecution(je, step.StepName())
		if err := l.jobRepository.SaveStepExecution(ctx, se); err != nil {
			return exception.NewBatchError(step.StepName(), "Failed to save StepExecution", err, false, false)
		}
		if err := step.Execute(ctx, je, se); err != nil {
			return err
		}
	}
	return nil
}

var _ port.JobLauncher = (*SimpleJobLauncher)(nil)
