// Package logging provides listeners that report job and step progress through the logger.
package logging

import (
	"context"
	"time"

	"go.uber.org/fx"

	port "github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	logger "github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

type LoggingJobListener struct{}

func NewLoggingJobListener() port.JobExecutionListener {
	return &LoggingJobListener{}
}

func (l *LoggingJobListener) BeforeJob(ctx context.Context, je *model.JobExecution) {
	logger.Debugf("Job '%s' (ID: %s) starting. Params: %s", je.JobName, je.ID, je.Parameters.String())
}

func (l *LoggingJobListener) AfterJob(ctx context.Context, je *model.JobExecution) {
	if je.Status == model.BatchStatusFailed {
		logger.Errorf("Job '%s' failed after %s: %v", je.JobName, je.Duration().Round(time.Millisecond), je.Failures)
		return
	}
	logger.Debugf("Job '%s' finished. Status: %s, ExitStatus: %s, took %s", je.JobName, je.Status, je.ExitStatus, je.Duration().Round(time.Millisecond))
}

type LoggingStepListener struct{}

func NewLoggingStepListener() port.StepExecutionListener {
	return &LoggingStepListener{}
}

func (l *LoggingStepListener) BeforeStep(ctx context.Context, se *model.StepExecution) {
	logger.Debugf("Step '%s' starting.", se.StepName)
}

// AfterStep logs the step counters: lines read, rows written, items skipped.
func (l *LoggingStepListener) AfterStep(ctx context.Context, se *model.StepExecution) {
	logger.Infof("Step '%s' %s: read=%d written=%d skipped=%d", se.StepName, se.Status, se.ReadCount, se.WriteCount, se.SkipReadCount)
}

var (
	_ port.JobExecutionListener  = (*LoggingJobListener)(nil)
	_ port.StepExecutionListener = (*LoggingStepListener)(nil)
)

// Module contributes the logging listeners to the job_listeners and step_listeners groups.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewLoggingJobListener, fx.ResultTags(`group:"job_listeners"`))),
	fx.Provide(fx.Annotate(NewLoggingStepListener, fx.ResultTags(`group:"step_listeners"`))),
)
