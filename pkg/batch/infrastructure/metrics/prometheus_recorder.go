// Package metrics provides the Prometheus and OpenTelemetry implementations of the core metric ports.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	port "github.com/Yognotiano/TESIS/pkg/batch/core/application/port"
	config "github.com/Yognotiano/TESIS/pkg/batch/core/config"
	model "github.com/Yognotiano/TESIS/pkg/batch/core/domain/model"
	metrics "github.com/Yognotiano/TESIS/pkg/batch/core/metrics"
	logger "github.com/Yognotiano/TESIS/pkg/batch/support/util/logger"
)

// PushJobName is the grouping job label used when pushing to a Pushgateway.
const PushJobName = "thermolog"

// PrometheusRecorder is a Prometheus implementation of metrics.MetricRecorder.
// A batch process has no scrape endpoint, so the registry is exported on Flush,
// either to a node_exporter textfile or to a Pushgateway.
type PrometheusRecorder struct {
	registry *prometheus.Registry
	cfg      config.MetricsConfig

	jobDurationSeconds  *prometheus.HistogramVec
	jobStatusCounter    *prometheus.CounterVec
	stepDurationSeconds *prometheus.HistogramVec
	itemReadCounter     *prometheus.CounterVec
	itemWriteCounter    *prometheus.CounterVec
	itemSkipCounter     *prometheus.CounterVec
	operationSeconds    *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder with its own registry.
func NewPrometheusRecorder(cfg config.MetricsConfig) *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	r := &PrometheusRecorder{
		registry: registry,
		cfg:      cfg,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "thermolog_job_duration_seconds",
			Help:    "Duration of thermolog job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "status"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermolog_job_status_total",
			Help: "Total number of job executions by final status.",
		}, []string{"job_name", "status"}),
		stepDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "thermolog_step_duration_seconds",
			Help:    "Duration of step executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "step_name", "status"}),
		itemReadCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermolog_items_read_total",
			Help: "Total items read by step.",
		}, []string{"job_name", "step_name"}),
		itemWriteCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermolog_items_written_total",
			Help: "Total items written by step.",
		}, []string{"job_name", "step_name"}),
		itemSkipCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "thermolog_items_skipped_total",
			Help: "Total items skipped by step and reason.",
		}, []string{"job_name", "step_name", "reason"}),
		operationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "thermolog_operation_duration_seconds",
			Help:    "Duration of named operations such as artifact close or mirror upload.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	registry.MustRegister(
		r.jobDurationSeconds,
		r.jobStatusCounter,
		r.stepDurationSeconds,
		r.itemReadCounter,
		r.itemWriteCounter,
		r.itemSkipCounter,
		r.operationSeconds,
	)
	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {
	logger.Debugf("Metrics: Job '%s' started.", execution.JobName)
}

func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	r.jobStatusCounter.WithLabelValues(execution.JobName, execution.Status.String()).Inc()
	if execution.EndTime == nil {
		return
	}
	duration := execution.EndTime.Sub(execution.StartTime).Seconds()
	r.jobDurationSeconds.WithLabelValues(execution.JobName, execution.Status.String()).Observe(duration)
	logger.Debugf("Metrics: Job '%s' ended. Duration: %.3fs", execution.JobName, duration)
}

func (r *PrometheusRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {
	logger.Debugf("Metrics: Step '%s' started.", execution.StepName)
}

func (r *PrometheusRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution) {
	if execution.EndTime == nil {
		return
	}
	duration := execution.EndTime.Sub(execution.StartTime).Seconds()
	r.stepDurationSeconds.WithLabelValues(jobNameOf(execution), execution.StepName, execution.Status.String()).Observe(duration)
}

func (r *PrometheusRecorder) RecordItemRead(ctx context.Context, stepName string, count int) {
	r.itemReadCounter.WithLabelValues(jobNameFromContext(ctx), stepName).Add(float64(count))
}

func (r *PrometheusRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	r.itemWriteCounter.WithLabelValues(jobNameFromContext(ctx), stepName).Add(float64(count))
}

func (r *PrometheusRecorder) RecordItemSkip(ctx context.Context, stepName string, reason string) {
	r.itemSkipCounter.WithLabelValues(jobNameFromContext(ctx), stepName, reason).Inc()
}

func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.operationSeconds.WithLabelValues(name).Observe(duration.Seconds())
}

// Flush writes the registry to the configured textfile and pushes it to the configured gateway.
func (r *PrometheusRecorder) Flush(ctx context.Context) error {
	var result error
	if r.cfg.Textfile != "" {
		if err := prometheus.WriteToTextfile(r.cfg.Textfile, r.registry); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to write metrics textfile '%s': %w", r.cfg.Textfile, err))
		} else {
			logger.Debugf("Metrics written to %s", r.cfg.Textfile)
		}
	}
	if r.cfg.Pushgateway != "" {
		if err := push.New(r.cfg.Pushgateway, PushJobName).Gatherer(r.registry).PushContext(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to push metrics to '%s': %w", r.cfg.Pushgateway, err))
		}
	}
	return result
}

func jobNameOf(se *model.StepExecution) string {
	if se != nil && se.JobExecution != nil {
		return se.JobExecution.JobName
	}
	return "unknown"
}

func jobNameFromContext(ctx context.Context) string {
	return jobNameOf(port.GetStepExecutionFromContext(ctx))
}

var (
	_ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
	_ metrics.Flusher        = (*PrometheusRecorder)(nil)
)
