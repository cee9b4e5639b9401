package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/paddock/pkg/batch/core/metrics"
	logger "github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
// A batch run has no scrape endpoint, so the registry is written to a textfile when the job ends.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Job Metrics
	jobDurationSeconds *prometheus.HistogramVec
	jobStatusCounter   *prometheus.CounterVec

	// Step Metrics
	stepDurationSeconds *prometheus.HistogramVec
	stepStatusCounter   *prometheus.CounterVec
	stepWriteCount      *prometheus.CounterVec
	stepFilterCount     *prometheus.CounterVec

	// Unit Metrics
	unitSkipCounter *prometheus.CounterVec

	// Operation Metrics
	operationDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batch_job_duration_seconds",
			Help:    "Duration of batch job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "status", "exit_status"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_job_status_total",
			Help: "Total number of batch job executions by status.",
		}, []string{"job_name", "status"}),
		stepDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batch_step_duration_seconds",
			Help:    "Duration of batch step executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_name", "step_name", "status", "exit_status"}),
		stepStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_step_status_total",
			Help: "Total number of batch step executions by status.",
		}, []string{"job_name", "step_name", "status"}),
		stepWriteCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_step_write_total",
			Help: "Total records written by step.",
		}, []string{"job_name", "step_name"}),
		stepFilterCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_step_filter_total",
			Help: "Total records dropped by step filters.",
		}, []string{"job_name", "step_name"}),
		unitSkipCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "batch_unit_skip_total",
			Help: "Total units of work (drivers, rounds) skipped by step and reason.",
		}, []string{"job_name", "step_name", "reason"}),
		operationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "batch_operation_duration_seconds",
			Help:    "Duration of named operations such as provider fetches.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}

	registry.MustRegister(
		r.jobDurationSeconds,
		r.jobStatusCounter,
		r.stepDurationSeconds,
		r.stepStatusCounter,
		r.stepWriteCount,
		r.stepFilterCount,
		r.unitSkipCounter,
		r.operationDurationSeconds,
	)
	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// WriteToTextfile writes the current registry to path in the node_exporter textfile format.
func (r *PrometheusRecorder) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// RecordJobStart records the start of a JobExecution.
func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {
	r.jobStatusCounter.WithLabelValues(execution.JobName, execution.Status.String()).Inc()
	logger.Debugf("Metrics: Job '%s' started.", execution.JobName)
}

// RecordJobEnd records the end of a JobExecution.
func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	if execution.EndTime == nil {
		return
	}
	duration := execution.EndTime.Sub(execution.StartTime).Seconds()
	r.jobDurationSeconds.WithLabelValues(
		execution.JobName,
		execution.Status.String(),
		execution.ExitStatus.String(),
	).Observe(duration)
	r.jobStatusCounter.WithLabelValues(execution.JobName, execution.Status.String()).Inc()
	logger.Debugf("Metrics: Job '%s' ended. Duration: %.3fs", execution.JobName, duration)
}

// RecordStepStart records the start of a StepExecution.
func (r *PrometheusRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {
	r.stepStatusCounter.WithLabelValues(jobNameOf(execution), execution.StepName, execution.Status.String()).Inc()
	logger.Debugf("Metrics: Step '%s' started.", execution.StepName)
}

// RecordStepEnd records the end of a StepExecution.
func (r *PrometheusRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution) {
	if execution.EndTime == nil {
		return
	}
	duration := execution.Duration().Seconds()
	jobName := jobNameOf(execution)
	r.stepDurationSeconds.WithLabelValues(
		jobName,
		execution.StepName,
		execution.Status.String(),
		execution.ExitStatus.String(),
	).Observe(duration)
	r.stepStatusCounter.WithLabelValues(jobName, execution.StepName, execution.Status.String()).Inc()
	logger.Debugf("Metrics: Step '%s' ended. Duration: %.3fs", execution.StepName, duration)
}

// RecordItemWrite records records written by a step.
func (r *PrometheusRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	r.stepWriteCount.WithLabelValues(jobNameFromContext(ctx), stepName).Add(float64(count))
}

// RecordItemFilter records records dropped by a step.
func (r *PrometheusRecorder) RecordItemFilter(ctx context.Context, stepName string, count int) {
	r.stepFilterCount.WithLabelValues(jobNameFromContext(ctx), stepName).Add(float64(count))
}

// RecordUnitSkip records a skipped unit of work.
func (r *PrometheusRecorder) RecordUnitSkip(ctx context.Context, stepName string, reason string) {
	r.unitSkipCounter.WithLabelValues(jobNameFromContext(ctx), stepName, reason).Inc()
}

// RecordDuration records the execution time of a specific operation.
// Only the "status" tag is used as a label to keep cardinality bounded.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	status := tags["status"]
	if status == "" {
		status = "unknown"
	}
	r.operationDurationSeconds.WithLabelValues(name, status).Observe(duration.Seconds())
}

func jobNameOf(se *model.StepExecution) string {
	if se.JobExecution == nil {
		return ""
	}
	return se.JobExecution.JobName
}

func jobNameFromContext(ctx context.Context) string {
	if se := port.GetStepExecutionFromContext(ctx); se != nil {
		return jobNameOf(se)
	}
	return ""
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
