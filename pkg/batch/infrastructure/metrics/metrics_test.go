package metrics_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/core/config"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/infrastructure/metrics"
)

func finishedStep() *model.StepExecution {
	je := model.NewJobExecution("teammateFeaturesJob")
	se := model.NewStepExecution(je, "season")
	se.MarkAsStarted()
	se.MarkAsCompleted(model.ExitStatusCompleted)
	return se
}

func TestPrometheusRecorder_CountsAndTextfile(t *testing.T) {
	r := metrics.NewPrometheusRecorder()
	se := finishedStep()
	ctx := port.GetContextWithStepExecution(context.Background(), se)

	r.RecordItemWrite(ctx, "season", 40)
	r.RecordItemFilter(ctx, "season", 3)
	r.RecordUnitSkip(ctx, "season", "fetch_failed")
	r.RecordUnitSkip(ctx, "season", "fetch_failed")
	r.RecordStepEnd(ctx, se)
	r.RecordDuration(ctx, "provider_fetch", 120*time.Millisecond, map[string]string{"status": "success"})

	reg := r.GetRegistry()
	count, err := testutil.GatherAndCount(reg, "batch_unit_skip_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, r.WriteToTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `batch_step_write_total{job_name="teammateFeaturesJob",step_name="season"} 40`)
	assert.Contains(t, string(data), `batch_unit_skip_total{job_name="teammateFeaturesJob",reason="fetch_failed",step_name="season"} 2`)
}

func TestOpenTelemetryTracer_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := metrics.NewOpenTelemetryTracer(tp)

	je := model.NewJobExecution("job")
	ctx, endJob := tracer.StartJobSpan(context.Background(), je)
	se := model.NewStepExecution(je, "features")
	stepCtx, endStep := tracer.StartStepSpan(ctx, se)
	tracer.RecordEvent(stepCtx, "pairs_derived", map[string]interface{}{"count": 12})
	tracer.RecordError(stepCtx, "features", errors.New("bad input"))
	endStep()
	endJob()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "step features", spans[0].Name())
	assert.Equal(t, "job job", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "pairs_derived", spans[0].Events()[0].Name)
}

func TestOpenTelemetryRecorder_Collects(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	r, err := metrics.NewOpenTelemetryRecorder(mp)
	require.NoError(t, err)

	r.RecordItemWrite(context.Background(), "season", 5)
	r.RecordUnitSkip(context.Background(), "season", "fetch_failed")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	assert.True(t, names["batch.step.writes"])
	assert.True(t, names["batch.unit.skips"])
}

func TestProviders_None(t *testing.T) {
	cfg := config.NewConfig().Paddock.Observability
	tp, stopTraces, err := metrics.NewTracerProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, tp)
	assert.NoError(t, stopTraces(context.Background()))

	mp, stopMetrics, err := metrics.NewMeterProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, mp)
	assert.NoError(t, stopMetrics(context.Background()))

	cfg.Tracing.Exporter = "zipkin"
	_, _, err = metrics.NewTracerProvider(context.Background(), cfg)
	assert.Error(t, err)
}
