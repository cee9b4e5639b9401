package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/core/job/runner"
	"github.com/tigerroll/paddock/pkg/batch/infrastructure/repository/inmemory"
)

type fakeStep struct {
	name string
	err  error
	ran  *[]string
}

func (s *fakeStep) StepName() string { return s.name }

func (s *fakeStep) Execute(ctx context.Context, je *model.JobExecution, se *model.StepExecution) error {
	*s.ran = append(*s.ran, s.name)
	se.MarkAsStarted()
	if s.err != nil {
		se.MarkAsFailed(s.err)
		return s.err
	}
	je.ExecutionContext.Put(s.name, true)
	se.MarkAsCompleted(model.ExitStatusCompleted)
	return nil
}

type recordingListener struct {
	before, after int
	lastStatus    model.JobStatus
}

func (l *recordingListener) BeforeJob(ctx context.Context, je *model.JobExecution) { l.before++ }
func (l *recordingListener) AfterJob(ctx context.Context, je *model.JobExecution) {
	l.after++
	l.lastStatus = je.Status
}

func TestSimpleJob_RunsStepsInOrder(t *testing.T) {
	var ran []string
	repo := inmemory.NewInMemoryJobRepository()
	listener := &recordingListener{}
	job := runner.NewSimpleJob("job", []port.Step{
		&fakeStep{name: "season", ran: &ran},
		&fakeStep{name: "features", ran: &ran},
	}, repo, []port.JobExecutionListener{listener}, nil)

	je, err := runner.NewSimpleJobRunner(repo).Run(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, []string{"season", "features"}, ran)
	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	assert.Equal(t, model.ExitStatusCompleted, je.ExitStatus)
	assert.Len(t, je.StepExecutions, 2)
	assert.Equal(t, 1, listener.before)
	assert.Equal(t, 1, listener.after)

	stored, err := repo.FindJobExecutionByID(context.Background(), je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, stored.Status)
}

func TestSimpleJob_StopsAtFailedStep(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	repo := inmemory.NewInMemoryJobRepository()
	listener := &recordingListener{}
	job := runner.NewSimpleJob("job", []port.Step{
		&fakeStep{name: "telemetry", err: boom, ran: &ran},
		&fakeStep{name: "season", ran: &ran},
	}, repo, []port.JobExecutionListener{listener}, nil)

	je, err := runner.NewSimpleJobRunner(repo).Run(context.Background(), job)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"telemetry"}, ran)
	assert.Equal(t, model.BatchStatusFailed, je.Status)
	assert.Equal(t, model.ExitStatusFailed, je.ExitStatus)
	assert.Contains(t, je.Failures, "boom")
	assert.Equal(t, model.BatchStatusFailed, listener.lastStatus)
}

func TestSimpleJob_CancelledContext(t *testing.T) {
	var ran []string
	repo := inmemory.NewInMemoryJobRepository()
	job := runner.NewSimpleJob("job", []port.Step{&fakeStep{name: "season", ran: &ran}}, repo, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	je, err := runner.NewSimpleJobRunner(repo).Run(ctx, job)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ran)
	assert.Equal(t, model.BatchStatusStopped, je.Status)
}
