package listener

import (
	"context"
	"sync"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// JobCompletionSignaler is a JobExecutionListener that closes a channel
// when a job completes, signaling its completion to external components.
type JobCompletionSignaler struct {
	// JobDoneChan is the channel that will be closed upon job completion.
	JobDoneChan chan struct{}
	once        sync.Once
}

// NewJobCompletionSignaler creates a new instance of JobCompletionSignaler.
func NewJobCompletionSignaler() *JobCompletionSignaler {
	return &JobCompletionSignaler{JobDoneChan: make(chan struct{})}
}

// BeforeJob does nothing.
func (l *JobCompletionSignaler) BeforeJob(ctx context.Context, jobExecution *model.JobExecution) {}

// AfterJob closes JobDoneChan once.
func (l *JobCompletionSignaler) AfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	l.once.Do(func() {
		logger.Infof("JobCompletionSignaler: Job '%s' (ID: %s) completed. Closing JobDoneChan.", jobExecution.JobName, jobExecution.ID)
		close(l.JobDoneChan)
	})
}

// Verify that JobCompletionSignaler implements the port.JobExecutionListener interface.
var _ port.JobExecutionListener = (*JobCompletionSignaler)(nil)
