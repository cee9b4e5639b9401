// Package inmemory provides an in-memory implementation of the JobRepository interface.
// It is used when no metadata database is configured and in tests.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/core/domain/repository"
)

// InMemoryJobRepository holds job metadata in maps.
type InMemoryJobRepository struct {
	jobExecutions  map[string]*model.JobExecution
	stepExecutions map[string]*model.StepExecution
	mu             sync.RWMutex
}

// NewInMemoryJobRepository creates and initializes a new instance of InMemoryJobRepository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return &InMemoryJobRepository{
		jobExecutions:  make(map[string]*model.JobExecution),
		stepExecutions: make(map[string]*model.StepExecution),
	}
}

// SaveJobExecution persists a new JobExecution.
func (r *InMemoryJobRepository) SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobExecutions[jobExecution.ID]; exists {
		return fmt.Errorf("JobExecution with ID %s already exists", jobExecution.ID)
	}
	r.jobExecutions[jobExecution.ID] = jobExecution
	return nil
}

// UpdateJobExecution updates an existing JobExecution.
func (r *InMemoryJobRepository) UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobExecutions[jobExecution.ID]; !exists {
		return fmt.Errorf("JobExecution with ID %s not found for update", jobExecution.ID)
	}
	r.jobExecutions[jobExecution.ID] = jobExecution
	return nil
}

// FindJobExecutionByID returns a copy of the JobExecution with its StepExecutions ordered by start time.
func (r *InMemoryJobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobExecution, ok := r.jobExecutions[id]
	if !ok {
		return nil, repository.ErrJobExecutionNotFound
	}

	cloned := *jobExecution
	cloned.StepExecutions = make([]*model.StepExecution, 0)
	for _, se := range r.stepExecutions {
		if se.JobExecutionID == cloned.ID {
			cloned.StepExecutions = append(cloned.StepExecutions, se)
		}
	}
	sort.SliceStable(cloned.StepExecutions, func(i, j int) bool {
		return cloned.StepExecutions[i].StartTime.Before(cloned.StepExecutions[j].StartTime)
	})
	return &cloned, nil
}

// SaveStepExecution persists a new StepExecution.
func (r *InMemoryJobRepository) SaveStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stepExecutions[stepExecution.ID]; exists {
		return fmt.Errorf("StepExecution with ID %s already exists", stepExecution.ID)
	}
	r.stepExecutions[stepExecution.ID] = stepExecution
	return nil
}

// UpdateStepExecution updates an existing StepExecution.
func (r *InMemoryJobRepository) UpdateStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stepExecutions[stepExecution.ID]; !exists {
		return fmt.Errorf("StepExecution with ID %s not found for update", stepExecution.ID)
	}
	r.stepExecutions[stepExecution.ID] = stepExecution
	return nil
}

// FindStepExecutionByID finds a StepExecution by its ID.
func (r *InMemoryJobRepository) FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	se, ok := r.stepExecutions[id]
	if !ok {
		return nil, repository.ErrStepExecutionNotFound
	}
	return se, nil
}

// Close is a no-op; the repository holds no external resources.
func (r *InMemoryJobRepository) Close() error {
	return nil
}

var _ repository.JobRepository = (*InMemoryJobRepository)(nil)
