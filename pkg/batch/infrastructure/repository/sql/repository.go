package sql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/paddock/pkg/batch/core/domain/repository"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

const moduleName = "SQLJobRepository"

// SQLJobRepository implements repository.JobRepository on top of a gorm connection.
// The tables are created by the migration tasklet, not by AutoMigrate.
type SQLJobRepository struct {
	db *gorm.DB
}

// NewSQLJobRepository creates a new instance of SQLJobRepository.
func NewSQLJobRepository(db *gorm.DB) *SQLJobRepository {
	return &SQLJobRepository{db: db}
}

// SaveJobExecution persists a new JobExecution.
func (r *SQLJobRepository) SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	if err := r.db.WithContext(ctx).Create(toJobExecutionEntity(jobExecution)).Error; err != nil {
		return exception.NewBatchError(moduleName, "failed to save JobExecution", err, false, true)
	}
	return nil
}

// UpdateJobExecution updates an existing JobExecution.
func (r *SQLJobRepository) UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	res := r.db.WithContext(ctx).Save(toJobExecutionEntity(jobExecution))
	if res.Error != nil {
		return exception.NewBatchError(moduleName, "failed to update JobExecution", res.Error, false, true)
	}
	return nil
}

// FindJobExecutionByID loads a JobExecution and its StepExecutions ordered by start time.
func (r *SQLJobRepository) FindJobExecutionByID(ctx context.Context, executionID string) (*model.JobExecution, error) {
	var entity JobExecutionEntity
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", executionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrJobExecutionNotFound
		}
		return nil, exception.NewBatchError(moduleName, "failed to find JobExecution", err, false, true)
	}
	je := fromJobExecutionEntity(&entity)

	var steps []StepExecutionEntity
	if err := r.db.WithContext(ctx).
		Where("job_execution_id = ?", executionID).
		Order("start_time").
		Find(&steps).Error; err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load StepExecutions", err, false, true)
	}
	for i := range steps {
		se := fromStepExecutionEntity(&steps[i])
		se.JobExecution = je
		je.AddStepExecution(se)
	}
	return je, nil
}

// SaveStepExecution persists a new StepExecution.
func (r *SQLJobRepository) SaveStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	if err := r.db.WithContext(ctx).Create(toStepExecutionEntity(stepExecution)).Error; err != nil {
		return exception.NewBatchError(moduleName, "failed to save StepExecution", err, false, true)
	}
	return nil
}

// UpdateStepExecution updates an existing StepExecution.
func (r *SQLJobRepository) UpdateStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	if err := r.db.WithContext(ctx).Save(toStepExecutionEntity(stepExecution)).Error; err != nil {
		return exception.NewBatchError(moduleName, "failed to update StepExecution", err, false, true)
	}
	return nil
}

// FindStepExecutionByID finds a StepExecution by its ID.
func (r *SQLJobRepository) FindStepExecutionByID(ctx context.Context, executionID string) (*model.StepExecution, error) {
	var entity StepExecutionEntity
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", executionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrStepExecutionNotFound
		}
		return nil, exception.NewBatchError(moduleName, "failed to find StepExecution", err, false, true)
	}
	return fromStepExecutionEntity(&entity), nil
}

// Close closes the underlying sql.DB.
func (r *SQLJobRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ repository.JobRepository = (*SQLJobRepository)(nil)
