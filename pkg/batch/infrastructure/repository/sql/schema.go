package sql

import (
	"time"

	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
)

// JobExecutionEntity is a schema model used for persistence.
type JobExecutionEntity struct {
	ID              string `gorm:"primaryKey;size:36"`
	JobName         string `gorm:"size:100;not null"`
	StartTime       time.Time
	EndTime         *time.Time
	Status          model.JobStatus   `gorm:"size:20"`
	ExitStatus      model.ExitStatus  `gorm:"size:20"`
	Failures        model.FailureList `gorm:"type:text"`
	CreateTime      time.Time
	LastUpdated     time.Time
	CurrentStepName string `gorm:"size:100"`
}

func (JobExecutionEntity) TableName() string {
	return "batch_job_execution"
}

// StepExecutionEntity is a schema model used for persistence.
type StepExecutionEntity struct {
	ID             string `gorm:"primaryKey;size:36"`
	JobExecutionID string `gorm:"size:36;index;not null"`
	StepName       string `gorm:"size:100;not null"`
	StartTime      time.Time
	EndTime        *time.Time
	Status         model.JobStatus   `gorm:"size:20"`
	ExitStatus     model.ExitStatus  `gorm:"size:20"`
	Failures       model.FailureList `gorm:"type:text"`
	ReadCount      int
	WriteCount     int
	FilterCount    int
	SkipCount      int
	LastUpdated    time.Time
}

func (StepExecutionEntity) TableName() string {
	return "batch_step_execution"
}
