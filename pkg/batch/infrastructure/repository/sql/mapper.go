package sql

import (
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
)

func toJobExecutionEntity(je *model.JobExecution) *JobExecutionEntity {
	return &JobExecutionEntity{
		ID:              je.ID,
		JobName:         je.JobName,
		StartTime:       je.StartTime,
		EndTime:         je.EndTime,
		Status:          je.Status,
		ExitStatus:      je.ExitStatus,
		Failures:        je.Failures,
		CreateTime:      je.CreateTime,
		LastUpdated:     je.LastUpdated,
		CurrentStepName: je.CurrentStepName,
	}
}

func fromJobExecutionEntity(e *JobExecutionEntity) *model.JobExecution {
	return &model.JobExecution{
		ID:               e.ID,
		JobName:          e.JobName,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		Status:           e.Status,
		ExitStatus:       e.ExitStatus,
		Failures:         e.Failures,
		CreateTime:       e.CreateTime,
		LastUpdated:      e.LastUpdated,
		CurrentStepName:  e.CurrentStepName,
		StepExecutions:   make([]*model.StepExecution, 0),
		ExecutionContext: model.NewExecutionContext(),
	}
}

func toStepExecutionEntity(se *model.StepExecution) *StepExecutionEntity {
	return &StepExecutionEntity{
		ID:             se.ID,
		JobExecutionID: se.JobExecutionID,
		StepName:       se.StepName,
		StartTime:      se.StartTime,
		EndTime:        se.EndTime,
		Status:         se.Status,
		ExitStatus:     se.ExitStatus,
		Failures:       se.Failures,
		ReadCount:      se.ReadCount,
		WriteCount:     se.WriteCount,
		FilterCount:    se.FilterCount,
		SkipCount:      se.SkipCount,
		LastUpdated:    se.LastUpdated,
	}
}

func fromStepExecutionEntity(e *StepExecutionEntity) *model.StepExecution {
	return &model.StepExecution{
		ID:               e.ID,
		JobExecutionID:   e.JobExecutionID,
		StepName:         e.StepName,
		StartTime:        e.StartTime,
		EndTime:          e.EndTime,
		Status:           e.Status,
		ExitStatus:       e.ExitStatus,
		Failures:         e.Failures,
		ReadCount:        e.ReadCount,
		WriteCount:       e.WriteCount,
		FilterCount:      e.FilterCount,
		SkipCount:        e.SkipCount,
		LastUpdated:      e.LastUpdated,
		ExecutionContext: model.NewExecutionContext(),
	}
}
