package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// JobStatus represents the state of a job or step execution.
type JobStatus string

const (
	BatchStatusStarting  JobStatus = "STARTING"
	BatchStatusStarted   JobStatus = "STARTED"
	BatchStatusStopped   JobStatus = "STOPPED"
	BatchStatusCompleted JobStatus = "COMPLETED"
	BatchStatusFailed    JobStatus = "FAILED"
	BatchStatusAbandoned JobStatus = "ABANDONED"
	BatchStatusUnknown   JobStatus = "UNKNOWN"
)

// String returns the string representation of the JobStatus.
func (s JobStatus) String() string {
	return string(s)
}

// IsFinished checks if the JobStatus represents a finished state.
func (s JobStatus) IsFinished() bool {
	switch s {
	case BatchStatusCompleted, BatchStatusFailed, BatchStatusStopped, BatchStatusAbandoned:
		return true
	default:
		return false
	}
}

// ExitStatus represents the detailed status upon job/step completion.
type ExitStatus string

const (
	ExitStatusUnknown   ExitStatus = "UNKNOWN"
	ExitStatusCompleted ExitStatus = "COMPLETED"
	ExitStatusFailed    ExitStatus = "FAILED"
	ExitStatusStopped   ExitStatus = "STOPPED"
	ExitStatusNoOp      ExitStatus = "NO_OP"
)

// String returns the ExitStatus as a string.
func (s ExitStatus) String() string {
	return string(s)
}

// ExecutionContext is a key-value store for sharing state across the steps of one job execution.
// Values are in-memory only; intermediate tables travel through it between steps.
type ExecutionContext map[string]interface{}

// NewExecutionContext creates an empty ExecutionContext.
func NewExecutionContext() ExecutionContext {
	return make(ExecutionContext)
}

// Put stores a value.
func (ec ExecutionContext) Put(key string, value interface{}) {
	ec[key] = value
}

// Get returns a value and whether it was present.
func (ec ExecutionContext) Get(key string) (interface{}, bool) {
	v, ok := ec[key]
	return v, ok
}

// GetString returns a string value.
func (ec ExecutionContext) GetString(key string) (string, bool) {
	v, ok := ec[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns an int value, accepting the numeric shapes JSON decoding produces.
func (ec ExecutionContext) GetInt(key string) (int, bool) {
	v, ok := ec[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Remove deletes a key.
func (ec ExecutionContext) Remove(key string) {
	delete(ec, key)
}

// FailureList holds a list of error messages.
type FailureList []string

// Value implements the `driver.Valuer` interface, converting FailureList to a JSON string.
func (fl FailureList) Value() (driver.Value, error) {
	if fl == nil {
		return "[]", nil
	}
	data, err := json.Marshal(fl)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the `sql.Scanner` interface, converting a JSON string to FailureList.
func (fl *FailureList) Scan(value interface{}) error {
	if value == nil {
		*fl = make(FailureList, 0)
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan type for FailureList: %T", value)
	}
	if len(b) == 0 {
		*fl = make(FailureList, 0)
		return nil
	}
	if err := json.Unmarshal(b, fl); err != nil {
		return fmt.Errorf("failed to unmarshal FailureList JSON: %w", err)
	}
	return nil
}

// JobExecution is a single run of a job.
type JobExecution struct {
	ID               string
	JobName          string
	StartTime        time.Time
	EndTime          *time.Time
	Status           JobStatus
	ExitStatus       ExitStatus
	Failures         FailureList
	CreateTime       time.Time
	LastUpdated      time.Time
	StepExecutions   []*StepExecution
	ExecutionContext ExecutionContext
	CurrentStepName  string
}

// StepExecution is a single run of a step within a JobExecution.
type StepExecution struct {
	ID             string
	StepName       string
	JobExecution   *JobExecution
	JobExecutionID string
	StartTime      time.Time
	EndTime        *time.Time
	Status         JobStatus
	ExitStatus     ExitStatus
	Failures       FailureList
	// ReadCount counts units attempted (drivers, rounds, rows).
	ReadCount int
	// WriteCount counts records persisted.
	WriteCount int
	// FilterCount counts records dropped by a filter.
	FilterCount int
	// SkipCount counts units skipped after a tolerated failure.
	SkipCount        int
	ExecutionContext ExecutionContext
	LastUpdated      time.Time
}

// NewID generates a new UUID string.
func NewID() string {
	return uuid.New().String()
}

// NewJobExecution creates a new JobExecution in STARTING state.
func NewJobExecution(jobName string) *JobExecution {
	now := time.Now()
	return &JobExecution{
		ID:               NewID(),
		JobName:          jobName,
		StartTime:        now,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		CreateTime:       now,
		LastUpdated:      now,
		Failures:         make(FailureList, 0),
		StepExecutions:   make([]*StepExecution, 0),
		ExecutionContext: NewExecutionContext(),
	}
}

func isValidTransition(current, next JobStatus) bool {
	switch current {
	case BatchStatusStarting:
		return next == BatchStatusStarted || next == BatchStatusFailed || next == BatchStatusStopped || next == BatchStatusAbandoned
	case BatchStatusStarted:
		return next == BatchStatusCompleted || next == BatchStatusFailed || next == BatchStatusStopped || next == BatchStatusAbandoned
	default:
		return false
	}
}

// TransitionTo changes the status if the transition is legal.
func (je *JobExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidTransition(je.Status, newStatus) {
		return fmt.Errorf("JobExecution (ID: %s): Invalid state transition: %s -> %s", je.ID, je.Status, newStatus)
	}
	je.Status = newStatus
	return nil
}

// MarkAsStarted updates the JobExecution status to STARTED.
func (je *JobExecution) MarkAsStarted() {
	if err := je.TransitionTo(BatchStatusStarted); err != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to STARTED: %v", je.ID, err)
		je.Status = BatchStatusStarted
	}
	je.LastUpdated = time.Now()
}

// MarkAsCompleted updates the JobExecution status to COMPLETED.
func (je *JobExecution) MarkAsCompleted() {
	if err := je.TransitionTo(BatchStatusCompleted); err != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to COMPLETED: %v", je.ID, err)
		je.Status = BatchStatusCompleted
	}
	je.ExitStatus = ExitStatusCompleted
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
}

// MarkAsFailed updates the JobExecution status to FAILED and records the error.
func (je *JobExecution) MarkAsFailed(err error) {
	if terr := je.TransitionTo(BatchStatusFailed); terr != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to FAILED: %v", je.ID, terr)
		je.Status = BatchStatusFailed
	}
	je.ExitStatus = ExitStatusFailed
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
	je.AddFailureException(err)
}

// MarkAsStopped updates the JobExecution status to STOPPED.
func (je *JobExecution) MarkAsStopped() {
	if err := je.TransitionTo(BatchStatusStopped); err != nil {
		logger.Warnf("Could not update JobExecution (ID: %s) status to STOPPED: %v", je.ID, err)
		je.Status = BatchStatusStopped
	}
	je.ExitStatus = ExitStatusStopped
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
}

// AddFailureException records an error message once.
func (je *JobExecution) AddFailureException(err error) {
	je.Failures = appendFailure(je.Failures, err)
	je.LastUpdated = time.Now()
}

// AddStepExecution adds a StepExecution to JobExecution.
func (je *JobExecution) AddStepExecution(se *StepExecution) {
	je.StepExecutions = append(je.StepExecutions, se)
}

// NewStepExecution creates a new StepExecution bound to jobExecution.
func NewStepExecution(jobExecution *JobExecution, stepName string) *StepExecution {
	now := time.Now()
	return &StepExecution{
		ID:               NewID(),
		StepName:         stepName,
		JobExecutionID:   jobExecution.ID,
		JobExecution:     jobExecution,
		StartTime:        now,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		Failures:         make(FailureList, 0),
		ExecutionContext: NewExecutionContext(),
		LastUpdated:      now,
	}
}

// TransitionTo changes the status if the transition is legal.
func (se *StepExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidTransition(se.Status, newStatus) {
		return fmt.Errorf("StepExecution (ID: %s): Invalid state transition: %s -> %s", se.ID, se.Status, newStatus)
	}
	se.Status = newStatus
	return nil
}

// MarkAsStarted updates the StepExecution status to STARTED.
func (se *StepExecution) MarkAsStarted() {
	if err := se.TransitionTo(BatchStatusStarted); err != nil {
		logger.Warnf("Could not update StepExecution (ID: %s) status to STARTED: %v", se.ID, err)
		se.Status = BatchStatusStarted
	}
	se.LastUpdated = time.Now()
}

// MarkAsCompleted updates the StepExecution status to COMPLETED.
func (se *StepExecution) MarkAsCompleted(exitStatus ExitStatus) {
	if err := se.TransitionTo(BatchStatusCompleted); err != nil {
		logger.Warnf("Could not update StepExecution (ID: %s) status to COMPLETED: %v", se.ID, err)
		se.Status = BatchStatusCompleted
	}
	if exitStatus == "" {
		exitStatus = ExitStatusCompleted
	}
	se.ExitStatus = exitStatus
	now := time.Now()
	se.EndTime = &now
	se.LastUpdated = now
}

// MarkAsFailed updates the StepExecution status to FAILED and records the error.
func (se *StepExecution) MarkAsFailed(err error) {
	if terr := se.TransitionTo(BatchStatusFailed); terr != nil {
		logger.Warnf("Could not update StepExecution (ID: %s) status to FAILED: %v", se.ID, terr)
		se.Status = BatchStatusFailed
	}
	se.ExitStatus = ExitStatusFailed
	now := time.Now()
	se.EndTime = &now
	se.LastUpdated = now
	se.AddFailureException(err)
}

// AddFailureException records an error message once.
func (se *StepExecution) AddFailureException(err error) {
	se.Failures = appendFailure(se.Failures, err)
	se.LastUpdated = time.Now()
}

// Duration returns the elapsed time of a finished step, or zero.
func (se *StepExecution) Duration() time.Duration {
	if se.EndTime == nil {
		return 0
	}
	return se.EndTime.Sub(se.StartTime)
}

func appendFailure(list FailureList, err error) FailureList {
	if err == nil {
		return list
	}
	msg := exception.ExtractErrorMessage(err)
	for _, existing := range list {
		if existing == msg {
			return list
		}
	}
	return append(list, msg)
}
