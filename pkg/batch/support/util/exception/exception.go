// Package exception provides the error types shared by the paddock batch runtime and pipeline.
// Errors are classified so that a stage can decide whether a failure is confined to one unit
// of work (one driver, one round) or terminates the stage.
package exception

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// Sentinel errors for the pipeline's failure taxonomy. Match them with errors.Is.
var (
	// ErrFetchFailed marks a schedule, session or results fetch that could not be served.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrSchemaMismatch marks an input table that lacks a column the stage requires.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrNoUsableUnits marks a stage that produced nothing usable from any unit of work.
	ErrNoUsableUnits = errors.New("no usable units")
	// ErrNarrowingOverflow marks a value that does not fit its narrowed storage type.
	ErrNarrowingOverflow = errors.New("narrowing overflow")
	// ErrUnsortedInput marks an as-of join input that is not ordered by its time key.
	ErrUnsortedInput = errors.New("input not sorted by time key")
)

var (
	errorRegistry = make(map[string]error)
	registryMutex sync.RWMutex
)

// RegisterErrorType registers a named prototype so configuration can refer to it by name.
// Panics on an empty name or nil prototype.
func RegisterErrorType(name string, prototype error) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if name == "" {
		panic("Error type name cannot be empty")
	}
	if prototype == nil {
		panic(fmt.Sprintf("Cannot register nil prototype for name: %s", name))
	}
	errorRegistry[name] = prototype
}

// IsErrorTypeRegistered reports whether name is known to the registry.
func IsErrorTypeRegistered(name string) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	_, ok := errorRegistry[name]
	return ok
}

func init() {
	RegisterErrorType("FetchFailed", ErrFetchFailed)
	RegisterErrorType("SchemaMismatch", ErrSchemaMismatch)
	RegisterErrorType("NoUsableUnits", ErrNoUsableUnits)
	RegisterErrorType("NarrowingOverflow", ErrNarrowingOverflow)
	RegisterErrorType("UnsortedInput", ErrUnsortedInput)
	RegisterErrorType("context.DeadlineExceeded", context.DeadlineExceeded)
	RegisterErrorType("context.Canceled", context.Canceled)
}

// BatchError is an error raised by a batch component.
// It records the module that raised it and whether the failure may be skipped
// (confined to one unit) or retried.
type BatchError struct {
	// Module is the component that raised the error (e.g. "season", "cleaner", "writer").
	Module string
	// Message is a short description.
	Message string
	// OriginalErr is the wrapped cause.
	OriginalErr error
	isRetryable bool
	isSkippable bool
	// StackTrace is captured at construction for debugging.
	StackTrace string
}

// NewBatchError creates a BatchError.
func NewBatchError(module, message string, originalErr error, isSkippable, isRetryable bool) *BatchError {
	return &BatchError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  captureStack(),
	}
}

// NewBatchErrorf creates a BatchError with a formatted message.
// Trailing arguments are inspected from the end in the order
// [originalErr error], [isRetryable bool], [isSkippable bool]; the rest feed fmt.Sprintf.
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	var originalErr error
	isRetryable, isSkippable := false, false
	args := a

	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	if len(args) > 0 {
		if b, ok := args[len(args)-1].(bool); ok {
			isRetryable = b
			args = args[:len(args)-1]
		}
	}
	if len(args) > 0 {
		if b, ok := args[len(args)-1].(bool); ok {
			isSkippable = b
			args = args[:len(args)-1]
		}
	}

	return &BatchError{
		Module:      module,
		Message:     fmt.Sprintf(format, args...),
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  captureStack(),
	}
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// Error implements error.
func (e *BatchError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *BatchError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable reports whether the error may be retried.
func (e *BatchError) IsRetryable() bool {
	return e.isRetryable
}

// IsSkippable reports whether the failing unit may be skipped.
func (e *BatchError) IsSkippable() bool {
	return e.isSkippable
}

// IsBatchError reports whether err (or anything it wraps) is a *BatchError.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}

// IsSkippable reports whether err is confined to a single unit of work.
// Fetch failures are always skippable; otherwise the BatchError flag decides.
func IsSkippable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrFetchFailed) {
		return true
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.IsSkippable()
	}
	return false
}

// IsFatal reports whether err is neither retryable nor skippable.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	if errors.As(err, &be) {
		return !be.IsRetryable() && !be.IsSkippable()
	}
	return !IsSkippable(err)
}

// IsErrorOfType checks err against a registered name, a Go type name, or a message substring.
func IsErrorOfType(err error, errorTypeName string) bool {
	if err == nil {
		return false
	}

	registryMutex.RLock()
	target, ok := errorRegistry[errorTypeName]
	registryMutex.RUnlock()
	if ok && errors.Is(err, target) {
		return true
	}

	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if strings.Contains(cur.Error(), errorTypeName) {
			return true
		}
		if t := reflect.TypeOf(cur); t != nil {
			if t.String() == errorTypeName || (t.Kind() == reflect.Ptr && t.Elem().String() == errorTypeName) {
				return true
			}
		}
	}
	return false
}

// ExtractErrorMessage returns the Message of a BatchError, or err.Error() otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

// EmptyResultError reports that a stage collected zero usable units.
// It is distinct from an ordinary empty dataset: callers test for it with errors.Is(err, ErrNoUsableUnits).
type EmptyResultError struct {
	// Stage names the stage that produced nothing (e.g. "telemetry", "season").
	Stage string
	// Attempted is the number of units that were tried.
	Attempted int
	// Cause aggregates the unit failures, if any were recorded.
	Cause error
}

// NewEmptyResultError creates an EmptyResultError.
func NewEmptyResultError(stage string, attempted int, cause error) *EmptyResultError {
	return &EmptyResultError{Stage: stage, Attempted: attempted, Cause: cause}
}

func (e *EmptyResultError) Error() string {
	msg := fmt.Sprintf("%s: no usable units out of %d attempted", e.Stage, e.Attempted)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrNoUsableUnits) succeed.
func (e *EmptyResultError) Is(target error) bool {
	return target == ErrNoUsableUnits
}

// Unwrap returns the aggregated unit failures.
func (e *EmptyResultError) Unwrap() error {
	return e.Cause
}
