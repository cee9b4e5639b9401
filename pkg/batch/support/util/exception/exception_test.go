package exception_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

type customError struct {
	Msg string
}

func (e *customError) Error() string {
	return fmt.Sprintf("customError: %s", e.Msg)
}

func TestNewBatchError(t *testing.T) {
	originalErr := errors.New("connection refused")
	be := exception.NewBatchError("season", "failed to fetch round", originalErr, true, false)

	assert.Equal(t, "season", be.Module)
	assert.Equal(t, "failed to fetch round", be.Message)
	assert.Equal(t, originalErr, be.Unwrap())
	assert.True(t, be.IsSkippable())
	assert.False(t, be.IsRetryable())
	assert.Contains(t, be.Error(), "[season] failed to fetch round: connection refused")
	assert.NotEmpty(t, be.StackTrace)
}

func TestNewBatchErrorf(t *testing.T) {
	be1 := exception.NewBatchErrorf("cleaner", "row %d invalid", 10)
	assert.False(t, be1.IsRetryable())
	assert.False(t, be1.IsSkippable())
	assert.Nil(t, be1.Unwrap())
	assert.Contains(t, be1.Error(), "[cleaner] row 10 invalid")

	cause := errors.New("timeout")
	be2 := exception.NewBatchErrorf("provider", "schedule %d", 2024, true, false, cause)
	assert.True(t, be2.IsSkippable())
	assert.False(t, be2.IsRetryable())
	assert.Equal(t, cause, be2.Unwrap())
	assert.Equal(t, "schedule 2024", be2.Message)
}

func TestIsSkippableAndIsFatal(t *testing.T) {
	fetchErr := fmt.Errorf("round 3: %w", exception.ErrFetchFailed)
	assert.True(t, exception.IsSkippable(fetchErr))
	assert.False(t, exception.IsFatal(fetchErr))

	fatal := exception.NewBatchError("cleaner", "bad schema", exception.ErrSchemaMismatch, false, false)
	assert.False(t, exception.IsSkippable(fatal))
	assert.True(t, exception.IsFatal(fatal))

	wrapped := fmt.Errorf("outer: %w", exception.NewBatchError("season", "skip", nil, true, false))
	assert.True(t, exception.IsBatchError(wrapped))
	assert.True(t, exception.IsSkippable(wrapped))

	assert.False(t, exception.IsSkippable(nil))
	assert.False(t, exception.IsFatal(nil))
}

func TestEmptyResultError(t *testing.T) {
	cause := errors.New("round 1 failed")
	err := exception.NewEmptyResultError("season", 3, cause)

	assert.True(t, errors.Is(err, exception.ErrNoUsableUnits))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "season: no usable units out of 3 attempted")

	var empty *exception.EmptyResultError
	assert.True(t, errors.As(fmt.Errorf("stage: %w", err), &empty))
	assert.Equal(t, 3, empty.Attempted)
}

func TestIsErrorOfType(t *testing.T) {
	err := fmt.Errorf("wrap: %w", exception.ErrNarrowingOverflow)
	assert.True(t, exception.IsErrorOfType(err, "NarrowingOverflow"))
	assert.False(t, exception.IsErrorOfType(err, "SchemaMismatch"))

	custom := fmt.Errorf("wrap: %w", &customError{Msg: "x"})
	assert.True(t, exception.IsErrorOfType(custom, "exception_test.customError"))
	assert.True(t, exception.IsErrorOfType(custom, "customError: x"))
	assert.False(t, exception.IsErrorOfType(nil, "anything"))

	assert.True(t, exception.IsErrorTypeRegistered("FetchFailed"))
	assert.False(t, exception.IsErrorTypeRegistered("NotRegistered"))
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "", exception.ExtractErrorMessage(nil))
	assert.Equal(t, "clean msg", exception.ExtractErrorMessage(exception.NewBatchError("m", "clean msg", errors.New("x"), false, false)))
	assert.Equal(t, "plain", exception.ExtractErrorMessage(errors.New("plain")))
}
