package outcome

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

func TestPartition(t *testing.T) {
	outcomes := []Outcome[int]{
		Success("round 1", 10),
		Fail[int]("round 2", exception.ErrFetchFailed),
		Success("round 3", 30),
	}
	values, failures := Partition(outcomes)

	assert.Equal(t, []int{10, 30}, values)
	assert.Len(t, failures, 1)
	assert.Equal(t, "round 2", failures[0].Unit)
	assert.True(t, errors.Is(failures[0], exception.ErrFetchFailed))
}

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine(nil))

	err := Combine([]Failure{
		{Unit: "driver 1", Err: exception.ErrFetchFailed},
		{Unit: "driver 2", Err: exception.ErrSchemaMismatch},
	})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrFetchFailed))
	assert.True(t, errors.Is(err, exception.ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "driver 2")
}
