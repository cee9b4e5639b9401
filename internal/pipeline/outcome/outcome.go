// Package outcome records per-unit results (one driver, one round) and reduces
// them to the successful values plus a failure log.
package outcome

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Outcome is the tagged result of one unit of work.
type Outcome[T any] struct {
	Unit  string
	Value T
	Err   error
}

// Success tags a value produced by unit.
func Success[T any](unit string, value T) Outcome[T] {
	return Outcome[T]{Unit: unit, Value: value}
}

// Fail tags an error raised by unit.
func Fail[T any](unit string, err error) Outcome[T] {
	return Outcome[T]{Unit: unit, Err: err}
}

// OK reports whether the unit succeeded.
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Failure is one entry of the failure log.
type Failure struct {
	Unit string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Unit, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Partition splits outcomes into successful values and failures, keeping input order.
func Partition[T any](outcomes []Outcome[T]) ([]T, []Failure) {
	values := make([]T, 0, len(outcomes))
	var failures []Failure
	for _, o := range outcomes {
		if o.OK() {
			values = append(values, o.Value)
			continue
		}
		failures = append(failures, Failure{Unit: o.Unit, Err: o.Err})
	}
	return values, failures
}

// Combine folds the failure log into one error, or nil when it is empty.
func Combine(failures []Failure) error {
	var result *multierror.Error
	for _, f := range failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}
