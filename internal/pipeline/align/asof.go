// Package align joins time-ordered tables with backward ("as-of") semantics.
package align

import (
	"fmt"
	"math"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

// Sides of an as-of join, as reported by UnsortedError.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Match pairs a left row with the last right row at or before it.
// Right is nil when no right row qualifies; otherwise it points into the right input.
type Match[L, R any] struct {
	Left  L
	Right *R
}

// UnsortedError reports the first row whose key is lower than its predecessor's, or NaN.
type UnsortedError struct {
	Side  string
	Index int
}

func (e *UnsortedError) Error() string {
	return fmt.Sprintf("%s input row %d breaks time order: %v", e.Side, e.Index, exception.ErrUnsortedInput)
}

func (e *UnsortedError) Unwrap() error {
	return exception.ErrUnsortedInput
}

// AsOf performs a backward as-of join. Both inputs must be non-decreasing by key;
// the result has one Match per left row, in left order. Among right rows sharing
// a key the last one wins.
func AsOf[L, R any](left []L, right []R, leftKey func(L) float64, rightKey func(R) float64) ([]Match[L, R], error) {
	if err := checkSorted(left, leftKey, SideLeft); err != nil {
		return nil, err
	}
	if err := checkSorted(right, rightKey, SideRight); err != nil {
		return nil, err
	}

	out := make([]Match[L, R], len(left))
	j := -1
	for i, l := range left {
		k := leftKey(l)
		for j+1 < len(right) && rightKey(right[j+1]) <= k {
			j++
		}
		out[i].Left = l
		if j >= 0 {
			out[i].Right = &right[j]
		}
	}
	return out, nil
}

func checkSorted[T any](rows []T, key func(T) float64, side string) error {
	prev := math.Inf(-1)
	for i, r := range rows {
		k := key(r)
		if math.IsNaN(k) || k < prev {
			return &UnsortedError{Side: side, Index: i}
		}
		prev = k
	}
	return nil
}
