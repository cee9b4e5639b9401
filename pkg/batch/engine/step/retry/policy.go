// Package retry re-runs operations that fail with retryable errors.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// maxBackoff caps the exponential backoff.
const maxBackoff = 30 * time.Second

// RetryPolicy decides whether a failed attempt is repeated and how long to wait first.
type RetryPolicy interface {
	// ShouldRetry determines if a given error is retryable.
	ShouldRetry(err error) bool
	// GetBackoffInterval returns the wait before the attempt following attempt (starting from 1).
	GetBackoffInterval(attempt int) time.Duration
	// GetMaxAttempts returns the maximum number of attempts, the first one included.
	GetMaxAttempts() int
}

// defaultRetryPolicy doubles the wait after every attempt.
type defaultRetryPolicy struct {
	maxAttempts         int
	initialInterval     time.Duration
	retryableExceptions []string
}

// NewRetryPolicy creates a RetryPolicy with exponential backoff starting at initialInterval.
// An error is retryable when it is a BatchError flagged retryable, or when it matches one of
// retryableExceptions (see exception.IsErrorOfType). maxAttempts below 1 is treated as 1.
func NewRetryPolicy(maxAttempts int, initialInterval time.Duration, retryableExceptions []string) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &defaultRetryPolicy{
		maxAttempts:         maxAttempts,
		initialInterval:     initialInterval,
		retryableExceptions: retryableExceptions,
	}
}

func (p *defaultRetryPolicy) GetMaxAttempts() int {
	return p.maxAttempts
}

func (p *defaultRetryPolicy) ShouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var be *exception.BatchError
	if errors.As(err, &be) && be.IsRetryable() {
		return true
	}
	for _, typeName := range p.retryableExceptions {
		if exception.IsErrorOfType(err, typeName) {
			return true
		}
	}
	return false
}

func (p *defaultRetryPolicy) GetBackoffInterval(attempt int) time.Duration {
	wait := p.initialInterval
	for i := 1; i < attempt && wait < maxBackoff; i++ {
		wait *= 2
	}
	return min(wait, maxBackoff)
}

// Do calls fn until it succeeds, the policy gives up, or ctx is done.
// The error of the last attempt is returned.
func Do(ctx context.Context, policy RetryPolicy, operation string, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil || attempt >= policy.GetMaxAttempts() || !policy.ShouldRetry(err) {
			return err
		}
		wait := policy.GetBackoffInterval(attempt)
		logger.Warnf("%s failed (attempt %d/%d), retrying in %v: %v", operation, attempt, policy.GetMaxAttempts(), wait, err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

var _ RetryPolicy = (*defaultRetryPolicy)(nil)
