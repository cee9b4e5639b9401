package provider

import (
	"context"

	"github.com/tigerroll/paddock/pkg/batch/engine/step/retry"
)

// RetryingFetcher is a Source that repeats requests failing with retryable errors.
type RetryingFetcher struct {
	inner  Source
	policy retry.RetryPolicy
}

// NewRetryingFetcher wraps inner with policy.
func NewRetryingFetcher(inner Source, policy retry.RetryPolicy) *RetryingFetcher {
	return &RetryingFetcher{inner: inner, policy: policy}
}

// Fetch delegates to the inner source, retrying per the policy.
func (f *RetryingFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, f.policy, "provider request "+req.String(), func(ctx context.Context) error {
		var err error
		body, err = f.inner.Fetch(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

var _ Source = (*RetryingFetcher)(nil)
