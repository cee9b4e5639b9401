package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tigerroll/paddock/pkg/batch/core/metrics"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// HTTPFetcher is a Source that reads JSON from the provider's HTTP API.
type HTTPFetcher struct {
	baseURL   string
	userAgent string
	client    *http.Client
	recorder  metrics.MetricRecorder
}

// NewHTTPFetcher creates an HTTPFetcher. A nil recorder discards measurements.
func NewHTTPFetcher(baseURL, userAgent string, timeout time.Duration, recorder metrics.MetricRecorder) *HTTPFetcher {
	if recorder == nil {
		recorder = metrics.NoOpMetricRecorder{}
	}
	return &HTTPFetcher{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		recorder:  recorder,
	}
}

// Fetch performs a GET for req. Any transport error or non-2xx status is a fetch failure;
// transport errors, 429 and 5xx responses are also retryable.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (body []byte, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
		}
		f.recorder.RecordDuration(ctx, "provider.fetch."+req.Kind, time.Since(start), map[string]string{"status": status})
	}()

	url := f.baseURL + req.Path()
	logger.Debugf("Fetching %s", url)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "Failed to create provider request", err, false, false)
	}
	httpReq.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("Provider call failed for %s", req),
			fmt.Errorf("%w: %v", exception.ErrFetchFailed, err), true, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("Provider returned %d for %s", resp.StatusCode, req),
			exception.ErrFetchFailed, true, transient)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("Failed to read provider response for %s", req),
			fmt.Errorf("%w: %v", exception.ErrFetchFailed, err), true, true)
	}
	return body, nil
}

var _ Source = (*HTTPFetcher)(nil)
