package model

import (
	"errors"
	"fmt"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

// ErrNoTelemetry marks a driver with no telemetry in the session. It is a fetch failure.
var ErrNoTelemetry = fmt.Errorf("no telemetry for driver: %w", exception.ErrFetchFailed)

// Session is one timed track activity as handed over by the provider.
type Session struct {
	Year        int
	Event       string
	SessionType string
	Drivers     []string
	Laps        []RawLap
	// TelemetryColumns is the declared column set of the telemetry tables.
	TelemetryColumns  []string
	TelemetryByDriver map[string][]RawTelemetry
	Weather           []RawWeather
	Results           []RawResult
	// ResultColumns is the declared column set of the results table.
	ResultColumns []string
}

// Telemetry returns the samples of driver.
func (s *Session) Telemetry(driver string) ([]RawTelemetry, error) {
	samples, ok := s.TelemetryByDriver[driver]
	if !ok || len(samples) == 0 {
		return nil, fmt.Errorf("%s %d %s driver %s: %w", s.Event, s.Year, s.SessionType, driver, ErrNoTelemetry)
	}
	return samples, nil
}

// HasResultColumn reports whether the results table declares column.
func (s *Session) HasResultColumn(column string) bool {
	for _, c := range s.ResultColumns {
		if c == column {
			return true
		}
	}
	return false
}

// IsNoTelemetry reports whether err is a missing-telemetry failure.
func IsNoTelemetry(err error) bool {
	return errors.Is(err, ErrNoTelemetry)
}
