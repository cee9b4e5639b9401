package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tigerroll/paddock/internal/domain/frame"
	"github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

const moduleName = "provider"

// SessionPayload is the JSON body of a session response.
type SessionPayload struct {
	Drivers   []string               `json:"drivers"`
	Laps      *frame.Frame           `json:"laps,omitempty"`
	Telemetry map[string]frame.Frame `json:"telemetry,omitempty"`
	Weather   *frame.Frame           `json:"weather,omitempty"`
	Results   *frame.Frame           `json:"results,omitempty"`
}

// SchedulePayload is the JSON body of a schedule response.
type SchedulePayload struct {
	Events frame.Frame `json:"events"`
}

// Client implements Fetcher by decoding the bodies returned by a Source.
type Client struct {
	source Source
}

// NewClient creates a Client over source.
func NewClient(source Source) *Client {
	return &Client{source: source}
}

// FetchSession fetches and decodes one session.
func (c *Client) FetchSession(ctx context.Context, req SessionRequest) (*model.Session, error) {
	body, err := c.source.Fetch(ctx, req.Request())
	if err != nil {
		return nil, err
	}
	var payload SessionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("Malformed session response for %s", req.Request()),
			fmt.Errorf("%w: %v", exception.ErrFetchFailed, err), true, false)
	}
	session, err := payload.Session(req)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("Undecodable session response for %s", req.Request()), err, true, false)
	}
	return session, nil
}

// FetchEventSchedule fetches and decodes a season's schedule.
// Rows without a round number are dropped.
func (c *Client) FetchEventSchedule(ctx context.Context, year int) ([]model.Event, error) {
	req := ScheduleRequest(year)
	body, err := c.source.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	var payload SchedulePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("Malformed schedule response for %d", year),
			fmt.Errorf("%w: %v", exception.ErrFetchFailed, err), true, false)
	}
	raw, err := frame.Decode[model.RawEvent](payload.Events)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("Undecodable schedule for %d", year), err, true, false)
	}
	events := make([]model.Event, 0, len(raw))
	for _, r := range raw {
		if ev, ok := r.Canonical(year); ok {
			events = append(events, ev)
		}
	}
	if dropped := len(raw) - len(events); dropped > 0 {
		logger.Warnf("Schedule %d: dropped %d events without a round number.", year, dropped)
	}
	return events, nil
}

// Session decodes the payload frames.
func (p SessionPayload) Session(req SessionRequest) (*model.Session, error) {
	s := &model.Session{
		Year:              req.Year,
		Event:             req.Event,
		SessionType:       req.SessionType,
		Drivers:           p.Drivers,
		TelemetryByDriver: make(map[string][]model.RawTelemetry, len(p.Telemetry)),
	}
	var err error
	if p.Laps != nil {
		if s.Laps, err = frame.Decode[model.RawLap](*p.Laps); err != nil {
			return nil, fmt.Errorf("laps: %w", err)
		}
	}
	if p.Weather != nil {
		if s.Weather, err = frame.Decode[model.RawWeather](*p.Weather); err != nil {
			return nil, fmt.Errorf("weather: %w", err)
		}
	}
	if p.Results != nil {
		s.ResultColumns = p.Results.Columns
		if s.Results, err = frame.Decode[model.RawResult](*p.Results); err != nil {
			return nil, fmt.Errorf("results: %w", err)
		}
	}
	drivers := make([]string, 0, len(p.Telemetry))
	for driver := range p.Telemetry {
		drivers = append(drivers, driver)
	}
	sort.Strings(drivers)
	// A driver whose telemetry does not decode is left out; Session.Telemetry then
	// reports it as missing and the caller skips that driver.
	for _, driver := range drivers {
		f := p.Telemetry[driver]
		samples, err := frame.Decode[model.RawTelemetry](f)
		if err != nil {
			logger.Warnf("Dropping telemetry for driver %s in %d %s %s: %v", driver, req.Year, req.Event, req.SessionType, err)
			continue
		}
		if s.TelemetryColumns == nil {
			s.TelemetryColumns = f.Columns
		}
		s.TelemetryByDriver[driver] = samples
	}
	return s, nil
}

var _ Fetcher = (*Client)(nil)
