// Package provider is the acquisition boundary: it fetches sessions and event
// schedules from the timing data provider and caches raw responses.
package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tigerroll/paddock/internal/domain/model"
)

// Request kinds.
const (
	KindSession  = "session"
	KindSchedule = "schedule"
)

// Fetcher retrieves provider data. Repeated identical calls must return identical data.
type Fetcher interface {
	FetchSession(ctx context.Context, req SessionRequest) (*model.Session, error)
	FetchEventSchedule(ctx context.Context, year int) ([]model.Event, error)
}

// SessionRequest identifies a session. Event is a round number or an event name.
// Telemetry also loads laps, telemetry and weather; otherwise only results are loaded.
type SessionRequest struct {
	Year        int
	Event       string
	SessionType string
	Telemetry   bool
}

// Request is a raw provider request.
type Request struct {
	Kind        string
	Year        int
	Event       string
	SessionType string
	Telemetry   bool
}

// ScheduleRequest builds the request for a season's event schedule.
func ScheduleRequest(year int) Request {
	return Request{Kind: KindSchedule, Year: year}
}

// Request converts a session request to its raw form.
func (r SessionRequest) Request() Request {
	return Request{Kind: KindSession, Year: r.Year, Event: r.Event, SessionType: r.SessionType, Telemetry: r.Telemetry}
}

// String renders the request canonically.
func (r Request) String() string {
	if r.Kind == KindSchedule {
		return fmt.Sprintf("%s/%d", r.Kind, r.Year)
	}
	return fmt.Sprintf("%s/%d/%s/%s?telemetry=%t", r.Kind, r.Year, r.Event, r.SessionType, r.Telemetry)
}

// Key is the cache key of the request.
func (r Request) Key() string {
	sum := sha256.Sum256([]byte(r.String()))
	return hex.EncodeToString(sum[:])
}

// Path is the request path relative to the provider base URL.
func (r Request) Path() string {
	if r.Kind == KindSchedule {
		return "/schedule/" + strconv.Itoa(r.Year)
	}
	return fmt.Sprintf("/sessions/%d/%s/%s?telemetry=%t",
		r.Year, url.PathEscape(r.Event), url.PathEscape(r.SessionType), r.Telemetry)
}

// Source returns the raw JSON body for a request.
type Source interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}
