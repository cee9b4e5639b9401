package model

import (
	"fmt"
	"strings"
	"time"
)

// RawEvent is one row of the provider's event schedule.
// Session5Date is the start of the race session.
type RawEvent struct {
	RoundNumber  *float64 `mapstructure:"RoundNumber"`
	Country      *string  `mapstructure:"Country"`
	Location     *string  `mapstructure:"Location"`
	EventName    *string  `mapstructure:"EventName"`
	EventFormat  *string  `mapstructure:"EventFormat"`
	Session5Date *string  `mapstructure:"Session5Date"`
}

// Event is a scheduled round.
type Event struct {
	Year        int
	RoundNumber int
	Location    string
	EventName   string
	EventFormat string
	// RaceStart is nil when the schedule carries no usable race start time.
	RaceStart *time.Time
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseEventTime parses a schedule timestamp. Times without an offset are taken as UTC.
func ParseEventTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable event time %q", s)
}

// Canonical converts the schedule row. A missing round number returns false.
func (e RawEvent) Canonical(year int) (Event, bool) {
	if e.RoundNumber == nil {
		return Event{}, false
	}
	ev := Event{Year: year, RoundNumber: int(*e.RoundNumber)}
	if e.Location != nil {
		ev.Location = *e.Location
	}
	if e.EventName != nil {
		ev.EventName = *e.EventName
	}
	if e.EventFormat != nil {
		ev.EventFormat = *e.EventFormat
	}
	if e.Session5Date != nil {
		if t, err := ParseEventTime(*e.Session5Date); err == nil {
			ev.RaceStart = &t
		}
	}
	return ev, true
}
