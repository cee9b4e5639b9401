// Package season aggregates per-round qualifying and race results into one season table.
package season

import (
	"context"
	"fmt"
	"time"

	"github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/internal/pipeline/outcome"
	"github.com/tigerroll/paddock/internal/provider"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
	"github.com/tigerroll/paddock/pkg/batch/support/util/timeutil"
)

// RoundRef identifies one round to aggregate. Circuit is the event location.
type RoundRef struct {
	Year    int
	Round   int
	Circuit string
}

func (r RoundRef) String() string {
	return fmt.Sprintf("%d round %d (%s)", r.Year, r.Round, r.Circuit)
}

// Planner turns event schedules into the list of rounds that have already been raced.
type Planner struct {
	fetcher provider.Fetcher
	clock   timeutil.Clock
	formats map[string]bool
	rounds  map[int]bool
}

// NewPlanner creates a Planner. Only events whose format is in formats are kept;
// a non-empty rounds restricts the plan to those round numbers.
func NewPlanner(fetcher provider.Fetcher, clock timeutil.Clock, formats []string, rounds []int) *Planner {
	p := &Planner{fetcher: fetcher, clock: clock, formats: make(map[string]bool, len(formats))}
	for _, f := range formats {
		p.formats[f] = true
	}
	if len(rounds) > 0 {
		p.rounds = make(map[int]bool, len(rounds))
		for _, r := range rounds {
			p.rounds[r] = true
		}
	}
	return p
}

// Plan fetches the schedule of every year and returns the rounds in schedule order.
// A year whose schedule cannot be fetched is recorded as a failure and skipped.
func (p *Planner) Plan(ctx context.Context, years []int) ([]RoundRef, []outcome.Failure) {
	now := p.clock.Now()
	var plan []RoundRef
	var failures []outcome.Failure
	for _, year := range years {
		events, err := p.fetcher.FetchEventSchedule(ctx, year)
		if err != nil {
			logger.Warnf("Schedule for %d unavailable, skipping the season: %v", year, err)
			failures = append(failures, outcome.Failure{Unit: fmt.Sprintf("schedule %d", year), Err: err})
			continue
		}
		for _, ev := range events {
			if !p.formats[ev.EventFormat] {
				continue
			}
			if p.rounds != nil && !p.rounds[ev.RoundNumber] {
				continue
			}
			ref := RoundRef{Year: year, Round: ev.RoundNumber, Circuit: ev.Location}
			if !raced(ev, now) {
				logger.Infof("Skipping %s: race has not started or its start time is unknown.", ref)
				continue
			}
			plan = append(plan, ref)
		}
	}
	logger.Infof("Planned %d rounds across %d seasons.", len(plan), len(years))
	return plan, failures
}

func raced(ev model.Event, now time.Time) bool {
	return ev.RaceStart != nil && !ev.RaceStart.After(now)
}
