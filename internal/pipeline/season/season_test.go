package season_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/internal/pipeline/season"
	"github.com/tigerroll/paddock/internal/provider"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/timeutil"
)

type fakeFetcher struct {
	schedules map[int][]model.Event
	sessions  map[string]*model.Session
	calls     []string
}

func key(year int, event, sessionType string) string {
	return fmt.Sprintf("%d/%s/%s", year, event, sessionType)
}

func (f *fakeFetcher) FetchSession(ctx context.Context, req provider.SessionRequest) (*model.Session, error) {
	k := key(req.Year, req.Event, req.SessionType)
	f.calls = append(f.calls, k)
	s, ok := f.sessions[k]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", k, exception.ErrFetchFailed)
	}
	return s, nil
}

func (f *fakeFetcher) FetchEventSchedule(ctx context.Context, year int) ([]model.Event, error) {
	events, ok := f.schedules[year]
	if !ok {
		return nil, fmt.Errorf("schedule %d: %w", year, exception.ErrFetchFailed)
	}
	return events, nil
}

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func dur(d time.Duration) *time.Duration { return &d }

var resultColumns = []string{"Abbreviation", "TeamName", "Position", "GridPosition", "ClassifiedPosition", "Status", "Time"}

func quali(drivers ...string) *model.Session {
	s := &model.Session{ResultColumns: resultColumns}
	for i, d := range drivers {
		s.Results = append(s.Results, model.RawResult{Abbreviation: str(d), Position: num(float64(i + 1))})
	}
	return s
}

func race(drivers ...string) *model.Session {
	s := &model.Session{ResultColumns: resultColumns}
	for i, d := range drivers {
		s.Results = append(s.Results, model.RawResult{
			Abbreviation:       str(d),
			TeamName:           str("Team " + d[:1]),
			Position:           num(float64(i + 1)),
			GridPosition:       num(float64(len(drivers) - i)),
			ClassifiedPosition: str(fmt.Sprint(i + 1)),
			Status:             str("Finished"),
			Time:               dur(90*time.Minute + time.Duration(i)*time.Second),
		})
	}
	return s
}

func TestPlannerFiltersFormatsRoundsAndFutureRaces(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	f := &fakeFetcher{schedules: map[int][]model.Event{
		2024: {
			{RoundNumber: 0, EventFormat: "testing", RaceStart: &past},
			{RoundNumber: 1, Location: "Sakhir", EventFormat: "conventional", RaceStart: &past},
			{RoundNumber: 2, Location: "Jeddah", EventFormat: "conventional", RaceStart: nil},
			{RoundNumber: 3, Location: "Shanghai", EventFormat: "sprint_qualifying", RaceStart: &past},
			{RoundNumber: 4, Location: "Miami", EventFormat: "conventional", RaceStart: &future},
			{RoundNumber: 5, Location: "Imola", EventFormat: "conventional", RaceStart: &now},
		},
	}}

	planner := season.NewPlanner(f, timeutil.NewMockClock(now), []string{"conventional"}, nil)
	plan, failures := planner.Plan(context.Background(), []int{2024, 2019})

	assert.Equal(t, []season.RoundRef{
		{Year: 2024, Round: 1, Circuit: "Sakhir"},
		{Year: 2024, Round: 5, Circuit: "Imola"},
	}, plan)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], exception.ErrFetchFailed)

	restricted := season.NewPlanner(f, timeutil.NewMockClock(now), []string{"conventional"}, []int{5})
	plan, _ = restricted.Plan(context.Background(), []int{2024})
	assert.Equal(t, []season.RoundRef{{Year: 2024, Round: 5, Circuit: "Imola"}}, plan)
}

func TestAggregateJoinsAndSkipsFailedRounds(t *testing.T) {
	q1 := quali("VER", "PER")
	r1 := race("VER", "PER", "HAM")
	f := &fakeFetcher{sessions: map[string]*model.Session{
		key(2023, "1", "Q"): q1,
		key(2023, "1", "R"): r1,
		key(2023, "2", "Q"): quali("VER"),
		key(2023, "2", "R"): {ResultColumns: resultColumns},
	}}
	plan := []season.RoundRef{
		{Year: 2023, Round: 1, Circuit: "Sakhir"},
		{Year: 2023, Round: 2, Circuit: "Jeddah"},
		{Year: 2023, Round: 3, Circuit: "Melbourne"},
	}

	table, failures, err := season.NewAggregator(f).Aggregate(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Contains(t, failures[0].Unit, "round 2")
	assert.Contains(t, failures[1].Unit, "round 3")
	assert.NotContains(t, f.calls, key(2023, "3", "R"))

	require.Len(t, table.Records, 3)
	ver := table.Records[0]
	assert.Equal(t, "VER", ver.Driver)
	assert.Equal(t, "Sakhir", ver.Circuit)
	require.NotNil(t, ver.QualiPos)
	assert.Equal(t, 1, *ver.QualiPos)
	require.NotNil(t, ver.GridPos)
	assert.Equal(t, 3, *ver.GridPos)
	require.NotNil(t, ver.Time)
	assert.Equal(t, 5400.0, *ver.Time)

	ham := table.Records[2]
	assert.Equal(t, "HAM", ham.Driver)
	assert.Nil(t, ham.QualiPos)
	assert.Equal(t, model.SeasonColumns, ham.Columns)
}

func TestAggregateOmitsAbsentColumns(t *testing.T) {
	r := race("VER")
	r.ResultColumns = []string{"Abbreviation", "TeamName", "ClassifiedPosition", "Status"}
	f := &fakeFetcher{sessions: map[string]*model.Session{
		key(2023, "1", "Q"): quali("VER"),
		key(2023, "1", "R"): r,
	}}

	table, _, err := season.NewAggregator(f).Aggregate(context.Background(), []season.RoundRef{{Year: 2023, Round: 1, Circuit: "Sakhir"}})
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, []string{"Year", "Round", "Circuit", "TeamName", "Abbreviation", "QualiPos", "ClassifiedPosition", "Status"}, table.Columns())
	assert.False(t, table.Records[0].Has(model.ColGridPosition))
}

func TestAggregateKeepsFirstDuplicate(t *testing.T) {
	r := race("VER", "PER")
	r.Results = append(r.Results, model.RawResult{Abbreviation: str("VER"), ClassifiedPosition: str("20")})
	f := &fakeFetcher{sessions: map[string]*model.Session{
		key(2023, "1", "Q"): quali("VER", "PER"),
		key(2023, "1", "R"): r,
	}}

	table, _, err := season.NewAggregator(f).Aggregate(context.Background(), []season.RoundRef{{Year: 2023, Round: 1}})
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "1", *table.Records[0].ClassifiedPosition)
}

func TestAggregateAllRoundsFailed(t *testing.T) {
	f := &fakeFetcher{}
	plan := []season.RoundRef{{Year: 2023, Round: 1}, {Year: 2023, Round: 2}}

	table, failures, err := season.NewAggregator(f).Aggregate(context.Background(), plan)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrNoUsableUnits))
	var empty *exception.EmptyResultError
	require.ErrorAs(t, err, &empty)
	assert.Len(t, failures, 2)
	assert.Empty(t, table.Records)
}

func TestAggregateEmptyPlan(t *testing.T) {
	table, failures, err := season.NewAggregator(&fakeFetcher{}).Aggregate(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrNoUsableUnits)
	var empty *exception.EmptyResultError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, 0, empty.Attempted)
	assert.Empty(t, failures)
	assert.Empty(t, table.Records)
}

func TestAggregateRoundsWithoutRecords(t *testing.T) {
	anonymous := &model.Session{
		ResultColumns: resultColumns,
		Results:       []model.RawResult{{TeamName: str("Team X"), Position: num(1)}},
	}
	f := &fakeFetcher{sessions: map[string]*model.Session{
		key(2023, "1", "Q"): quali("VER"),
		key(2023, "1", "R"): anonymous,
	}}

	table, failures, err := season.NewAggregator(f).Aggregate(context.Background(), []season.RoundRef{{Year: 2023, Round: 1}})
	assert.ErrorIs(t, err, exception.ErrNoUsableUnits)
	assert.Empty(t, failures)
	assert.Empty(t, table.Records)
}
