package tasklet_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/paddock/internal/domain/frame"
	domain "github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/internal/pipeline/clean"
	"github.com/tigerroll/paddock/internal/pipeline/features"
	"github.com/tigerroll/paddock/internal/pipeline/season"
	"github.com/tigerroll/paddock/internal/provider"
	"github.com/tigerroll/paddock/internal/step/tasklet"
	"github.com/tigerroll/paddock/internal/step/writer"
	"github.com/tigerroll/paddock/pkg/batch/adapter/storage"
	"github.com/tigerroll/paddock/pkg/batch/adapter/storage/local"
	stepwriter "github.com/tigerroll/paddock/pkg/batch/component/step/writer"
	"github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/timeutil"
)

type fakeFetcher struct {
	schedules   map[int][]domain.Event
	sessions    map[string]*domain.Session
	scheduleErr error
}

func (f *fakeFetcher) FetchSession(ctx context.Context, req provider.SessionRequest) (*domain.Session, error) {
	s, ok := f.sessions[fmt.Sprintf("%d/%s/%s", req.Year, req.Event, req.SessionType)]
	if !ok {
		return nil, exception.ErrFetchFailed
	}
	return s, nil
}

func (f *fakeFetcher) FetchEventSchedule(ctx context.Context, year int) ([]domain.Event, error) {
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	return f.schedules[year], nil
}

type skipSpy struct {
	units []string
}

func (s *skipSpy) OnSkip(ctx context.Context, stepName, unit string, err error) {
	s.units = append(s.units, unit)
}

func newResolver(t *testing.T) (*storage.Resolver, string) {
	t.Helper()
	dir := t.TempDir()
	r := storage.NewResolver(map[string]interface{}{
		"local": map[string]interface{}{"type": "local", "base_dir": dir},
	}, local.NewLocalProvider())
	t.Cleanup(func() { _ = r.CloseAll() })
	return r, dir
}

func newStep(name string) *model.StepExecution {
	return model.NewStepExecution(model.NewJobExecution("testJob"), name)
}

func secs(s float64) *time.Duration {
	d := time.Duration(s * float64(time.Second))
	return &d
}

func f64(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func sample(t, speed, rpm, gear float64) domain.RawTelemetry {
	return domain.RawTelemetry{SessionTime: secs(t), Speed: f64(speed), RPM: f64(rpm), Gear: f64(gear)}
}

func telemetrySession() *domain.Session {
	return &domain.Session{
		Year: 2024, Event: "Bahrain", SessionType: "R",
		Drivers:          []string{"1", "11", "44"},
		TelemetryColumns: []string{"SessionTime", "Time", "Speed", "RPM", "nGear"},
		TelemetryByDriver: map[string][]domain.RawTelemetry{
			"1":  {sample(1, 100, 10000, 5), sample(3, -1, 10000, 5), {Speed: f64(1)}},
			"11": {sample(2, 120, 11000, 6), sample(4, 130, 11500, 7)},
		},
		Weather: []domain.RawWeather{{Time: secs(0), AirTemp: f64(25)}},
		Laps:    []domain.RawLap{{Driver: str("1"), Time: secs(2), LapNumber: f64(1)}},
	}
}

func telemetryTasklet(t *testing.T, f provider.Fetcher, skips *skipSpy, resolver *storage.Resolver) *tasklet.TelemetryTasklet {
	t.Helper()
	cfg := stepwriter.ParquetWriterConfig{StorageRef: "local", OutputBaseDir: "out"}
	raw, err := stepwriter.NewParquetWriter[domain.RawRow](cfg, resolver)
	require.NoError(t, err)
	cleaned, err := stepwriter.NewParquetWriter[domain.CleanRow](cfg, resolver)
	require.NoError(t, err)
	var listeners []port.SkipListener
	if skips != nil {
		listeners = append(listeners, skips)
	}
	tl, err := tasklet.NewTelemetryTasklet(f, clean.NewCleaner(), raw, cleaned, listeners, tasklet.TelemetryOptions{
		Year: 2024, Event: "Bahrain", AttachLaps: true, RawName: "raw_data", CleanName: "raw_cleaned",
	})
	require.NoError(t, err)
	return tl
}

func TestTelemetryTasklet(t *testing.T) {
	resolver, dir := newResolver(t)
	f := &fakeFetcher{sessions: map[string]*domain.Session{"2024/Bahrain/R": telemetrySession()}}
	skips := &skipSpy{}
	tl := telemetryTasklet(t, f, skips, resolver)

	se := newStep("telemetry")
	status, err := tl.Execute(context.Background(), se)
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, status)

	assert.Equal(t, []string{"driver 44"}, skips.units)
	assert.Equal(t, 1, se.SkipCount)
	assert.Equal(t, 3, se.ReadCount)
	// One negative speed dropped; the untimed sample never reaches the cleaner.
	assert.Equal(t, 1, se.FilterCount)
	assert.Equal(t, 4+3, se.WriteCount)

	v, ok := se.ExecutionContext.Get(tasklet.KeyCleanReport)
	require.True(t, ok)
	assert.Equal(t, clean.Report{Input: 4, DroppedInvalid: 1, Output: 3}, v)

	for _, name := range []string{"raw_data.parquet", "raw_cleaned.parquet"} {
		info, err := os.Stat(filepath.Join(dir, "out", name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}
}

func TestTelemetryTaskletNoUsableDrivers(t *testing.T) {
	resolver, _ := newResolver(t)
	s := telemetrySession()
	s.TelemetryByDriver = nil
	f := &fakeFetcher{sessions: map[string]*domain.Session{"2024/Bahrain/R": s}}

	se := newStep("telemetry")
	_, err := telemetryTasklet(t, f, nil, resolver).Execute(context.Background(), se)
	require.Error(t, err)
	assert.ErrorIs(t, err, exception.ErrNoUsableUnits)
	assert.Equal(t, 3, se.SkipCount)
}

func TestTelemetryTaskletRequiresSession(t *testing.T) {
	_, err := tasklet.NewTelemetryTasklet(&fakeFetcher{}, clean.NewCleaner(), nil, nil, nil, tasklet.TelemetryOptions{})
	assert.Error(t, err)
}

func resultsSession(rows ...domain.RawResult) *domain.Session {
	return &domain.Session{
		ResultColumns: []string{"Abbreviation", "TeamName", "Position", "GridPosition", "ClassifiedPosition", "Status"},
		Results:       rows,
	}
}

func TestSeasonThenFeatures(t *testing.T) {
	resolver, _ := newResolver(t)
	raced := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	f := &fakeFetcher{
		schedules: map[int][]domain.Event{2024: {
			{Year: 2024, RoundNumber: 1, Location: "Sakhir", EventFormat: "conventional", RaceStart: &raced},
			{Year: 2024, RoundNumber: 2, Location: "Jeddah", EventFormat: "conventional", RaceStart: &raced},
		}},
		sessions: map[string]*domain.Session{
			"2024/1/Q": resultsSession(
				domain.RawResult{Abbreviation: str("A1"), Position: f64(2)},
				domain.RawResult{Abbreviation: str("B1"), Position: f64(5)},
			),
			"2024/1/R": resultsSession(
				domain.RawResult{Abbreviation: str("A1"), TeamName: str("T"), GridPosition: f64(2), ClassifiedPosition: str("1"), Status: str("Finished")},
				domain.RawResult{Abbreviation: str("B1"), TeamName: str("T"), GridPosition: f64(5), ClassifiedPosition: str("3"), Status: str("Finished")},
			),
		},
	}
	skips := &skipSpy{}
	clock := timeutil.NewMockClock(raced.Add(24 * time.Hour))

	seasonStore := writer.NewTableStore[domain.SeasonTable](writer.SeasonCodec{}, resolver, "local", "out")
	pairStore := writer.NewTableStore[[]domain.PairRecord](writer.PairCodec{}, resolver, "local", "out")

	seasonTasklet, err := tasklet.NewSeasonTasklet(
		season.NewPlanner(f, clock, []string{"conventional"}, nil),
		season.NewAggregator(f),
		seasonStore,
		[]port.SkipListener{skips},
		[]int{2024},
		"season_results.csv",
	)
	require.NoError(t, err)

	engine, err := features.NewEngine(features.Options{AllowedStatuses: []string{"Finished", "+1 Lap"}})
	require.NoError(t, err)
	featuresTasklet := tasklet.NewFeaturesTasklet(engine, seasonStore, pairStore, "season_results.csv", "teammate_pairs.csv")

	je := model.NewJobExecution("testJob")
	seasonStep := model.NewStepExecution(je, "season")
	status, err := seasonTasklet.Execute(context.Background(), seasonStep)
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, status)
	assert.Equal(t, 2, seasonStep.ReadCount)
	assert.Equal(t, 1, seasonStep.SkipCount)
	assert.Equal(t, 2, seasonStep.WriteCount)
	assert.Len(t, skips.units, 1)

	featuresStep := model.NewStepExecution(je, "features")
	status, err = featuresTasklet.Execute(context.Background(), featuresStep)
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, status)
	assert.Equal(t, 1, featuresStep.WriteCount)

	pairs, err := pairStore.Load(context.Background(), "teammate_pairs.csv")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.NotNil(t, pairs[0].QualiDelta)
	assert.Equal(t, -3, *pairs[0].QualiDelta)
	assert.Equal(t, 1, pairs[0].Target)

	// A later run of the features step alone reads the stored season table.
	alone := newStep("features")
	_, err = featuresTasklet.Execute(context.Background(), alone)
	require.NoError(t, err)
	assert.Equal(t, 2, alone.ReadCount)
}

func TestSeasonTaskletAllRoundsFailed(t *testing.T) {
	resolver, _ := newResolver(t)
	raced := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	f := &fakeFetcher{schedules: map[int][]domain.Event{2024: {
		{Year: 2024, RoundNumber: 1, Location: "Sakhir", EventFormat: "conventional", RaceStart: &raced},
	}}}
	tl, err := tasklet.NewSeasonTasklet(
		season.NewPlanner(f, timeutil.NewMockClock(raced.Add(time.Hour)), []string{"conventional"}, nil),
		season.NewAggregator(f),
		writer.NewTableStore[domain.SeasonTable](writer.SeasonCodec{}, resolver, "local", "out"),
		nil, []int{2024}, "season_results.csv",
	)
	require.NoError(t, err)

	se := newStep("season")
	status, err := tl.Execute(context.Background(), se)
	assert.Equal(t, model.ExitStatusFailed, status)
	assert.ErrorIs(t, err, exception.ErrNoUsableUnits)
	_, ok := se.JobExecution.ExecutionContext.Get(tasklet.KeySeasonTable)
	assert.False(t, ok)
}

func TestSeasonTaskletNoSchedules(t *testing.T) {
	resolver, _ := newResolver(t)
	f := &fakeFetcher{scheduleErr: exception.ErrFetchFailed}
	spy := &skipSpy{}
	tl, err := tasklet.NewSeasonTasklet(
		season.NewPlanner(f, timeutil.RealClock{}, []string{"conventional"}, nil),
		season.NewAggregator(f),
		writer.NewTableStore[domain.SeasonTable](writer.SeasonCodec{}, resolver, "local", "out"),
		[]port.SkipListener{spy}, []int{2023, 2024}, "season_results.csv",
	)
	require.NoError(t, err)

	se := newStep("season")
	_, err = tl.Execute(context.Background(), se)
	assert.ErrorIs(t, err, exception.ErrNoUsableUnits)
	assert.ErrorIs(t, err, exception.ErrFetchFailed)
	assert.Equal(t, []string{"schedule 2023", "schedule 2024"}, spy.units)
	assert.Equal(t, 2, se.SkipCount)
}

func TestSeasonTaskletOnlyFutureRaces(t *testing.T) {
	resolver, dir := newResolver(t)
	raced := time.Date(2030, 3, 2, 15, 0, 0, 0, time.UTC)
	f := &fakeFetcher{schedules: map[int][]domain.Event{2030: {
		{Year: 2030, RoundNumber: 1, Location: "Sakhir", EventFormat: "conventional", RaceStart: &raced},
	}}}
	tl, err := tasklet.NewSeasonTasklet(
		season.NewPlanner(f, timeutil.NewMockClock(raced.Add(-24*time.Hour)), []string{"conventional"}, nil),
		season.NewAggregator(f),
		writer.NewTableStore[domain.SeasonTable](writer.SeasonCodec{}, resolver, "local", "out"),
		nil, []int{2030}, "season_results.csv",
	)
	require.NoError(t, err)

	se := newStep("season")
	status, err := tl.Execute(context.Background(), se)
	assert.Equal(t, model.ExitStatusFailed, status)
	assert.ErrorIs(t, err, exception.ErrNoUsableUnits)
	assert.NoFileExists(t, filepath.Join(dir, "out", "season_results.csv"))
	_, ok := se.JobExecution.ExecutionContext.Get(tasklet.KeySeasonTable)
	assert.False(t, ok)
}

func TestTelemetryTaskletSkipsUndecodableDriver(t *testing.T) {
	resolver, dir := newResolver(t)
	columns := []string{"SessionTime", "Time", "Speed", "RPM", "nGear"}
	payload := provider.SessionPayload{
		Drivers: []string{"1", "44"},
		Telemetry: map[string]frame.Frame{
			"1":  {Columns: columns, Rows: [][]interface{}{{1.0, 1.0, 100.0, 10000.0, 5.0}, {2.0, 2.0, 110.0, 10500.0, 6.0}}},
			"44": {Columns: columns, Rows: [][]interface{}{{"garbage", 1.0, 100.0, 10000.0, 5.0}}},
		},
	}
	session, err := payload.Session(provider.SessionRequest{Year: 2024, Event: "Bahrain", SessionType: "R", Telemetry: true})
	require.NoError(t, err)
	session.Weather = telemetrySession().Weather

	f := &fakeFetcher{sessions: map[string]*domain.Session{"2024/Bahrain/R": session}}
	skips := &skipSpy{}
	se := newStep("telemetry")
	status, err := telemetryTasklet(t, f, skips, resolver).Execute(context.Background(), se)
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, status)
	assert.Equal(t, []string{"driver 44"}, skips.units)
	assert.Equal(t, 1, se.SkipCount)
	assert.FileExists(t, filepath.Join(dir, "out", "raw_cleaned.parquet"))
}
