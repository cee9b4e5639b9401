package tasklet

import (
	"context"
	"fmt"

	domain "github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/internal/pipeline/align"
	"github.com/tigerroll/paddock/internal/pipeline/clean"
	"github.com/tigerroll/paddock/internal/pipeline/outcome"
	"github.com/tigerroll/paddock/internal/provider"
	"github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// TelemetryOptions selects the session and the snapshot names.
type TelemetryOptions struct {
	Year        int
	Event       string
	SessionType string
	AttachLaps  bool
	RawName     string
	CleanName   string
}

// TelemetryTasklet fetches one session's telemetry, merges it with weather,
// snapshots the merged table, cleans it and snapshots the result.
type TelemetryTasklet struct {
	fetcher     provider.Fetcher
	cleaner     *clean.Cleaner
	rawWriter   port.ItemWriter[domain.RawRow]
	cleanWriter port.ItemWriter[domain.CleanRow]
	skips       []port.SkipListener
	opts        TelemetryOptions
}

// NewTelemetryTasklet creates a TelemetryTasklet.
func NewTelemetryTasklet(
	fetcher provider.Fetcher,
	cleaner *clean.Cleaner,
	rawWriter port.ItemWriter[domain.RawRow],
	cleanWriter port.ItemWriter[domain.CleanRow],
	skips []port.SkipListener,
	opts TelemetryOptions,
) (*TelemetryTasklet, error) {
	if opts.Year == 0 || opts.Event == "" {
		return nil, exception.NewBatchErrorf("telemetry", "telemetry step requires a year and an event")
	}
	if opts.SessionType == "" {
		opts.SessionType = "R"
	}
	return &TelemetryTasklet{
		fetcher:     fetcher,
		cleaner:     cleaner,
		rawWriter:   rawWriter,
		cleanWriter: cleanWriter,
		skips:       skips,
		opts:        opts,
	}, nil
}

// Execute runs the telemetry pipeline.
func (t *TelemetryTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	req := provider.SessionRequest{Year: t.opts.Year, Event: t.opts.Event, SessionType: t.opts.SessionType, Telemetry: true}
	session, err := t.fetcher.FetchSession(ctx, req)
	if err != nil {
		return model.ExitStatusFailed, err
	}

	samples, columns, failures := t.collect(session)
	stepExecution.ReadCount += len(session.Drivers)
	recordSkips(ctx, t.skips, stepExecution, failures)
	if len(samples) == 0 {
		return model.ExitStatusFailed, exception.NewEmptyResultError("telemetry", len(session.Drivers), outcome.Combine(failures))
	}

	merged, err := align.MergeWeather(samples, session.Weather, columns)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	if err := writeAll(ctx, t.rawWriter, t.opts.RawName, domain.RawRows(merged)); err != nil {
		return model.ExitStatusFailed, err
	}

	cleaned, report, err := t.cleaner.Clean(merged)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	stepExecution.FilterCount += report.DroppedIncomplete + report.DroppedInvalid
	stepExecution.ExecutionContext.Put(KeyCleanReport, report)

	if t.opts.AttachLaps {
		laps := canonicalLaps(session.Laps)
		if cleaned, err = align.AttachLaps(cleaned, laps); err != nil {
			return model.ExitStatusFailed, err
		}
	}
	if err := writeAll(ctx, t.cleanWriter, t.opts.CleanName, domain.CleanRows(cleaned)); err != nil {
		return model.ExitStatusFailed, err
	}
	stepExecution.WriteCount += len(merged.Samples) + len(cleaned.Samples)
	return model.ExitStatusCompleted, nil
}

// collect concatenates every driver's telemetry in session time order. A driver
// without telemetry is a failed unit. Samples without a session time are dropped.
func (t *TelemetryTasklet) collect(session *domain.Session) ([]domain.RawTelemetry, []string, []outcome.Failure) {
	outcomes := make([]outcome.Outcome[[]domain.RawTelemetry], 0, len(session.Drivers))
	for _, driver := range session.Drivers {
		unit := "driver " + driver
		samples, err := session.Telemetry(driver)
		if err != nil {
			outcomes = append(outcomes, outcome.Fail[[]domain.RawTelemetry](unit, err))
			continue
		}
		tagged := make([]domain.RawTelemetry, len(samples))
		for i, s := range samples {
			if s.Driver == nil {
				d := driver
				s.Driver = &d
			}
			tagged[i] = s
		}
		outcomes = append(outcomes, outcome.Success(unit, tagged))
	}

	perDriver, failures := outcome.Partition(outcomes)
	var all []domain.RawTelemetry
	for _, samples := range perDriver {
		all = append(all, samples...)
	}
	untimed := 0
	timed := all[:0]
	for _, s := range all {
		if s.SessionTime == nil {
			untimed++
			continue
		}
		timed = append(timed, s)
	}
	if untimed > 0 {
		logger.Warnf("Dropped %d telemetry samples without a session time.", untimed)
	}
	align.SortTelemetry(timed)

	columns := append([]string(nil), session.TelemetryColumns...)
	if !contains(columns, domain.ColDriver) {
		columns = append(columns, domain.ColDriver)
	}
	return timed, columns, failures
}

func canonicalLaps(raw []domain.RawLap) []domain.LapRecord {
	laps := make([]domain.LapRecord, 0, len(raw))
	for _, l := range raw {
		if rec, ok := l.Canonical(); ok {
			laps = append(laps, rec)
		}
	}
	if dropped := len(raw) - len(laps); dropped > 0 {
		logger.Warnf("Dropped %d laps without a driver or completion time.", dropped)
	}
	return laps
}

func writeAll[T any](ctx context.Context, w port.ItemWriter[T], name string, items []T) (err error) {
	if err := w.Open(ctx, name); err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(ctx); closeErr != nil && err == nil {
			err = fmt.Errorf("write %s: %w", name, closeErr)
		}
	}()
	return w.Write(ctx, items)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Close does nothing.
func (t *TelemetryTasklet) Close(ctx context.Context) error {
	return nil
}

var _ port.Tasklet = (*TelemetryTasklet)(nil)
