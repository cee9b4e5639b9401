package season

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/internal/pipeline/outcome"
	"github.com/tigerroll/paddock/internal/provider"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

const (
	moduleName = "season"

	sessionQualifying = "Q"
	sessionRace       = "R"
)

// raceColumns are the projected columns copied from the race results when present.
var raceColumns = []string{
	model.ColTeamName, model.ColAbbreviation, model.ColGridPosition,
	model.ColClassifiedPosition, model.ColStatus, model.ColRaceTime,
}

// Aggregator builds the season table one round at a time.
type Aggregator struct {
	fetcher provider.Fetcher
}

// NewAggregator creates an Aggregator over fetcher.
func NewAggregator(fetcher provider.Fetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// Aggregate fetches and joins every round of plan. A round that fails is logged,
// recorded in the returned failure log and skipped. When no round yields a record,
// including an empty plan, the error is an *exception.EmptyResultError.
func (a *Aggregator) Aggregate(ctx context.Context, plan []RoundRef) (model.SeasonTable, []outcome.Failure, error) {
	outcomes := make([]outcome.Outcome[[]model.ResultRecord], 0, len(plan))
	for _, ref := range plan {
		if err := ctx.Err(); err != nil {
			return model.SeasonTable{}, nil, err
		}
		records, err := a.round(ctx, ref)
		if err != nil {
			logger.Warnf("Skipping %s: %v", ref, err)
			outcomes = append(outcomes, outcome.Fail[[]model.ResultRecord](ref.String(), err))
			continue
		}
		logger.Infof("Loaded %s: %d results.", ref, len(records))
		outcomes = append(outcomes, outcome.Success(ref.String(), records))
	}

	rounds, failures := outcome.Partition(outcomes)
	if len(rounds) == 0 {
		return model.SeasonTable{}, failures, exception.NewEmptyResultError(moduleName, len(plan), outcome.Combine(failures))
	}

	var table model.SeasonTable
	seen := make(map[string]bool)
	for _, records := range rounds {
		for _, r := range records {
			key := fmt.Sprintf("%d/%d/%s", r.Year, r.Round, r.Driver)
			if seen[key] {
				logger.Warnf("Duplicate result for %s in %d round %d, keeping the first.", r.Driver, r.Year, r.Round)
				continue
			}
			seen[key] = true
			table.Records = append(table.Records, r)
		}
	}
	if len(table.Records) == 0 {
		return model.SeasonTable{}, failures, exception.NewEmptyResultError(moduleName, len(plan), outcome.Combine(failures))
	}
	return table, failures, nil
}

func (a *Aggregator) round(ctx context.Context, ref RoundRef) ([]model.ResultRecord, error) {
	quali, err := a.results(ctx, ref, sessionQualifying)
	if err != nil {
		return nil, err
	}
	if missing := missingColumns(quali, model.ColAbbreviation, model.ColPosition); len(missing) > 0 {
		return nil, fmt.Errorf("qualifying results lack %v: %w", missing, exception.ErrSchemaMismatch)
	}
	race, err := a.results(ctx, ref, sessionRace)
	if err != nil {
		return nil, err
	}
	if missing := missingColumns(race, model.ColAbbreviation); len(missing) > 0 {
		return nil, fmt.Errorf("race results lack %v: %w", missing, exception.ErrSchemaMismatch)
	}
	return Join(ref, race, quali), nil
}

func (a *Aggregator) results(ctx context.Context, ref RoundRef, sessionType string) (*model.Session, error) {
	session, err := a.fetcher.FetchSession(ctx, provider.SessionRequest{
		Year:        ref.Year,
		Event:       strconv.Itoa(ref.Round),
		SessionType: sessionType,
	})
	if err != nil {
		return nil, err
	}
	if len(session.Results) == 0 {
		return nil, fmt.Errorf("no %s results: %w", sessionType, exception.ErrFetchFailed)
	}
	return session, nil
}

// Join left-joins race results with qualifying results on driver abbreviation.
// Every race participant is kept; QualiPos is nil when the driver did not qualify.
// Race rows without an abbreviation are dropped.
func Join(ref RoundRef, race, quali *model.Session) []model.ResultRecord {
	qualiPos := make(map[string]*int, len(quali.Results))
	for _, q := range quali.Results {
		if q.Abbreviation == nil {
			continue
		}
		if _, ok := qualiPos[*q.Abbreviation]; !ok {
			qualiPos[*q.Abbreviation] = model.PositionPtr(q.Position)
		}
	}

	columns := []string{model.ColYear, model.ColRound, model.ColCircuit}
	for _, c := range raceColumns {
		if race.HasResultColumn(c) {
			columns = append(columns, c)
		}
	}
	columns = append(columns, model.ColQualiPos)
	columns = projectionOrder(columns)

	records := make([]model.ResultRecord, 0, len(race.Results))
	for _, r := range race.Results {
		if r.Abbreviation == nil {
			logger.Warnf("%s: dropping race result without a driver abbreviation.", ref)
			continue
		}
		rec := model.ResultRecord{
			Year:               ref.Year,
			Round:              ref.Round,
			Circuit:            ref.Circuit,
			Driver:             *r.Abbreviation,
			TeamName:           r.TeamName,
			QualiPos:           qualiPos[*r.Abbreviation],
			GridPos:            model.PositionPtr(r.GridPosition),
			ClassifiedPosition: r.ClassifiedPosition,
			Status:             r.Status,
			Columns:            columns,
		}
		if r.Time != nil {
			seconds := r.Time.Seconds()
			rec.Time = &seconds
		}
		records = append(records, rec)
	}
	return records
}

func missingColumns(s *model.Session, required ...string) []string {
	var missing []string
	for _, c := range required {
		if !s.HasResultColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

func projectionOrder(columns []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	ordered := make([]string, 0, len(columns))
	for _, c := range model.SeasonColumns {
		if present[c] {
			ordered = append(ordered, c)
		}
	}
	return ordered
}
