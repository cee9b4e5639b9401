// Package features derives teammate comparison records from a season table.
package features

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// Pair orders.
const (
	// OrderStored takes driver A as the first record of a team group.
	OrderStored = "stored"
	// OrderDriver takes driver A as the lexicographically smaller driver code.
	OrderDriver = "driver"
)

// pointsTable maps finishing positions 1-10 to race points.
var pointsTable = [...]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// RacePoints returns the points for a finishing position. Unplaced or nil positions score 0.
func RacePoints(position *int) int {
	if position == nil || *position < 1 || *position > len(pointsTable) {
		return 0
	}
	return pointsTable[*position-1]
}

// Options configures an Engine.
type Options struct {
	AllowedStatuses []string
	PairOrder       string
	StreetCircuits  []string
	SemiCircuits    []string
}

// Engine derives pair records.
type Engine struct {
	allowed map[string]bool
	street  map[string]bool
	semi    map[string]bool
	order   string
}

// NewEngine creates an Engine. An unknown pair order is an error.
func NewEngine(opts Options) (*Engine, error) {
	order := opts.PairOrder
	if order == "" {
		order = OrderStored
	}
	if order != OrderStored && order != OrderDriver {
		return nil, fmt.Errorf("unknown pair order %q", opts.PairOrder)
	}
	return &Engine{
		allowed: set(opts.AllowedStatuses),
		street:  set(opts.StreetCircuits),
		semi:    set(opts.SemiCircuits),
		order:   order,
	}, nil
}

func set(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// TrackType classifies a circuit.
func (e *Engine) TrackType(circuit string) string {
	switch {
	case e.street[circuit]:
		return model.TrackStreet
	case e.semi[circuit]:
		return model.TrackSemi
	default:
		return model.TrackPermanent
	}
}

// row is a season record with its derived features.
type row struct {
	model.ResultRecord
	position    *int
	pointsAhead int
	experience  int
	favorite    *float64
	trackType   string
}

type groupKey struct {
	year  int
	round int
	team  string
}

// Derive computes one PairRecord per (Year, Round, TeamName) group of exactly two
// finishers. The input table is not modified.
func (e *Engine) Derive(table model.SeasonTable) ([]model.PairRecord, error) {
	rows := e.finishers(table)

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Round < rows[j].Round
	})

	e.pointsBeforeRace(rows)
	e.experience(rows)
	e.favoriteTrack(rows)
	for i := range rows {
		rows[i].trackType = e.TrackType(rows[i].Circuit)
	}

	groups := make(map[groupKey][]*row)
	var keys []groupKey
	for i := range rows {
		r := &rows[i]
		if r.TeamName == nil {
			continue
		}
		k := groupKey{year: r.Year, round: r.Round, team: *r.TeamName}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		if keys[i].round != keys[j].round {
			return keys[i].round < keys[j].round
		}
		return keys[i].team < keys[j].team
	})

	pairs := make([]model.PairRecord, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		if len(g) != 2 {
			logger.Debugf("Skipping %s in %d round %d: %d finishers.", k.team, k.year, k.round, len(g))
			continue
		}
		a, b := g[0], g[1]
		if e.order == OrderDriver && b.Driver < a.Driver {
			a, b = b, a
		}
		pairs = append(pairs, pair(a, b))
	}
	logger.Infof("Derived %d teammate pairs from %d finishers.", len(pairs), len(rows))
	return pairs, nil
}

func (e *Engine) finishers(table model.SeasonTable) []row {
	rows := make([]row, 0, len(table.Records))
	for _, r := range table.Records {
		if r.Status == nil || !e.allowed[*r.Status] {
			continue
		}
		rows = append(rows, row{ResultRecord: r, position: r.FinishPosition()})
	}
	return rows
}

// pointsBeforeRace sets the points a driver scored in the season before each round.
// rows must be sorted by (Year, Round).
func (e *Engine) pointsBeforeRace(rows []row) {
	type seasonDriver struct {
		year   int
		driver string
	}
	running := make(map[seasonDriver]int)
	for i := range rows {
		k := seasonDriver{rows[i].Year, rows[i].Driver}
		rows[i].pointsAhead = running[k]
		running[k] += RacePoints(rows[i].position)
	}
}

func (e *Engine) experience(rows []row) {
	first := make(map[string]int)
	for _, r := range rows {
		if y, ok := first[r.Driver]; !ok || r.Year < y {
			first[r.Driver] = r.Year
		}
	}
	for i := range rows {
		rows[i].experience = rows[i].Year - first[rows[i].Driver]
	}
}

func (e *Engine) favoriteTrack(rows []row) {
	type driverCircuit struct {
		driver  string
		circuit string
	}
	positions := make(map[driverCircuit][]float64)
	for _, r := range rows {
		if r.position == nil {
			continue
		}
		k := driverCircuit{r.Driver, r.Circuit}
		positions[k] = append(positions[k], float64(*r.position))
	}
	means := make(map[driverCircuit]float64, len(positions))
	for k, xs := range positions {
		means[k] = stat.Mean(xs, nil)
	}
	for i := range rows {
		if m, ok := means[driverCircuit{rows[i].Driver, rows[i].Circuit}]; ok {
			mean := m
			rows[i].favorite = &mean
		}
	}
}

func pair(a, b *row) model.PairRecord {
	p := model.PairRecord{
		Year:            a.Year,
		Round:           a.Round,
		Circuit:         a.Circuit,
		TeamName:        *a.TeamName,
		DriverA:         a.Driver,
		DriverB:         b.Driver,
		QualiDelta:      intDelta(a.QualiPos, b.QualiPos),
		GridDelta:       intDelta(a.GridPos, b.GridPos),
		PointsDelta:     a.pointsAhead - b.pointsAhead,
		ExperienceDelta: a.experience - b.experience,
		TrackType:       a.trackType,
	}
	if a.favorite != nil && b.favorite != nil {
		d := *a.favorite - *b.favorite
		p.FavoriteTrackAdvantage = &d
	}
	if a.position != nil && b.position != nil && *a.position < *b.position {
		p.Target = 1
	}
	return p
}

func intDelta(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	d := *a - *b
	return &d
}
