package model

import (
	"strconv"
	"strings"
	"time"
)

// Season table columns, in output order. Driver identity is published as "Abbreviation".
const (
	ColYear               = "Year"
	ColRound              = "Round"
	ColCircuit            = "Circuit"
	ColTeamName           = "TeamName"
	ColAbbreviation       = "Abbreviation"
	ColQualiPos           = "QualiPos"
	ColGridPosition       = "GridPosition"
	ColClassifiedPosition = "ClassifiedPosition"
	ColStatus             = "Status"
	ColRaceTime           = "Time"
	// ColPosition is the provider's finishing position column, renamed to QualiPos for qualifying.
	ColPosition = "Position"
)

// SeasonColumns is the fixed projection of the season table.
var SeasonColumns = []string{
	ColYear, ColRound, ColCircuit, ColTeamName, ColAbbreviation,
	ColQualiPos, ColGridPosition, ColClassifiedPosition, ColStatus, ColRaceTime,
}

// RawResult is one row of a provider session results table.
type RawResult struct {
	Abbreviation       *string        `mapstructure:"Abbreviation"`
	TeamName           *string        `mapstructure:"TeamName"`
	Position           *float64       `mapstructure:"Position"`
	GridPosition       *float64       `mapstructure:"GridPosition"`
	ClassifiedPosition *string        `mapstructure:"ClassifiedPosition"`
	Status             *string        `mapstructure:"Status"`
	Time               *time.Duration `mapstructure:"Time"`
	Q1                 *time.Duration `mapstructure:"Q1"`
	Q2                 *time.Duration `mapstructure:"Q2"`
	Q3                 *time.Duration `mapstructure:"Q3"`
}

// ResultRecord is one driver's result in one round.
// Columns lists the projected columns that were present in the round's data;
// an absent column is omitted, not defaulted.
type ResultRecord struct {
	Year     int
	Round    int
	Circuit  string
	Driver   string
	TeamName *string
	QualiPos *int
	GridPos  *int
	// ClassifiedPosition is textual: a number, or a code such as "R" for retired.
	ClassifiedPosition *string
	Status             *string
	// Time is the race time in seconds.
	Time    *float64
	Columns []string
}

// Has reports whether the record carries column.
func (r ResultRecord) Has(column string) bool {
	for _, c := range r.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// FinishPosition parses ClassifiedPosition. Non-numeric classifications return nil.
func (r ResultRecord) FinishPosition() *int {
	if r.ClassifiedPosition == nil {
		return nil
	}
	s := strings.TrimSpace(*r.ClassifiedPosition)
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		n := int(f)
		return &n
	}
	return nil
}

// SeasonTable is the ordered union of result records across rounds.
// At most one record exists per (Year, Round, Driver).
type SeasonTable struct {
	Records []ResultRecord
}

// Columns returns the projected columns present in at least one record, in projection order.
func (t SeasonTable) Columns() []string {
	present := make(map[string]bool, len(SeasonColumns))
	for _, r := range t.Records {
		for _, c := range r.Columns {
			present[c] = true
		}
	}
	var cols []string
	for _, c := range SeasonColumns {
		if present[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// PositionPtr converts an optional float position to an optional int.
func PositionPtr(f *float64) *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}
