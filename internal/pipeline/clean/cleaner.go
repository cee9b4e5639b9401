// Package clean turns the merged telemetry table into validated, compact samples.
package clean

import (
	"fmt"
	"math"
	"strings"

	"github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// RequiredColumns must be declared by the input table and present on every kept row.
var RequiredColumns = []string{model.ColSpeed, model.ColRPM, model.ColGear, model.ColDriver}

// Report counts what cleaning did to a table.
type Report struct {
	Input             int
	DroppedIncomplete int
	DroppedInvalid    int
	Output            int
}

// SchemaMismatchError lists required columns the input table does not declare.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("missing required columns [%s]: %v", strings.Join(e.Missing, ", "), exception.ErrSchemaMismatch)
}

func (e *SchemaMismatchError) Unwrap() error { return exception.ErrSchemaMismatch }

// NarrowingError reports a value that does not fit its narrowed integer type.
type NarrowingError struct {
	Column string
	Row    int
	Value  float64
	Type   string
}

func (e *NarrowingError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("value %v does not fit %s: %v", e.Value, e.Type, exception.ErrNarrowingOverflow)
	}
	return fmt.Sprintf("column %s row %d: value %v does not fit %s: %v", e.Column, e.Row, e.Value, e.Type, exception.ErrNarrowingOverflow)
}

func (e *NarrowingError) Unwrap() error { return exception.ErrNarrowingOverflow }

// NarrowInt8 truncates v toward zero and checks it fits an int8.
func NarrowInt8(v float64) (int8, error) {
	n, err := narrow(v, math.MinInt8, math.MaxInt8, "int8")
	return int8(n), err
}

// NarrowInt16 truncates v toward zero and checks it fits an int16.
func NarrowInt16(v float64) (int16, error) {
	n, err := narrow(v, math.MinInt16, math.MaxInt16, "int16")
	return int16(n), err
}

func narrow(v float64, lo, hi int64, typ string) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &NarrowingError{Value: v, Type: typ}
	}
	t := math.Trunc(v)
	if t < float64(lo) || t > float64(hi) {
		return 0, &NarrowingError{Value: v, Type: typ}
	}
	return int64(t), nil
}

// Cleaner validates merged telemetry.
type Cleaner struct{}

// NewCleaner creates a Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean converts times to seconds, drops incomplete and physically invalid rows,
// and narrows Gear and RPM. The input is not modified. A missing required column
// or an overflowing value fails the whole table.
func (c *Cleaner) Clean(table model.MergedTable) (model.CleanTable, Report, error) {
	var missing []string
	for _, col := range RequiredColumns {
		if !table.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return model.CleanTable{}, Report{}, &SchemaMismatchError{Missing: missing}
	}

	report := Report{Input: len(table.Samples)}
	out := model.CleanTable{Samples: make([]model.CleanSample, 0, len(table.Samples))}

	for i, s := range table.Samples {
		if s.Speed == nil || s.RPM == nil || s.Gear == nil || s.Driver == nil || s.SessionTime == nil {
			report.DroppedIncomplete++
			continue
		}
		if math.IsNaN(*s.Speed) || *s.Speed < 0 {
			report.DroppedInvalid++
			continue
		}

		gear, err := NarrowInt8(*s.Gear)
		if err != nil {
			return model.CleanTable{}, report, withPosition(err, model.ColGear, i)
		}
		rpm, err := NarrowInt16(*s.RPM)
		if err != nil {
			return model.CleanTable{}, report, withPosition(err, model.ColRPM, i)
		}

		cs := model.CleanSample{
			Driver:      *s.Driver,
			SessionTime: s.SessionTime.Seconds(),
			Speed:       *s.Speed,
			RPM:         rpm,
			Gear:        gear,
			Throttle:    s.Throttle,
			Brake:       s.Brake,
			DRS:         s.DRS,
			Distance:    s.Distance,
		}
		if s.Time != nil {
			secs := s.Time.Seconds()
			cs.Time = &secs
		}
		if s.Weather != nil {
			w := *s.Weather
			cs.Weather = &w
		}
		out.Samples = append(out.Samples, cs)
	}

	report.Output = len(out.Samples)
	logger.Infof("Cleaned telemetry: %d rows in, %d dropped incomplete, %d dropped invalid, %d rows out.",
		report.Input, report.DroppedIncomplete, report.DroppedInvalid, report.Output)
	return out, report, nil
}

func withPosition(err error, column string, row int) error {
	if ne, ok := err.(*NarrowingError); ok {
		ne.Column = column
		ne.Row = row
	}
	return err
}
