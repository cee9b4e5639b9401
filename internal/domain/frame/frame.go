// Package frame holds the tabular payloads handed over by the timing data provider
// and decodes them into typed records.
package frame

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

// Frame is a column-named table. A nil cell is a missing value.
type Frame struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// Len returns the number of rows.
func (f Frame) Len() int { return len(f.Rows) }

// Has reports whether the frame declares column.
func (f Frame) Has(column string) bool {
	for _, c := range f.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Missing returns the required columns the frame does not declare, in the order given.
func (f Frame) Missing(required ...string) []string {
	var missing []string
	for _, c := range required {
		if !f.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Records returns one map per row keyed by column name. Nil cells are left out,
// so a decoded optional field stays nil.
func (f Frame) Records() ([]map[string]interface{}, error) {
	out := make([]map[string]interface{}, 0, len(f.Rows))
	for i, row := range f.Rows {
		if len(row) != len(f.Columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(row), len(f.Columns), exception.ErrSchemaMismatch)
		}
		rec := make(map[string]interface{}, len(f.Columns))
		for j, col := range f.Columns {
			if row[j] != nil {
				rec[col] = row[j]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Decode converts every row of f into a T. Fields are matched by their
// mapstructure tag; input is weakly typed so numeric categories become strings.
func Decode[T any](f Frame) ([]T, error) {
	records, err := f.Records()
	if err != nil {
		return nil, err
	}
	out := make([]T, len(records))
	for i, rec := range records {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &out[i],
			WeaklyTypedInput: true,
			DecodeHook:       DurationHook(),
		})
		if err != nil {
			return nil, err
		}
		if err := decoder.Decode(rec); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", i, err)
		}
	}
	return out, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// DurationHook decodes numbers as seconds, Go duration strings, and
// "0 days 00:01:23.456000" timedelta strings into time.Duration.
func DurationHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}
		switch v := data.(type) {
		case float64:
			return secondsToDuration(v), nil
		case float32:
			return secondsToDuration(float64(v)), nil
		case int:
			return time.Duration(v) * time.Second, nil
		case int64:
			return time.Duration(v) * time.Second, nil
		case string:
			return ParseDuration(v)
		default:
			return data, nil
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

var timedeltaPattern = regexp.MustCompile(`^(-?\d+) days? (\d{1,2}):(\d{2}):(\d{2}(?:\.\d+)?)$`)

// ParseDuration parses a timedelta string, a Go duration string, or a number of seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if m := timedeltaPattern.FindStringSubmatch(s); m != nil {
		days, _ := strconv.Atoi(m[1])
		hours, _ := strconv.Atoi(m[2])
		minutes, _ := strconv.Atoi(m[3])
		seconds, _ := strconv.ParseFloat(m[4], 64)
		d := time.Duration(days)*24*time.Hour +
			time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			secondsToDuration(seconds)
		return d, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return secondsToDuration(f), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("unrecognised duration %q", s)
	}
	return d, nil
}
