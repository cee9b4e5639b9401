// Package writer encodes the season and pair tables as CSV artifacts.
package writer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

// ContentType of the CSV artifacts.
const ContentType = "text/csv"

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func parseInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	// Positions written by dataframe tools may carry a trailing ".0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	n := int(f)
	return &n, nil
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &f, nil
}

func parseString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// readTable reads a header and all rows, indexing columns by name.
func readTable(r io.Reader) (map[string]int, [][]string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return map[string]int{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return index, rows, nil
}

func requireColumns(index map[string]int, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("csv lacks columns %v: %w", missing, exception.ErrSchemaMismatch)
	}
	return nil
}

// SeasonCodec reads and writes the season table. Only columns present in the table are written.
type SeasonCodec struct{}

// Encode writes table with a header of its present columns in projection order.
func (SeasonCodec) Encode(w io.Writer, table model.SeasonTable) error {
	cw := csv.NewWriter(w)
	columns := table.Columns()
	if err := cw.Write(columns); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, r := range table.Records {
		for i, c := range columns {
			if !r.Has(c) {
				row[i] = ""
				continue
			}
			row[i] = seasonField(r, c)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func seasonField(r model.ResultRecord, column string) string {
	switch column {
	case model.ColYear:
		return strconv.Itoa(r.Year)
	case model.ColRound:
		return strconv.Itoa(r.Round)
	case model.ColCircuit:
		return r.Circuit
	case model.ColTeamName:
		return formatString(r.TeamName)
	case model.ColAbbreviation:
		return r.Driver
	case model.ColQualiPos:
		return formatInt(r.QualiPos)
	case model.ColGridPosition:
		return formatInt(r.GridPos)
	case model.ColClassifiedPosition:
		return formatString(r.ClassifiedPosition)
	case model.ColStatus:
		return formatString(r.Status)
	case model.ColRaceTime:
		return formatFloat(r.Time)
	}
	return ""
}

// Decode reads a season table. Year, Round and Abbreviation are required; other
// projected columns are optional and unknown columns are ignored.
//
// Every record gets all header columns. The header is the union over rounds and an
// empty cell reads as null, so a column a round never had comes back present with a
// nil value. Encoding the decoded table reproduces the file byte for byte.
func (SeasonCodec) Decode(r io.Reader) (model.SeasonTable, error) {
	index, rows, err := readTable(r)
	if err != nil {
		return model.SeasonTable{}, err
	}
	if len(index) == 0 {
		return model.SeasonTable{}, nil
	}
	if err := requireColumns(index, model.ColYear, model.ColRound, model.ColAbbreviation); err != nil {
		return model.SeasonTable{}, err
	}
	var columns []string
	for _, c := range model.SeasonColumns {
		if _, ok := index[c]; ok {
			columns = append(columns, c)
		}
	}

	table := model.SeasonTable{Records: make([]model.ResultRecord, 0, len(rows))}
	for n, row := range rows {
		rec := model.ResultRecord{Columns: columns}
		for _, c := range columns {
			if err := setSeasonField(&rec, c, row[index[c]]); err != nil {
				return model.SeasonTable{}, fmt.Errorf("row %d column %s: %w", n+1, c, err)
			}
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

func setSeasonField(rec *model.ResultRecord, column, value string) error {
	var err error
	switch column {
	case model.ColYear, model.ColRound:
		var v *int
		if v, err = parseInt(value); err == nil {
			if v == nil {
				return fmt.Errorf("missing value")
			}
			if column == model.ColYear {
				rec.Year = *v
			} else {
				rec.Round = *v
			}
		}
	case model.ColCircuit:
		rec.Circuit = value
	case model.ColTeamName:
		rec.TeamName = parseString(value)
	case model.ColAbbreviation:
		rec.Driver = value
	case model.ColQualiPos:
		rec.QualiPos, err = parseInt(value)
	case model.ColGridPosition:
		rec.GridPos, err = parseInt(value)
	case model.ColClassifiedPosition:
		rec.ClassifiedPosition = parseString(value)
	case model.ColStatus:
		rec.Status = parseString(value)
	case model.ColRaceTime:
		rec.Time, err = parseFloat(value)
	}
	return err
}

// PairCodec reads and writes the pair table in the fixed pair column order.
type PairCodec struct{}

// Encode writes pairs.
func (PairCodec) Encode(w io.Writer, pairs []model.PairRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.PairColumns); err != nil {
		return err
	}
	for _, p := range pairs {
		row := []string{
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Round),
			p.Circuit,
			p.TeamName,
			p.DriverA,
			p.DriverB,
			formatInt(p.QualiDelta),
			formatInt(p.GridDelta),
			strconv.Itoa(p.PointsDelta),
			strconv.Itoa(p.ExperienceDelta),
			formatFloat(p.FavoriteTrackAdvantage),
			p.TrackType,
			strconv.Itoa(p.Target),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a pair table written by Encode.
func (PairCodec) Decode(r io.Reader) ([]model.PairRecord, error) {
	index, rows, err := readTable(r)
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, nil
	}
	if err := requireColumns(index, model.PairColumns...); err != nil {
		return nil, err
	}
	pairs := make([]model.PairRecord, 0, len(rows))
	for n, row := range rows {
		get := func(c string) string { return row[index[c]] }
		p := model.PairRecord{
			Circuit:   get("Circuit"),
			TeamName:  get("TeamName"),
			DriverA:   get("DriverA"),
			DriverB:   get("DriverB"),
			TrackType: get("TrackType"),
		}
		ints := []struct {
			column string
			dst    *int
		}{
			{"Year", &p.Year}, {"Round", &p.Round}, {"Points_Delta", &p.PointsDelta},
			{"Experience_Delta", &p.ExperienceDelta}, {"Target", &p.Target},
		}
		for _, f := range ints {
			v, err := parseInt(get(f.column))
			if err != nil || v == nil {
				return nil, fmt.Errorf("row %d column %s: invalid value %q", n+1, f.column, get(f.column))
			}
			*f.dst = *v
		}
		if p.QualiDelta, err = parseInt(get("Quali_Delta")); err != nil {
			return nil, fmt.Errorf("row %d column Quali_Delta: %w", n+1, err)
		}
		if p.GridDelta, err = parseInt(get("Grid_Delta")); err != nil {
			return nil, fmt.Errorf("row %d column Grid_Delta: %w", n+1, err)
		}
		if p.FavoriteTrackAdvantage, err = parseFloat(get("FavoriteTrackAdvantage")); err != nil {
			return nil, fmt.Errorf("row %d column FavoriteTrackAdvantage: %w", n+1, err)
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

var (
	_ port.TableCodec[model.SeasonTable]  = SeasonCodec{}
	_ port.TableCodec[[]model.PairRecord] = PairCodec{}
)
