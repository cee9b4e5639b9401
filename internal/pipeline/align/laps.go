package align

import (
	"math"

	"github.com/tigerroll/paddock/internal/domain/model"
)

var nan = math.NaN()

// AttachLaps annotates each clean sample with the driver's latest lap completed
// at or before the sample. The input table is not modified.
func AttachLaps(table model.CleanTable, laps []model.LapRecord) (model.CleanTable, error) {
	byDriver := make(map[string][]model.LapRecord)
	for _, l := range laps {
		byDriver[l.Driver] = append(byDriver[l.Driver], l)
	}
	for d := range byDriver {
		SortLaps(byDriver[d])
	}

	// Sample indices per driver, in table order.
	indices := make(map[string][]int)
	for i, s := range table.Samples {
		indices[s.Driver] = append(indices[s.Driver], i)
	}

	out := model.CleanTable{Samples: make([]model.CleanSample, len(table.Samples))}
	copy(out.Samples, table.Samples)

	for driver, idx := range indices {
		matches, err := AsOf(idx, byDriver[driver],
			func(i int) float64 { return table.Samples[i].SessionTime },
			func(l model.LapRecord) float64 { return l.SessionTime })
		if err != nil {
			return model.CleanTable{}, err
		}
		for _, m := range matches {
			if m.Right != nil {
				lap := *m.Right
				out.Samples[m.Left].Lap = &lap
			}
		}
	}
	return out, nil
}
