package align

import (
	"sort"

	"github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// SortTelemetry stably sorts samples by session time. Samples without a time sort last.
func SortTelemetry(samples []model.RawTelemetry) {
	sort.SliceStable(samples, func(i, j int) bool {
		a, b := samples[i].SessionTime, samples[j].SessionTime
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})
}

// SortWeather stably sorts weather samples by session time.
func SortWeather(samples []model.WeatherSample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].SessionTime < samples[j].SessionTime
	})
}

// SortLaps stably sorts laps by completion time.
func SortLaps(laps []model.LapRecord) {
	sort.SliceStable(laps, func(i, j int) bool {
		return laps[i].SessionTime < laps[j].SessionTime
	})
}

// CanonicalWeather converts provider weather to session-time keyed samples,
// dropping samples that carry no time, and sorts them.
func CanonicalWeather(raw []model.RawWeather) []model.WeatherSample {
	out := make([]model.WeatherSample, 0, len(raw))
	for _, w := range raw {
		if s, ok := w.Canonical(); ok {
			out = append(out, s)
		}
	}
	if dropped := len(raw) - len(out); dropped > 0 {
		logger.Warnf("Dropped %d weather samples without a session time.", dropped)
	}
	SortWeather(out)
	return out
}

// MergeWeather joins each telemetry sample with the latest weather sample at or
// before it. telemetry must already be sorted by SessionTime and carry a time on
// every sample. columns is the telemetry table's declared column set.
func MergeWeather(telemetry []model.RawTelemetry, weather []model.RawWeather, columns []string) (model.MergedTable, error) {
	samples := CanonicalWeather(weather)
	matches, err := AsOf(telemetry, samples, telemetrySeconds, model.WeatherSample.SessionSeconds)
	if err != nil {
		return model.MergedTable{}, err
	}

	table := model.MergedTable{
		Columns: append(append([]string(nil), columns...), model.WeatherColumns...),
		Samples: make([]model.MergedSample, len(matches)),
	}
	for i, m := range matches {
		table.Samples[i] = model.MergedSample{RawTelemetry: m.Left, Weather: m.Right}
	}
	return table, nil
}

// telemetrySeconds keys a sample by session time; a missing time is NaN and fails the order check.
func telemetrySeconds(t model.RawTelemetry) float64 {
	if t.SessionTime == nil {
		return nan
	}
	return t.SessionSeconds()
}
