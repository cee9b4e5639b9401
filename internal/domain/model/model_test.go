package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func durPtr(d time.Duration) *time.Duration { return &d }

func TestRawWeather_Canonical(t *testing.T) {
	w, ok := RawWeather{Time: durPtr(90 * time.Second), AirTemp: f64Ptr(27.1)}.Canonical()
	require.True(t, ok)
	assert.Equal(t, 90.0, w.SessionSeconds())
	assert.Equal(t, 27.1, *w.AirTemp)

	_, ok = RawWeather{AirTemp: f64Ptr(27.1)}.Canonical()
	assert.False(t, ok)
}

func TestRawLap_Canonical(t *testing.T) {
	l, ok := RawLap{Driver: strPtr("VER"), Time: durPtr(95500 * time.Millisecond), LapNumber: f64Ptr(1), Compound: strPtr("SOFT")}.Canonical()
	require.True(t, ok)
	assert.Equal(t, 95.5, l.SessionTime)
	assert.Equal(t, 1, *l.LapNumber)

	_, ok = RawLap{Driver: strPtr("VER")}.Canonical()
	assert.False(t, ok)
}

func TestResultRecord_FinishPosition(t *testing.T) {
	assert.Equal(t, 3, *ResultRecord{ClassifiedPosition: strPtr("3")}.FinishPosition())
	assert.Equal(t, 12, *ResultRecord{ClassifiedPosition: strPtr("12.0")}.FinishPosition())
	assert.Nil(t, ResultRecord{ClassifiedPosition: strPtr("R")}.FinishPosition())
	assert.Nil(t, ResultRecord{}.FinishPosition())
}

func TestSeasonTable_Columns(t *testing.T) {
	table := SeasonTable{Records: []ResultRecord{
		{Columns: []string{ColYear, ColRound, ColCircuit, ColAbbreviation, ColStatus}},
		{Columns: []string{ColYear, ColRound, ColCircuit, ColAbbreviation, ColQualiPos}},
	}}
	assert.Equal(t, []string{ColYear, ColRound, ColCircuit, ColAbbreviation, ColQualiPos, ColStatus}, table.Columns())
}

func TestRawEvent_Canonical(t *testing.T) {
	round := 3.0
	ev, ok := RawEvent{RoundNumber: &round, Location: strPtr("Melbourne"), EventFormat: strPtr("conventional"),
		Session5Date: strPtr("2025-03-16 15:00:00+11:00")}.Canonical(2025)
	require.True(t, ok)
	assert.Equal(t, 3, ev.RoundNumber)
	require.NotNil(t, ev.RaceStart)
	assert.Equal(t, time.Date(2025, 3, 16, 4, 0, 0, 0, time.UTC), *ev.RaceStart)

	ev, ok = RawEvent{RoundNumber: &round, Session5Date: strPtr("NaT")}.Canonical(2025)
	require.True(t, ok)
	assert.Nil(t, ev.RaceStart)
}

func TestSession_Telemetry(t *testing.T) {
	s := &Session{Year: 2024, Event: "Bahrain", SessionType: "R", TelemetryByDriver: map[string][]RawTelemetry{
		"1": {{Driver: strPtr("1")}},
	}}
	samples, err := s.Telemetry("1")
	require.NoError(t, err)
	assert.Len(t, samples, 1)

	_, err = s.Telemetry("2")
	assert.True(t, IsNoTelemetry(err))
	assert.True(t, errors.Is(err, exception.ErrFetchFailed))
}

func TestCleanRows(t *testing.T) {
	lap := 4
	rows := CleanRows(CleanTable{Samples: []CleanSample{{
		Driver: "VER", SessionTime: 12.5, Speed: 300, RPM: 11000, Gear: 8,
		Weather: &WeatherSample{AirTemp: f64Ptr(26)},
		Lap:     &LapRecord{LapNumber: &lap, Compound: strPtr("HARD")},
	}}})
	require.Len(t, rows, 1)
	assert.Equal(t, int32(11000), rows[0].RPM)
	assert.Equal(t, int32(8), rows[0].Gear)
	assert.Equal(t, 26.0, *rows[0].AirTemp)
	assert.Equal(t, int32(4), *rows[0].LapNumber)
	assert.Equal(t, "HARD", *rows[0].Compound)
}
