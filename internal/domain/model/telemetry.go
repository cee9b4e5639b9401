// Package model defines the typed records flowing through the pipeline.
// Raw* types mirror the provider's column names and are converted to canonical
// records at the boundary; nothing downstream depends on provider column names.
package model

import "time"

// Telemetry column names as published by the provider.
const (
	ColDriver      = "Driver"
	ColSessionTime = "SessionTime"
	ColTime        = "Time"
	ColSpeed       = "Speed"
	ColRPM         = "RPM"
	ColGear        = "nGear"
	ColThrottle    = "Throttle"
	ColBrake       = "Brake"
	ColDRS         = "DRS"
	ColDistance    = "Distance"
)

// RawTelemetry is one provider telemetry sample. Missing values are nil.
type RawTelemetry struct {
	Driver      *string        `mapstructure:"Driver"`
	SessionTime *time.Duration `mapstructure:"SessionTime"`
	// Time is the time elapsed within the lap.
	Time     *time.Duration `mapstructure:"Time"`
	Speed    *float64       `mapstructure:"Speed"`
	RPM      *float64       `mapstructure:"RPM"`
	Gear     *float64       `mapstructure:"nGear"`
	Throttle *float64       `mapstructure:"Throttle"`
	Brake    *bool          `mapstructure:"Brake"`
	DRS      *float64       `mapstructure:"DRS"`
	Distance *float64       `mapstructure:"Distance"`
}

// SessionSeconds returns the sample's session time in seconds.
func (t RawTelemetry) SessionSeconds() float64 {
	return t.SessionTime.Seconds()
}

// MergedSample is a telemetry sample with the weather observed at or before it.
type MergedSample struct {
	RawTelemetry
	// Weather is nil when no weather sample precedes the telemetry sample.
	Weather *WeatherSample
}

// MergedTable is the telemetry × weather table with its declared column set.
type MergedTable struct {
	Columns []string
	Samples []MergedSample
}

// HasColumn reports whether the table declares column.
func (t MergedTable) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// CleanSample is a validated telemetry sample with times in seconds and narrowed integers.
type CleanSample struct {
	Driver      string
	SessionTime float64
	Time        *float64
	Speed       float64
	RPM         int16
	Gear        int8
	Throttle    *float64
	Brake       *bool
	DRS         *float64
	Distance    *float64
	Weather     *WeatherSample
	// Lap is set only when lap enrichment is enabled and a completed lap precedes the sample.
	Lap *LapRecord
}

// CleanTable is the cleaned telemetry table.
type CleanTable struct {
	Samples []CleanSample
}
