package model

import "time"

// RawLap is one provider lap row. Time is the session time the lap was completed.
type RawLap struct {
	Driver    *string        `mapstructure:"Driver"`
	Time      *time.Duration `mapstructure:"Time"`
	LapNumber *float64       `mapstructure:"LapNumber"`
	Compound  *string        `mapstructure:"Compound"`
	TyreLife  *float64       `mapstructure:"TyreLife"`
}

// LapRecord is a completed lap keyed by session time in seconds.
type LapRecord struct {
	Driver      string
	SessionTime float64
	LapNumber   *int
	Compound    *string
	TyreLife    *float64
}

// Canonical converts the lap row. It returns false when driver or time is missing.
func (l RawLap) Canonical() (LapRecord, bool) {
	if l.Driver == nil || l.Time == nil {
		return LapRecord{}, false
	}
	rec := LapRecord{
		Driver:      *l.Driver,
		SessionTime: l.Time.Seconds(),
		Compound:    l.Compound,
		TyreLife:    l.TyreLife,
	}
	if l.LapNumber != nil {
		n := int(*l.LapNumber)
		rec.LapNumber = &n
	}
	return rec, true
}
