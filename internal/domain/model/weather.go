package model

import "time"

// RawWeather is one provider weather sample. Its time column is named "Time"
// but means session time.
type RawWeather struct {
	Time          *time.Duration `mapstructure:"Time"`
	AirTemp       *float64       `mapstructure:"AirTemp"`
	TrackTemp     *float64       `mapstructure:"TrackTemp"`
	Humidity      *float64       `mapstructure:"Humidity"`
	Pressure      *float64       `mapstructure:"Pressure"`
	Rainfall      *bool          `mapstructure:"Rainfall"`
	WindDirection *float64       `mapstructure:"WindDirection"`
	WindSpeed     *float64       `mapstructure:"WindSpeed"`
}

// WeatherSample is a weather observation keyed by session time.
type WeatherSample struct {
	SessionTime   time.Duration
	AirTemp       *float64
	TrackTemp     *float64
	Humidity      *float64
	Pressure      *float64
	Rainfall      *bool
	WindDirection *float64
	WindSpeed     *float64
}

// Canonical converts the sample to its session-time keyed form.
// It returns false when the sample carries no time.
func (w RawWeather) Canonical() (WeatherSample, bool) {
	if w.Time == nil {
		return WeatherSample{}, false
	}
	return WeatherSample{
		SessionTime:   *w.Time,
		AirTemp:       w.AirTemp,
		TrackTemp:     w.TrackTemp,
		Humidity:      w.Humidity,
		Pressure:      w.Pressure,
		Rainfall:      w.Rainfall,
		WindDirection: w.WindDirection,
		WindSpeed:     w.WindSpeed,
	}, true
}

// SessionSeconds returns the observation time in seconds.
func (w WeatherSample) SessionSeconds() float64 {
	return w.SessionTime.Seconds()
}

// WeatherColumns are the columns a merge adds to the telemetry table.
var WeatherColumns = []string{"AirTemp", "TrackTemp", "Humidity", "Pressure", "Rainfall", "WindDirection", "WindSpeed"}
