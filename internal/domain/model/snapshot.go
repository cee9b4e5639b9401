package model

// RawRow is one row of the raw_data snapshot: the merged table before cleaning.
// Durations are stored as nanoseconds.
type RawRow struct {
	Driver        *string  `parquet:"name=Driver, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SessionTime   *int64   `parquet:"name=SessionTime, type=INT64, repetitiontype=OPTIONAL"`
	Time          *int64   `parquet:"name=Time, type=INT64, repetitiontype=OPTIONAL"`
	Speed         *float64 `parquet:"name=Speed, type=DOUBLE, repetitiontype=OPTIONAL"`
	RPM           *float64 `parquet:"name=RPM, type=DOUBLE, repetitiontype=OPTIONAL"`
	Gear          *float64 `parquet:"name=nGear, type=DOUBLE, repetitiontype=OPTIONAL"`
	Throttle      *float64 `parquet:"name=Throttle, type=DOUBLE, repetitiontype=OPTIONAL"`
	Brake         *bool    `parquet:"name=Brake, type=BOOLEAN, repetitiontype=OPTIONAL"`
	DRS           *float64 `parquet:"name=DRS, type=DOUBLE, repetitiontype=OPTIONAL"`
	Distance      *float64 `parquet:"name=Distance, type=DOUBLE, repetitiontype=OPTIONAL"`
	AirTemp       *float64 `parquet:"name=AirTemp, type=DOUBLE, repetitiontype=OPTIONAL"`
	TrackTemp     *float64 `parquet:"name=TrackTemp, type=DOUBLE, repetitiontype=OPTIONAL"`
	Humidity      *float64 `parquet:"name=Humidity, type=DOUBLE, repetitiontype=OPTIONAL"`
	Pressure      *float64 `parquet:"name=Pressure, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rainfall      *bool    `parquet:"name=Rainfall, type=BOOLEAN, repetitiontype=OPTIONAL"`
	WindDirection *float64 `parquet:"name=WindDirection, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindSpeed     *float64 `parquet:"name=WindSpeed, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// CleanRow is one row of the raw_cleaned snapshot. Lap columns are null unless
// lap enrichment ran.
type CleanRow struct {
	Driver        string   `parquet:"name=Driver, type=BYTE_ARRAY, convertedtype=UTF8"`
	SessionTime   float64  `parquet:"name=SessionTime, type=DOUBLE"`
	Time          *float64 `parquet:"name=Time, type=DOUBLE, repetitiontype=OPTIONAL"`
	Speed         float64  `parquet:"name=Speed, type=DOUBLE"`
	RPM           int32    `parquet:"name=RPM, type=INT32, convertedtype=INT_16"`
	Gear          int32    `parquet:"name=nGear, type=INT32, convertedtype=INT_8"`
	Throttle      *float64 `parquet:"name=Throttle, type=DOUBLE, repetitiontype=OPTIONAL"`
	Brake         *bool    `parquet:"name=Brake, type=BOOLEAN, repetitiontype=OPTIONAL"`
	DRS           *float64 `parquet:"name=DRS, type=DOUBLE, repetitiontype=OPTIONAL"`
	Distance      *float64 `parquet:"name=Distance, type=DOUBLE, repetitiontype=OPTIONAL"`
	AirTemp       *float64 `parquet:"name=AirTemp, type=DOUBLE, repetitiontype=OPTIONAL"`
	TrackTemp     *float64 `parquet:"name=TrackTemp, type=DOUBLE, repetitiontype=OPTIONAL"`
	Humidity      *float64 `parquet:"name=Humidity, type=DOUBLE, repetitiontype=OPTIONAL"`
	Pressure      *float64 `parquet:"name=Pressure, type=DOUBLE, repetitiontype=OPTIONAL"`
	Rainfall      *bool    `parquet:"name=Rainfall, type=BOOLEAN, repetitiontype=OPTIONAL"`
	WindDirection *float64 `parquet:"name=WindDirection, type=DOUBLE, repetitiontype=OPTIONAL"`
	WindSpeed     *float64 `parquet:"name=WindSpeed, type=DOUBLE, repetitiontype=OPTIONAL"`
	LapNumber     *int32   `parquet:"name=LapNumber, type=INT32, repetitiontype=OPTIONAL"`
	Compound      *string  `parquet:"name=Compound, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	TyreLife      *float64 `parquet:"name=TyreLife, type=DOUBLE, repetitiontype=OPTIONAL"`
}

// RawRows flattens a merged table for persistence.
func RawRows(t MergedTable) []RawRow {
	rows := make([]RawRow, len(t.Samples))
	for i, s := range t.Samples {
		r := RawRow{
			Driver:   s.Driver,
			Speed:    s.Speed,
			RPM:      s.RPM,
			Gear:     s.Gear,
			Throttle: s.Throttle,
			Brake:    s.Brake,
			DRS:      s.DRS,
			Distance: s.Distance,
		}
		if s.SessionTime != nil {
			ns := int64(*s.SessionTime)
			r.SessionTime = &ns
		}
		if s.Time != nil {
			ns := int64(*s.Time)
			r.Time = &ns
		}
		if w := s.Weather; w != nil {
			r.AirTemp, r.TrackTemp, r.Humidity, r.Pressure = w.AirTemp, w.TrackTemp, w.Humidity, w.Pressure
			r.Rainfall, r.WindDirection, r.WindSpeed = w.Rainfall, w.WindDirection, w.WindSpeed
		}
		rows[i] = r
	}
	return rows
}

// CleanRows flattens a clean table for persistence.
func CleanRows(t CleanTable) []CleanRow {
	rows := make([]CleanRow, len(t.Samples))
	for i, s := range t.Samples {
		r := CleanRow{
			Driver:      s.Driver,
			SessionTime: s.SessionTime,
			Time:        s.Time,
			Speed:       s.Speed,
			RPM:         int32(s.RPM),
			Gear:        int32(s.Gear),
			Throttle:    s.Throttle,
			Brake:       s.Brake,
			DRS:         s.DRS,
			Distance:    s.Distance,
		}
		if w := s.Weather; w != nil {
			r.AirTemp, r.TrackTemp, r.Humidity, r.Pressure = w.AirTemp, w.TrackTemp, w.Humidity, w.Pressure
			r.Rainfall, r.WindDirection, r.WindSpeed = w.Rainfall, w.WindDirection, w.WindSpeed
		}
		if l := s.Lap; l != nil {
			if l.LapNumber != nil {
				n := int32(*l.LapNumber)
				r.LapNumber = &n
			}
			r.Compound, r.TyreLife = l.Compound, l.TyreLife
		}
		rows[i] = r
	}
	return rows
}
