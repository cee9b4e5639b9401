package model

// Pair table columns, in output order.
var PairColumns = []string{
	"Year", "Round", "Circuit", "TeamName", "DriverA", "DriverB",
	"Quali_Delta", "Grid_Delta", "Points_Delta", "Experience_Delta",
	"FavoriteTrackAdvantage", "TrackType", "Target",
}

// Track types.
const (
	TrackStreet    = "street"
	TrackSemi      = "semi"
	TrackPermanent = "permanent"
)

// PairRecord compares two teammates in one round. Deltas are A minus B;
// a delta is nil when either side lacks the value.
type PairRecord struct {
	Year            int
	Round           int
	Circuit         string
	TeamName        string
	DriverA         string
	DriverB         string
	QualiDelta      *int
	GridDelta       *int
	PointsDelta     int
	ExperienceDelta int
	// FavoriteTrackAdvantage is the difference of the drivers' mean finishing position at the circuit.
	FavoriteTrackAdvantage *float64
	TrackType              string
	// Target is 1 when A finished ahead of B.
	Target int
}
