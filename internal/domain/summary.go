package domain

import (
	"github.com/golang/geo/s2"
)

// earthRadiusKm is the mean Earth radius.
const earthRadiusKm = 6371.0088

// Summary aggregates a track's samples for the info panel.
type Summary struct {
	Points      int     `json:"points"`
	StrengthMin float64 `json:"strength_min"`
	StrengthMax float64 `json:"strength_max"`
	StrengthAvg float64 `json:"strength_mean"`
	LengthKm    float64 `json:"length_km"`
	FirstTime   string  `json:"first_time,omitempty"`
	LastTime    string  `json:"last_time,omitempty"`
}

// Summarize computes point count, strength range/mean (scaled to 10⁻⁵ s⁻¹)
// and the great-circle length of the track.
func Summarize(t Track) Summary {
	n := t.Len()
	if n == 0 {
		return Summary{}
	}

	s := Summary{
		Points:      n,
		StrengthMin: ScaleStrength(t.Samples[0].Strength),
		StrengthMax: ScaleStrength(t.Samples[0].Strength),
		FirstTime:   t.Samples[0].Time,
		LastTime:    t.Samples[n-1].Time,
	}

	var sum float64
	for i := range n {
		v := ScaleStrength(t.Samples[i].Strength)
		sum += v
		s.StrengthMin = min(s.StrengthMin, v)
		s.StrengthMax = max(s.StrengthMax, v)
	}
	s.StrengthAvg = sum / float64(n)
	s.LengthKm = TrackLengthKm(t)
	return s
}

// TrackLengthKm sums great-circle distances between consecutive points.
func TrackLengthKm(t Track) float64 {
	n := t.Len()
	var total float64
	for i := 1; i < n; i++ {
		a := s2.LatLngFromDegrees(t.Coordinates[i-1].Lat(), t.Coordinates[i-1].Lon())
		b := s2.LatLngFromDegrees(t.Coordinates[i].Lat(), t.Coordinates[i].Lon())
		total += a.Distance(b).Radians() * earthRadiusKm
	}
	return total
}
