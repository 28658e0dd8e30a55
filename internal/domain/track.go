package domain

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/paulmach/orb"
)

// Sample is one timestamped measurement along a track.
type Sample struct {
	Time     string  `json:"time"`
	Strength float64 `json:"strength"`
	Month    int     `json:"month,omitempty"`
}

// Cyclogenesis describes the tropical cyclone a wave later developed into.
type Cyclogenesis struct {
	Developed   bool   `json:"developed_into_tc"`
	Name        string `json:"tc_name,omitempty"`
	GenesisTime string `json:"tc_genesis_time,omitempty"`
}

// TrackProperties is the subset of a track's properties passed to click
// handlers alongside the clicked sample.
type TrackProperties struct {
	SystemID     string       `json:"system_id,omitempty"`
	Year         int          `json:"year,omitempty"`
	Months       []int        `json:"months"`
	Cyclogenesis Cyclogenesis `json:"cyclogenesis"`
	Summary      Summary      `json:"summary"`
}

// Track is a single AEW over one season.
type Track struct {
	SystemID     string
	Year         int
	Coordinates  []orb.Point // lon, lat
	Samples      []Sample
	Months       []int
	Cyclogenesis Cyclogenesis
}

// Len returns the number of usable points: coordinates and samples are
// index-aligned, so a mismatched track is truncated to the shorter side.
func (t Track) Len() int {
	return min(len(t.Coordinates), len(t.Samples))
}

// InMonth reports whether the track's month set contains m.
func (t Track) InMonth(m int) bool {
	return slices.Contains(t.Months, m)
}

// Properties builds the click payload for this track.
func (t Track) Properties() TrackProperties {
	return TrackProperties{
		SystemID:     t.SystemID,
		Year:         t.Year,
		Months:       slices.Clone(t.Months),
		Cyclogenesis: t.Cyclogenesis,
		Summary:      Summarize(t),
	}
}

// Validate checks structural invariants of a decoded track.
func (t Track) Validate() error {
	if len(t.Coordinates) != len(t.Samples) {
		return fmt.Errorf("coordinates/point_data length mismatch: %d != %d", len(t.Coordinates), len(t.Samples))
	}
	for i, s := range t.Samples {
		if math.IsNaN(s.Strength) || math.IsInf(s.Strength, 0) {
			return fmt.Errorf("sample %d: non-finite strength", i)
		}
		if s.Month != 0 && !t.InMonth(s.Month) {
			return fmt.Errorf("sample %d: month %d missing from months %v", i, s.Month, t.Months)
		}
	}
	for _, m := range t.Months {
		if m < 1 || m > 12 {
			return fmt.Errorf("month %d out of range", m)
		}
	}
	return nil
}

// Dataset is the full set of tracks for one year. It is replaced wholesale,
// never patched.
type Dataset struct {
	Year   string
	Tracks []Track
}

// rawCollection mirrors the exporter's FeatureCollection. Geometry and
// property types are left loose so partially filled files still decode.
type rawCollection struct {
	Type     string       `json:"type,omitempty"`
	Name     string       `json:"name,omitempty"`
	Features []rawFeature `json:"features"`
}

type rawFeature struct {
	Type     string        `json:"type,omitempty"`
	Geometry rawGeometry   `json:"geometry"`
	Props    rawProperties `json:"properties"`
}

type rawGeometry struct {
	Type        string       `json:"type,omitempty"`
	Coordinates [][2]float64 `json:"coordinates"`
}

type rawProperties struct {
	SystemID        json.RawMessage `json:"system_id,omitempty"`
	Year            int             `json:"year,omitempty"`
	Months          []int           `json:"months"`
	PointData       []Sample        `json:"point_data"`
	DevelopedIntoTC bool            `json:"developed_into_tc,omitempty"`
	TCName          string          `json:"tc_name,omitempty"`
	TCGenesisTime   string          `json:"tc_genesis_time,omitempty"`
}

// DecodeCollection reads a per-year track document. A document without a
// features key decodes to an empty slice.
func DecodeCollection(r io.Reader) ([]Track, error) {
	var doc rawCollection
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode track collection: %w", err)
	}

	tracks := make([]Track, 0, len(doc.Features))
	for _, f := range doc.Features {
		tracks = append(tracks, f.toTrack())
	}
	return tracks, nil
}

func (f rawFeature) toTrack() Track {
	coords := make([]orb.Point, len(f.Geometry.Coordinates))
	for i, c := range f.Geometry.Coordinates {
		coords[i] = orb.Point{c[0], c[1]}
	}
	return Track{
		SystemID:    systemIDString(f.Props.SystemID),
		Year:        f.Props.Year,
		Coordinates: coords,
		Samples:     f.Props.PointData,
		Months:      f.Props.Months,
		Cyclogenesis: Cyclogenesis{
			Developed:   f.Props.DevelopedIntoTC,
			Name:        f.Props.TCName,
			GenesisTime: f.Props.TCGenesisTime,
		},
	}
}

// systemIDString accepts the exporter's system_id as either a number or a string.
func systemIDString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// EncodeCollection writes tracks in the exporter's per-year format.
func EncodeCollection(w io.Writer, name string, tracks []Track) error {
	doc := rawCollection{
		Type:     "FeatureCollection",
		Name:     name,
		Features: make([]rawFeature, 0, len(tracks)),
	}
	for _, t := range tracks {
		coords := make([][2]float64, len(t.Coordinates))
		for i, p := range t.Coordinates {
			coords[i] = [2]float64{p.Lon(), p.Lat()}
		}
		var sid json.RawMessage
		if t.SystemID != "" {
			sid, _ = json.Marshal(t.SystemID)
		}
		doc.Features = append(doc.Features, rawFeature{
			Type:     "Feature",
			Geometry: rawGeometry{Type: "LineString", Coordinates: coords},
			Props: rawProperties{
				SystemID:        sid,
				Year:            t.Year,
				Months:          t.Months,
				PointData:       t.Samples,
				DevelopedIntoTC: t.Cyclogenesis.Developed,
				TCName:          t.Cyclogenesis.Name,
				TCGenesisTime:   t.Cyclogenesis.GenesisTime,
			},
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode track collection: %w", err)
	}
	return nil
}
