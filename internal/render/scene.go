package render

import (
	"github.com/couchcryptid/aew-track-map/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// Scene exports the surface as a GeoJSON FeatureCollection: one feature per
// element, carrying its resolved style. The collection bbox is the viewport.
func (s *Surface) Scene() *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := geojson.NewFeatureCollection()
	fc.BBox = geojson.NewBBox(s.viewport)

	kind := "segment"
	if s.mode == domain.ModePoints {
		kind = "point"
	}

	for _, g := range s.groups {
		style := domain.StyleFor(g.State, s.mode)
		for _, el := range g.Elements {
			f := geojson.NewFeature(el.Geometry)
			f.Properties["group"] = g.ID
			f.Properties["index"] = el.Index
			f.Properties["kind"] = kind
			f.Properties["system_id"] = g.Props.SystemID
			f.Properties["state"] = g.State.String()
			f.Properties["color"] = el.Color
			f.Properties["weight"] = style.Weight
			f.Properties["opacity"] = style.Opacity
			if s.mode == domain.ModePoints {
				f.Properties["radius"] = style.Radius
				f.Properties["fill_opacity"] = style.FillOpacity
			}
			f.Properties["date"] = el.Sample.Time
			f.Properties["value"] = domain.FormatStrength(el.Sample.Strength)
			f.Properties["tooltip"] = el.Tooltip
			fc.Append(f)
		}
	}
	return fc
}
