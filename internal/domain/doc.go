// Package domain models African Easterly Wave (AEW) track data.
//
// # Data Source
//
// Tracks come from post-processed AEW tracker output, exported once per
// season into a GeoJSON-shaped file named
//
//	aew_tracks_<year>_interactive.json
//
// Each file holds one Feature per wave. The geometry is a LineString of
// smoothed (longitude, latitude) positions; properties carry a point_data
// array index-aligned with the coordinates, plus the set of calendar months
// the track touches.
//
// # Strength
//
// AEW strength is curvature vorticity in s⁻¹. Values are small (order 1e-5),
// so display and colour banding both work on the scaled value
//
//	strength × 10⁵   (units of 10⁻⁵ s⁻¹)
//
// formatted with two decimals, e.g. 4.2e-5 → "4.20".
//
// # Cyclogenesis
//
// Tracks that later spawned a tropical cyclone carry developed_into_tc, the
// storm name (tc_name) and the genesis timestamp (tc_genesis_time, formatted
// "YYYY-MM-DD HH:MM"). All three are optional.
//
// # Segments
//
// In line rendering, segment i joins point i and point i+1 and takes its
// colour, tooltip and click payload from sample i.
package domain
