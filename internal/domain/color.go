package domain

import (
	"fmt"
	"math"
)

// StrengthScale converts raw vorticity (s⁻¹) to display units of 10⁻⁵ s⁻¹.
const StrengthScale = 1e5

// colorBand maps an inclusive upper bound on scaled strength to a colour.
type colorBand struct {
	max   float64
	color string
}

// Bands are ordered ascending; the first band whose bound is >= the value wins.
var colorBands = []colorBand{
	{1.5, "#1c54ff"},
	{3.0, "#16c7f0"},
	{4.2, "#ffc309"},
	{5.0, "#ff8c1a"},
	{5.8, "#ff3b1f"},
	{6.5, "#e6007e"},
}

// colorMax is used for everything above the last band.
const colorMax = "#bd00ff"

// Color returns the band colour for a strength already scaled by StrengthScale.
func Color(scaled float64) string {
	for _, b := range colorBands {
		if scaled <= b.max {
			return b.color
		}
	}
	return colorMax
}

// ScaleStrength converts raw strength to 10⁻⁵ s⁻¹.
func ScaleStrength(raw float64) float64 {
	return raw * StrengthScale
}

// FormatStrength renders raw strength in display units with two decimals.
func FormatStrength(raw float64) string {
	v := ScaleStrength(raw)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "—"
	}
	return fmt.Sprintf("%.2f", v)
}

// SampleColor is Color applied to a raw sample strength.
func SampleColor(s Sample) string {
	return Color(ScaleStrength(s.Strength))
}
