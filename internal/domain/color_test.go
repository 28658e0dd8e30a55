package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColor_Bands(t *testing.T) {
	tests := []struct {
		name   string
		scaled float64
		want   string
	}{
		{"zero", 0, "#1c54ff"},
		{"negative", -2, "#1c54ff"},
		{"boundary 1.5", 1.5, "#1c54ff"},
		{"just above 1.5", 1.5001, "#16c7f0"},
		{"boundary 3.0", 3.0, "#16c7f0"},
		{"boundary 4.2", 4.2, "#ffc309"},
		{"boundary 5.0", 5.0, "#ff8c1a"},
		{"boundary 5.8", 5.8, "#ff3b1f"},
		{"boundary 6.5", 6.5, "#e6007e"},
		{"just above 6.5", 6.5001, "#bd00ff"},
		{"very strong", 42, "#bd00ff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Color(tt.scaled))
		})
	}
}

func TestSampleColor_ScalesRawStrength(t *testing.T) {
	assert.Equal(t, "#1c54ff", SampleColor(Sample{Strength: 1.0e-5}))
	assert.Equal(t, "#ffc309", SampleColor(Sample{Strength: 4.0e-5}))
	assert.Equal(t, "#bd00ff", SampleColor(Sample{Strength: 7.0e-5}))
}

func TestFormatStrength(t *testing.T) {
	assert.Equal(t, "4.20", FormatStrength(4.2e-5))
	assert.Equal(t, "0.00", FormatStrength(0))
	assert.Equal(t, "12.35", FormatStrength(12.345e-5+1e-12))
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, 3.0, StyleFor(StateDefault, ModeLines).Weight)
	assert.Zero(t, StyleFor(StateDefault, ModeLines).Radius)
	assert.Equal(t, 4.0, StyleFor(StateDefault, ModePoints).Radius)

	for _, mode := range []Mode{ModeLines, ModePoints} {
		def := StyleFor(StateDefault, mode)
		hi := StyleFor(StateHighlighted, mode)
		dim := StyleFor(StateDimmed, mode)
		assert.Greater(t, hi.Weight, dim.Weight, mode.String())
		assert.Greater(t, hi.Opacity, def.Opacity, mode.String())
		assert.Less(t, dim.Opacity, def.Opacity, mode.String())
	}
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModePoints, ModeFor(true))
	assert.Equal(t, ModeLines, ModeFor(false))
	assert.Equal(t, "points", ModePoints.String())
	assert.Equal(t, "lines", ModeLines.String())
}
