package domain

// Mode is the rendering mode for tracks.
type Mode int

const (
	ModeLines Mode = iota
	ModePoints
)

// ModeFor maps the points-only toggle to a Mode.
func ModeFor(pointsOnly bool) Mode {
	if pointsOnly {
		return ModePoints
	}
	return ModeLines
}

func (m Mode) String() string {
	if m == ModePoints {
		return "points"
	}
	return "lines"
}

// VisualState is the per-group emphasis level.
type VisualState int

const (
	StateDefault VisualState = iota
	StateHighlighted
	StateDimmed
)

func (s VisualState) String() string {
	switch s {
	case StateHighlighted:
		return "highlighted"
	case StateDimmed:
		return "dimmed"
	default:
		return "default"
	}
}

// Style holds the drawing attributes of one element. Radius and FillOpacity
// only apply to point markers.
type Style struct {
	Weight      float64 `json:"weight"`
	Opacity     float64 `json:"opacity"`
	Radius      float64 `json:"radius,omitempty"`
	FillOpacity float64 `json:"fill_opacity,omitempty"`
}

var (
	lineStyles = map[VisualState]Style{
		StateDefault:     {Weight: 3, Opacity: 0.9},
		StateHighlighted: {Weight: 6, Opacity: 1},
		StateDimmed:      {Weight: 2, Opacity: 0.15},
	}
	pointStyles = map[VisualState]Style{
		StateDefault:     {Weight: 1, Opacity: 0.9, Radius: 4, FillOpacity: 0.8},
		StateHighlighted: {Weight: 2, Opacity: 1, Radius: 7, FillOpacity: 1},
		StateDimmed:      {Weight: 1, Opacity: 0.15, Radius: 3, FillOpacity: 0.1},
	}
)

// StyleFor returns the style for a group in the given state and mode.
func StyleFor(state VisualState, mode Mode) Style {
	if mode == ModePoints {
		return pointStyles[state]
	}
	return lineStyles[state]
}
