// Package render lays AEW tracks out as groups of styled map elements and
// owns the single highlighted-track pointer.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/aew-track-map/internal/domain"
	"github.com/couchcryptid/aew-track-map/internal/observability"
	"github.com/paulmach/orb"
)

// ErrNoSuchElement is returned when a click targets a group or element that
// is not part of the current render.
var ErrNoSuchElement = errors.New("no such element")

// boundsPadding is the fixed margin, in degrees, added around rendered
// geometry when fitting the viewport.
const boundsPadding = 2.0

// noHighlight marks the absence of a highlighted group.
const noHighlight = -1

// DefaultViewport frames West Africa and the tropical Atlantic.
var DefaultViewport = orb.Bound{Min: orb.Point{-120, -20}, Max: orb.Point{60, 60}}

// SelectFunc receives the clicked sample's date, its formatted strength and
// the owning track's properties.
type SelectFunc func(date, value string, props *domain.TrackProperties)

// Element is one marker (points mode) or one segment (lines mode).
type Element struct {
	Index    int
	Geometry orb.Geometry
	Color    string
	Sample   domain.Sample
	Tooltip  string
}

// Group holds the elements drawn for one track.
type Group struct {
	ID       int
	Props    domain.TrackProperties
	Elements []Element
	State    domain.VisualState
}

// Result describes what a Render call actually drew.
type Result struct {
	Tracks    int
	Elements  int
	Bounds    orb.Bound
	HasBounds bool
}

// Surface is the in-memory map: a single layer of track groups, the current
// rendering mode and the highlight state.
type Surface struct {
	mu          sync.RWMutex
	groups      []*Group
	mode        domain.Mode
	highlighted int
	onSelect    SelectFunc
	viewport    orb.Bound
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewSurface creates an empty surface framed on the default viewport.
func NewSurface(logger *slog.Logger, metrics *observability.Metrics) *Surface {
	return &Surface{
		highlighted: noHighlight,
		viewport:    DefaultViewport,
		logger:      logger,
		metrics:     metrics,
	}
}

// Clear removes all groups and drops the highlight.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Surface) clearLocked() {
	s.groups = nil
	s.highlighted = noHighlight
	s.onSelect = nil
	s.metrics.TracksRendered.Set(0)
	s.metrics.ElementsRendered.Set(0)
}

// Render replaces the surface contents with the tracks that pass filter,
// drawn in the given mode. onSelect is invoked for every element click.
func (s *Surface) Render(tracks []domain.Track, filter domain.MonthFilter, mode domain.Mode, onSelect SelectFunc) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()
	s.mode = mode
	s.onSelect = onSelect

	var res Result
	for _, t := range filter.Apply(tracks) {
		g := &Group{
			ID:    len(s.groups),
			Props: t.Properties(),
		}
		if mode == domain.ModePoints {
			g.Elements = pointElements(t)
		} else {
			g.Elements = segmentElements(t)
		}
		for _, el := range g.Elements {
			b := el.Geometry.Bound()
			if !res.HasBounds {
				res.Bounds, res.HasBounds = b, true
				continue
			}
			res.Bounds = res.Bounds.Union(b)
		}
		res.Elements += len(g.Elements)
		s.groups = append(s.groups, g)
	}
	res.Tracks = len(s.groups)

	if res.HasBounds {
		s.viewport = res.Bounds.Pad(boundsPadding)
	} else if res.Tracks > 0 {
		s.logger.Debug("no geometry to fit, keeping viewport", "tracks", res.Tracks)
	}

	s.metrics.TracksRendered.Set(float64(res.Tracks))
	s.metrics.ElementsRendered.Set(float64(res.Elements))
	s.logger.Debug("tracks rendered",
		"tracks", res.Tracks,
		"elements", res.Elements,
		"month", filter.String(),
		"mode", mode.String(),
	)
	return res
}

func pointElements(t domain.Track) []Element {
	n := t.Len()
	els := make([]Element, 0, n)
	for i := range n {
		smp := t.Samples[i]
		els = append(els, Element{
			Index:    i,
			Geometry: t.Coordinates[i],
			Color:    domain.SampleColor(smp),
			Sample:   smp,
			Tooltip:  tooltip(smp),
		})
	}
	return els
}

// segmentElements joins consecutive points; segment i uses sample i.
func segmentElements(t domain.Track) []Element {
	n := t.Len()
	if n < 2 {
		return nil
	}
	els := make([]Element, 0, n-1)
	for i := range n - 1 {
		smp := t.Samples[i]
		els = append(els, Element{
			Index:    i,
			Geometry: orb.LineString{t.Coordinates[i], t.Coordinates[i+1]},
			Color:    domain.SampleColor(smp),
			Sample:   smp,
			Tooltip:  tooltip(smp),
		})
	}
	return els
}

func tooltip(smp domain.Sample) string {
	return fmt.Sprintf("%s\nVorticity: %s ×10⁻⁵ s⁻¹", smp.Time, domain.FormatStrength(smp.Strength))
}

// Click handles a click on one element. The click stops at its group, so it
// never reaches the map background. Clicking the highlighted group changes
// nothing; clicking any other group moves the highlight there and dims the
// rest. The select callback runs after the surface lock is released.
func (s *Surface) Click(groupID, index int) error {
	s.mu.Lock()
	if groupID < 0 || groupID >= len(s.groups) {
		s.mu.Unlock()
		return fmt.Errorf("%w: group %d", ErrNoSuchElement, groupID)
	}
	g := s.groups[groupID]
	if index < 0 || index >= len(g.Elements) {
		s.mu.Unlock()
		return fmt.Errorf("%w: group %d element %d", ErrNoSuchElement, groupID, index)
	}
	el := g.Elements[index]
	s.highlightLocked(g)

	cb := s.onSelect
	props := g.Props
	s.mu.Unlock()

	s.metrics.TrackSelections.Inc()
	if cb != nil {
		cb(el.Sample.Time, domain.FormatStrength(el.Sample.Strength), &props)
	}
	return nil
}

func (s *Surface) highlightLocked(g *Group) {
	if s.highlighted == g.ID {
		return
	}
	if s.highlighted != noHighlight {
		s.groups[s.highlighted].State = domain.StateDefault
	}
	for _, other := range s.groups {
		if other != g {
			other.State = domain.StateDimmed
		}
	}
	g.State = domain.StateHighlighted
	s.highlighted = g.ID
}

// ResetHighlight returns every group to its default style. Without an active
// highlight it does nothing.
func (s *Surface) ResetHighlight() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.highlighted == noHighlight {
		return
	}
	for _, g := range s.groups {
		g.State = domain.StateDefault
	}
	s.highlighted = noHighlight
	s.metrics.HighlightResets.Inc()
}

// Highlighted returns the highlighted group ID, if any.
func (s *Surface) Highlighted() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highlighted, s.highlighted != noHighlight
}

// Mode returns the mode of the last render.
func (s *Surface) Mode() domain.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Viewport returns the current padded view bounds.
func (s *Surface) Viewport() orb.Bound {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Groups returns a snapshot of the rendered groups.
func (s *Surface) Groups() []Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = *g
	}
	return out
}
