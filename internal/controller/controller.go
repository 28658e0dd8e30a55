// Package controller holds the application state behind the map: the loaded
// year, the filter controls and the status/info panels shown to the user.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/aew-track-map/internal/domain"
	"github.com/couchcryptid/aew-track-map/internal/observability"
	"github.com/couchcryptid/aew-track-map/internal/render"
)

var (
	// ErrInvalidYear is returned for year values that are not four digits.
	ErrInvalidYear = errors.New("invalid year")

	// ErrSuperseded is returned when a load completed after a newer load was
	// issued. Its result has been discarded.
	ErrSuperseded = errors.New("load superseded by a newer request")
)

var yearRe = regexp.MustCompile(`^\d{4}$`)

// placeholder is shown for missing cyclone fields.
const placeholder = "—"

// vorticityUnit is appended to the formatted strength in the info panel.
const vorticityUnit = "×10⁻⁵ s⁻¹"

// Fetcher retrieves the tracks for one year.
type Fetcher interface {
	FetchYear(ctx context.Context, year string) ([]domain.Track, error)
}

// Surface is the map rendering module driven by the controller.
type Surface interface {
	Clear()
	Render(tracks []domain.Track, filter domain.MonthFilter, mode domain.Mode, onSelect render.SelectFunc) render.Result
	Click(groupID, index int) error
	ResetHighlight()
	Highlighted() (int, bool)
}

// Notifier receives a snapshot after every view change. Implementations must not block.
type Notifier interface {
	Notify(view View)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(view View)

func (f NotifierFunc) Notify(view View) { f(view) }

// Option configures optional collaborators.
type Option func(*Controller)

// WithNotifier pushes view snapshots to n.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithEventSink publishes interaction events to sink.
func WithEventSink(sink domain.EventSink) Option {
	return func(c *Controller) { c.sink = sink }
}

// Controller wires the filter controls to data loading and rendering.
type Controller struct {
	mu       sync.Mutex
	surface  Surface
	fetcher  Fetcher
	notifier Notifier
	sink     domain.EventSink
	logger   *slog.Logger
	metrics  *observability.Metrics

	tracks []domain.Track
	year   string
	loaded bool
	month  domain.MonthFilter
	mode   domain.Mode
	seq    uint64

	status string
	count  string
	shown  int
	info   InfoPanel

	attempted atomic.Bool
}

// New creates a controller over an already constructed surface.
func New(surface Surface, fetcher Fetcher, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Controller {
	c := &Controller{
		surface: surface,
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckReadiness returns nil once the first dataset load has completed,
// whatever its outcome.
func (c *Controller) CheckReadiness(_ context.Context) error {
	if !c.attempted.Load() {
		return errors.New("initial dataset load has not completed")
	}
	return nil
}

// LoadDataForYear replaces the dataset with the given year's tracks. The map
// is cleared and the data marked unloaded before the fetch starts; only the
// most recently issued load may apply its result.
func (c *Controller) LoadDataForYear(ctx context.Context, year string) error {
	if !yearRe.MatchString(year) {
		c.mu.Lock()
		c.status = fmt.Sprintf("Invalid year %q", year)
		c.notifyLocked()
		c.mu.Unlock()
		c.metrics.DatasetLoads.WithLabelValues("invalid_year").Inc()
		return fmt.Errorf("%w: %q", ErrInvalidYear, year)
	}

	c.mu.Lock()
	c.seq++
	token := c.seq
	c.status = fmt.Sprintf("Loading data for %s…", year)
	c.info.Visible = false
	c.surface.Clear()
	c.tracks = nil
	c.loaded = false
	c.count = ""
	c.shown = 0
	c.notifyLocked()
	c.mu.Unlock()

	c.logger.Info("loading dataset", "year", year, "seq", token)
	start := time.Now()
	tracks, err := c.fetcher.FetchYear(ctx, year)

	c.mu.Lock()
	if token != c.seq {
		c.mu.Unlock()
		c.metrics.StaleResponses.Inc()
		c.logger.Info("discarding stale dataset response", "year", year, "seq", token)
		return fmt.Errorf("%w: %s", ErrSuperseded, year)
	}
	c.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	c.attempted.Store(true)

	if err != nil {
		outcome, status := describeLoadError(year, err)
		c.status = status
		c.notifyLocked()
		c.mu.Unlock()

		c.metrics.DatasetLoads.WithLabelValues(outcome).Inc()
		c.logger.Error("dataset load failed", "year", year, "outcome", outcome, "error", err)

		ev := domain.NewInteractionEvent(domain.EventYearLoadFailed, year)
		ev.Detail = status
		c.publish(ctx, ev)
		return err
	}

	c.tracks = tracks
	c.loaded = true
	c.year = year
	c.status = fmt.Sprintf("Loaded %d tracks for %s", len(tracks), year)
	c.redrawLocked()
	c.notifyLocked()
	c.mu.Unlock()

	c.metrics.DatasetLoads.WithLabelValues("success").Inc()
	c.logger.Info("dataset loaded", "year", year, "tracks", len(tracks))

	ev := domain.NewInteractionEvent(domain.EventYearLoaded, year)
	ev.Tracks = len(tracks)
	c.publish(ctx, ev)
	return nil
}

func describeLoadError(year string, err error) (outcome, status string) {
	var statusErr *domain.StatusError
	switch {
	case errors.Is(err, domain.ErrYearNotFound):
		return "not_found", fmt.Sprintf("Year %s not found", year)
	case errors.As(err, &statusErr):
		return "status_error", fmt.Sprintf("Error loading %s: HTTP %d", year, statusErr.Code)
	default:
		return "network_error", fmt.Sprintf("Error loading %s: %v", year, err)
	}
}

// RedrawMap renders the loaded tracks under the current month and mode. It
// does nothing until a load has succeeded.
func (c *Controller) RedrawMap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.redrawLocked() {
		c.notifyLocked()
	}
}

func (c *Controller) redrawLocked() bool {
	if !c.loaded {
		return false
	}
	res := c.surface.Render(c.tracks, c.month, c.mode, c.onSelect)
	c.shown = res.Tracks
	if c.month.All() {
		c.count = fmt.Sprintf("%d tracks shown for %s (all months)", res.Tracks, c.year)
	} else {
		c.count = fmt.Sprintf("%d tracks shown for %s %s", res.Tracks, c.month.Label(), c.year)
	}
	return true
}

// onSelect is handed to the surface on every render.
func (c *Controller) onSelect(date, value string, props *domain.TrackProperties) {
	c.ShowInfo(date, value, props)

	c.mu.Lock()
	ev := domain.NewInteractionEvent(domain.EventTrackSelected, c.year)
	ev.Month = c.month.String()
	ev.Mode = c.mode.String()
	c.mu.Unlock()
	ev.Date = date
	ev.Value = value
	if props != nil {
		ev.SystemID = props.SystemID
	}
	c.publish(context.Background(), ev)
}

// ShowInfo fills the info panel for a clicked sample and makes it visible.
// The cyclone section is rebuilt from props on every call.
func (c *Controller) ShowInfo(date, value string, props *domain.TrackProperties) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := InfoPanel{
		Visible:   true,
		Date:      date,
		Vorticity: value + " " + vorticityUnit,
	}
	if props != nil {
		summary := props.Summary
		info.SystemID = props.SystemID
		info.Track = &summary
		if props.Cyclogenesis.Developed {
			info.Cyclone = &CyclonePanel{
				Name:        orPlaceholder(props.Cyclogenesis.Name),
				GenesisDate: genesisDate(props.Cyclogenesis.GenesisTime),
			}
		}
	}
	c.info = info
	c.notifyLocked()
}

// genesisDate keeps the date portion of "YYYY-MM-DD HH:MM".
func genesisDate(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return placeholder
	}
	date, _, _ := strings.Cut(ts, " ")
	date, _, _ = strings.Cut(date, "T")
	return date
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// HideInfo hides the info panel without clearing its content.
func (c *Controller) HideInfo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info.Visible = false
	c.notifyLocked()
}

// SetYear is the year selector's change handler.
func (c *Controller) SetYear(ctx context.Context, year string) error {
	return c.LoadDataForYear(ctx, year)
}

// SetMonth is the month selector's change handler.
func (c *Controller) SetMonth(value string) error {
	f, err := domain.ParseMonthFilter(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.month = f
	c.redrawLocked()
	c.notifyLocked()
	return nil
}

// SetPointsOnly is the points-only toggle's change handler.
func (c *Controller) SetPointsOnly(pointsOnly bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = domain.ModeFor(pointsOnly)
	c.redrawLocked()
	c.notifyLocked()
}

// Select forwards an element click to the surface.
func (c *Controller) Select(groupID, index int) error {
	if err := c.surface.Click(groupID, index); err != nil {
		return err
	}
	c.Notify()
	return nil
}

// MapDoubleClick hides the info panel and clears any highlight.
func (c *Controller) MapDoubleClick(ctx context.Context) {
	c.mu.Lock()
	_, had := c.surface.Highlighted()
	c.info.Visible = false
	c.surface.ResetHighlight()
	year := c.year
	c.notifyLocked()
	c.mu.Unlock()

	if had {
		c.publish(ctx, domain.NewInteractionEvent(domain.EventHighlightReset, year))
	}
}

// Notify pushes the current view to the notifier.
func (c *Controller) Notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyLocked()
}

// View returns a snapshot of the user-visible state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() View {
	v := View{
		Year:       c.year,
		Month:      c.month.String(),
		PointsOnly: c.mode == domain.ModePoints,
		Loaded:     c.loaded,
		Status:     c.status,
		Count:      c.count,
		Shown:      c.shown,
		Info:       c.info.clone(),
	}
	if id, ok := c.surface.Highlighted(); ok {
		v.Highlighted = &id
	}
	return v
}

func (c *Controller) notifyLocked() {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(c.viewLocked())
}

func (c *Controller) publish(ctx context.Context, ev domain.InteractionEvent) {
	if c.sink == nil {
		return
	}
	if err := c.sink.Publish(ctx, ev); err != nil {
		c.metrics.EventsPublished.WithLabelValues("error").Inc()
		c.logger.Warn("publish interaction event failed", "type", ev.Type, "error", err)
		return
	}
	c.metrics.EventsPublished.WithLabelValues("success").Inc()
}
