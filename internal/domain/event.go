package domain

import (
	"context"
	"fmt"
	"time"
)

// Interaction event types.
const (
	EventYearLoaded     = "year_loaded"
	EventYearLoadFailed = "year_load_failed"
	EventTrackSelected  = "track_selected"
	EventHighlightReset = "highlight_reset"
)

// InteractionEvent records a user-visible state change of the map.
type InteractionEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Year       string    `json:"year,omitempty"`
	Month      string    `json:"month,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	Tracks     int       `json:"tracks,omitempty"`
	SystemID   string    `json:"system_id,omitempty"`
	Date       string    `json:"date,omitempty"`
	Value      string    `json:"value,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewInteractionEvent stamps an event of the given type with the package clock.
func NewInteractionEvent(eventType, year string) InteractionEvent {
	now := clock.Now().UTC()
	return InteractionEvent{
		ID:         fmt.Sprintf("%s-%s-%d", eventType, year, now.UnixNano()),
		Type:       eventType,
		Year:       year,
		OccurredAt: now,
	}
}

// EventSink receives interaction events. Implementations must not block the caller for long.
type EventSink interface {
	Publish(ctx context.Context, event InteractionEvent) error
}
