package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// AllMonths is the filter value that disables month filtering.
const AllMonths = "all"

// ErrInvalidMonth is returned for month filter values outside "all" and 1..12.
var ErrInvalidMonth = errors.New("invalid month filter")

// MonthFilter selects tracks by month membership. The zero value matches every track.
type MonthFilter struct {
	month int // 0 means all
}

// ParseMonthFilter accepts "all" (or the empty string) and "1".."12".
func ParseMonthFilter(s string) (MonthFilter, error) {
	if s == "" || s == AllMonths {
		return MonthFilter{}, nil
	}
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return MonthFilter{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthFilter{month: m}, nil
}

// All reports whether the filter passes every track.
func (f MonthFilter) All() bool { return f.month == 0 }

// Month returns the selected month, or 0 for all.
func (f MonthFilter) Month() int { return f.month }

// Matches is the one membership predicate used for both drawing and counting.
func (f MonthFilter) Matches(t Track) bool {
	return f.month == 0 || t.InMonth(f.month)
}

// Apply returns the tracks that pass the filter, preserving order.
func (f MonthFilter) Apply(tracks []Track) []Track {
	if f.All() {
		return tracks
	}
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (f MonthFilter) String() string {
	if f.month == 0 {
		return AllMonths
	}
	return strconv.Itoa(f.month)
}

// Label is the human-readable form, e.g. "August" or "all months".
func (f MonthFilter) Label() string {
	if f.month == 0 {
		return "all months"
	}
	return time.Month(f.month).String()
}
