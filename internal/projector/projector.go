// Package projector lays bookings out on a single calendar day.
package projector

import (
	"slices"
	"strings"
	"time"

	"furnace/pkg/interval"
	"furnace/pkg/model"
)

const HoursPerDay = 24

// Segment is the part of one booking that falls inside a given day.
type Segment struct {
	Booking               *model.Booking `json:"booking"`
	Start                 model.DateTime `json:"start"`
	End                   model.DateTime `json:"end"`
	StartHour             int            `json:"startHour"`
	DurationHours         float64        `json:"durationHours"`
	ContinuesFromPriorDay bool           `json:"continuesFromPriorDay"`
	ContinuesIntoNextDay  bool           `json:"continuesIntoNextDay"`
}

// Covers reports whether the segment spans hour without having started in it.
func (s Segment) Covers(hour int) bool {
	h := float64(hour)
	return float64(s.StartHour) < h && h < float64(s.StartHour)+s.DurationHours
}

// HourSlot is one row of the day grid.
type HourSlot struct {
	Hour     int       `json:"hour"`
	Segments []Segment `json:"segments"`
	Occupied bool      `json:"occupied"`
	Bookable bool      `json:"bookable"`
}

// ProjectDay returns one segment per booking that intersects day, ordered by
// segment start then booking ID. Bookings outside the day are dropped.
func ProjectDay(day time.Time, bookings []*model.Booking) []Segment {
	window := interval.Day(day)
	segments := make([]Segment, 0, len(bookings))

	for _, b := range bookings {
		if b == nil {
			continue
		}
		full := b.Interval()
		if !full.Valid() || !interval.Overlaps(full, window) {
			continue
		}

		clipped := interval.Clip(full, window)
		segments = append(segments, Segment{
			Booking:               b,
			Start:                 model.NewDateTime(clipped.Start),
			End:                   model.NewDateTime(clipped.End),
			StartHour:             clipped.Start.Hour(),
			DurationHours:         clipped.Duration().Hours(),
			ContinuesFromPriorDay: full.Start.Before(window.Start),
			ContinuesIntoNextDay:  full.End.After(window.End),
		})
	}

	slices.SortFunc(segments, func(a, b Segment) int {
		if c := a.Start.Compare(b.Start.Time); c != 0 {
			return c
		}
		return strings.Compare(a.Booking.ID, b.Booking.ID)
	})
	return segments
}

// Occupied reports whether hour is covered by a segment that began in an
// earlier hour of the same day.
func Occupied(segments []Segment, hour int) bool {
	for _, s := range segments {
		if s.Covers(hour) {
			return true
		}
	}
	return false
}

// StartingAt returns the segments whose start falls in hour.
func StartingAt(segments []Segment, hour int) []Segment {
	out := []Segment{}
	for _, s := range segments {
		if s.StartHour == hour {
			out = append(out, s)
		}
	}
	return out
}

// Grid builds the 24 hourly rows for day. An hour is bookable when nothing
// starts in it and nothing earlier spills over it.
func Grid(day time.Time, bookings []*model.Booking) []HourSlot {
	return GridFromSegments(ProjectDay(day, bookings))
}

func GridFromSegments(segments []Segment) []HourSlot {
	grid := make([]HourSlot, HoursPerDay)
	for hour := range HoursPerDay {
		starting := StartingAt(segments, hour)
		occupied := Occupied(segments, hour)
		grid[hour] = HourSlot{
			Hour:     hour,
			Segments: starting,
			Occupied: occupied,
			Bookable: len(starting) == 0 && !occupied,
		}
	}
	return grid
}
