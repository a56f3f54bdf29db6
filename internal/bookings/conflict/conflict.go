// Package conflict decides whether a candidate time range collides with
// bookings already in the collection.
package conflict

import (
	"furnace/pkg/interval"
	"furnace/pkg/model"
)

// Check reports whether candidate overlaps any booking in existing other than
// the one whose ID equals excludeID. An empty excludeID excludes nothing.
func Check(candidate interval.Interval, existing []*model.Booking, excludeID string) bool {
	return Find(candidate, existing, excludeID) != nil
}

// Find returns the earliest-starting booking that overlaps candidate, or nil.
func Find(candidate interval.Interval, existing []*model.Booking, excludeID string) *model.Booking {
	var first *model.Booking
	for _, b := range existing {
		if b == nil {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !interval.Overlaps(candidate, b.Interval()) {
			continue
		}
		if first == nil || before(b, first) {
			first = b
		}
	}
	return first
}

// All returns every booking that overlaps candidate, in start order.
func All(candidate interval.Interval, existing []*model.Booking, excludeID string) []*model.Booking {
	out := []*model.Booking{}
	for _, b := range existing {
		if b == nil || (excludeID != "" && b.ID == excludeID) {
			continue
		}
		if interval.Overlaps(candidate, b.Interval()) {
			out = append(out, b)
		}
	}
	model.SortByStart(out)
	return out
}

func before(a, b *model.Booking) bool {
	if !a.StartDateTime.Equal(b.StartDateTime.Time) {
		return a.StartDateTime.Before(b.StartDateTime.Time)
	}
	return a.ID < b.ID
}
