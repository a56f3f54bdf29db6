package model

import (
	"furnace/pkg/interval"
	"slices"
	"strings"
	"time"
)

type Booking struct {
	ID            string    `json:"id"`
	StartDateTime DateTime  `json:"startDateTime"`
	EndDateTime   DateTime  `json:"endDateTime"`
	Name          string    `json:"name"`
	Sample        string    `json:"sample"`
	Gas           string    `json:"gas"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (b *Booking) Interval() interval.Interval {
	return interval.Interval{Start: b.StartDateTime.Time, End: b.EndDateTime.Time}
}

func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// NewBooking is a create submission. ID and CreatedAt are assigned by the store.
type NewBooking struct {
	StartDateTime DateTime `json:"startDateTime"`
	EndDateTime   DateTime `json:"endDateTime"`
	Name          string   `json:"name" validate:"notblank,max=120"`
	Sample        string   `json:"sample" validate:"notblank,max=200"`
	Gas           string   `json:"gas" validate:"notblank,max=120"`
	Notes         string   `json:"notes,omitempty" validate:"max=2000"`
}

func (nb *NewBooking) Interval() interval.Interval {
	return interval.Interval{Start: nb.StartDateTime.Time, End: nb.EndDateTime.Time}
}

// BookingUpdate replaces every mutable field of the booking identified by ID.
type BookingUpdate struct {
	ID string `json:"id" validate:"notblank"`
	NewBooking
}

// Apply returns a copy of existing carrying the update's fields. ID and
// CreatedAt always come from existing.
func (u *BookingUpdate) Apply(existing *Booking) *Booking {
	merged := existing.Clone()
	merged.StartDateTime = u.StartDateTime
	merged.EndDateTime = u.EndDateTime
	merged.Name = u.Name
	merged.Sample = u.Sample
	merged.Gas = u.Gas
	merged.Notes = u.Notes
	return merged
}

// SortByStart orders bookings by start time, breaking ties by ID.
func SortByStart(bookings []*Booking) {
	slices.SortFunc(bookings, func(a, b *Booking) int {
		if c := a.StartDateTime.Compare(b.StartDateTime.Time); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
