package schedule

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"furnace/internal/bookings/conflict"
	"furnace/internal/projector"
	"furnace/pkg/contracts"
	apperrors "furnace/pkg/errors"
	"furnace/pkg/interval"
	"furnace/pkg/logger"
	"furnace/pkg/model"
)

// View is the projection of one calendar day.
type View struct {
	Day      time.Time
	Bookings []*model.Booking
	Segments []projector.Segment
	Grid     []projector.HourSlot
}

// DayView tracks the selected day and the bookings last fetched for it. It
// holds no other state; every write goes through the store.
type DayView struct {
	store contracts.BookingStore
	log   *logger.Logger

	mu       sync.Mutex
	day      time.Time
	bookings []*model.Booking
}

func NewDayView(store contracts.BookingStore, log *logger.Logger) *DayView {
	return &DayView{
		store:    store,
		log:      log,
		day:      startOfDay(time.Now()),
		bookings: []*model.Booking{},
	}
}

// Select switches to day and fetches its bookings. On a failed fetch the view
// is empty and the store's error is returned alongside it.
func (d *DayView) Select(ctx context.Context, day time.Time) (*View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.day = startOfDay(day)
	return d.fetch(ctx)
}

// Refresh re-fetches the selected day.
func (d *DayView) Refresh(ctx context.Context) (*View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.fetch(ctx)
}

// Current projects the cached collection without touching the store.
func (d *DayView) Current() *View {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.project()
}

func (d *DayView) Create(ctx context.Context, nb *model.NewBooking) (*model.Booking, *View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	booking, err := d.store.Create(ctx, nb)
	if err != nil {
		return nil, d.project(), err
	}

	d.apply(booking.ID, booking)
	return booking, d.project(), nil
}

func (d *DayView) Update(ctx context.Context, update *model.BookingUpdate) (*model.Booking, *View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	booking, err := d.store.Update(ctx, update)
	if err != nil {
		return nil, d.project(), err
	}

	d.apply(booking.ID, booking)
	return booking, d.project(), nil
}

func (d *DayView) Delete(ctx context.Context, id string) (*View, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.store.Delete(ctx, id); err != nil {
		return d.project(), err
	}

	d.apply(id, nil)
	return d.project(), nil
}

// SlotRequest returns a one-hour booking skeleton starting at hour on the
// selected day. Hours that are not bookable on the grid, or whose full hour
// overlaps a cached booking, are rejected.
func (d *DayView) SlotRequest(hour int) (*model.NewBooking, error) {
	if hour < 0 || hour >= projector.HoursPerDay {
		return nil, apperrors.Validation(
			fmt.Sprintf("hour must be between 0 and %d", projector.HoursPerDay-1),
			map[string]any{"hour": hour},
		)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	start := d.day.Add(time.Duration(hour) * time.Hour)
	slot := interval.Interval{Start: start, End: start.Add(time.Hour)}

	grid := projector.Grid(d.day, d.bookings)
	if !grid[hour].Bookable || conflict.Check(slot, d.bookings, "") {
		return nil, apperrors.Validation(
			fmt.Sprintf("%02d:00 is not available", hour),
			map[string]any{"hour": hour},
		)
	}

	return &model.NewBooking{
		StartDateTime: model.NewDateTime(slot.Start),
		EndDateTime:   model.NewDateTime(slot.End),
	}, nil
}

func (d *DayView) fetch(ctx context.Context) (*View, error) {
	bookings, err := d.store.List(ctx, d.day)
	if err != nil {
		d.log.Warn("failed to fetch day",
			"day", d.day.Format(model.DateLayout),
			"error", err,
		)
		d.bookings = []*model.Booking{}
		return d.project(), err
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	d.bookings = bookings
	return d.project(), nil
}

// apply folds a committed write into the cached collection: the entry with id
// is dropped and booking, when non-nil and on the selected day, takes its place.
func (d *DayView) apply(id string, booking *model.Booking) {
	d.bookings = slices.DeleteFunc(d.bookings, func(b *model.Booking) bool {
		return b.ID == id
	})

	if booking != nil && interval.Overlaps(booking.Interval(), interval.Day(d.day)) {
		d.bookings = append(d.bookings, booking)
	}
	model.SortByStart(d.bookings)
}

func (d *DayView) project() *View {
	segments := projector.ProjectDay(d.day, d.bookings)
	return &View{
		Day:      d.day,
		Bookings: slices.Clone(d.bookings),
		Segments: segments,
		Grid:     projector.GridFromSegments(segments),
	}
}

// startOfDay keeps t's wall-clock date and drops the zone, matching how
// booking times are stored.
func startOfDay(t time.Time) time.Time {
	return interval.Day(model.NewDateTime(t).Time).Start
}
