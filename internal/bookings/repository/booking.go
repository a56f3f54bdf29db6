package repository

import (
	"context"
	"time"

	"furnace/pkg/interval"
	"furnace/pkg/model"
)

// BookingRepository persists the booking collection. Implementations are
// safe for concurrent use. Returned bookings are copies the caller may keep.
type BookingRepository interface {
	FindAll(ctx context.Context) ([]*model.Booking, error)
	// FindOverlapping returns bookings that intersect window, sorted by start.
	FindOverlapping(ctx context.Context, window interval.Interval) ([]*model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Insert(ctx context.Context, booking *model.Booking) error
	Replace(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// withTimeout bounds ctx by timeout without extending an earlier deadline.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func overlapping(bookings []*model.Booking, window interval.Interval) []*model.Booking {
	out := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if interval.Overlaps(b.Interval(), window) {
			out = append(out, b)
		}
	}
	model.SortByStart(out)
	return out
}
