package contracts

import (
	"context"
	"time"

	"furnace/pkg/model"
)

// BookingStore is the capability set shared by every booking backend, local
// or remote. Errors are *errors.AppError values.
type BookingStore interface {
	// List returns bookings that intersect the calendar day containing day.
	// An empty day is an empty slice, never an error.
	List(ctx context.Context, day time.Time) ([]*model.Booking, error)
	Create(ctx context.Context, booking *model.NewBooking) (*model.Booking, error)
	Update(ctx context.Context, update *model.BookingUpdate) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
}
