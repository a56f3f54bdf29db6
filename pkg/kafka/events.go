package kafka

import (
	"context"
	"time"

	"furnace/pkg/model"
)

const (
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventBookingDeleted = "booking.deleted"

	bookingSchemaVersion = "1"
)

// BookingEvent is the payload published after every accepted write. Booking
// is nil for deletions.
type BookingEvent struct {
	Type       string         `json:"type"`
	BookingID  string         `json:"bookingId"`
	Booking    *model.Booking `json:"booking,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// EventPublisher delivers booking events to downstream consumers.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event BookingEvent) error
	Close() error
}

// BookingPublisher publishes booking events through a Producer, keyed by
// booking id so events for one booking stay ordered.
type BookingPublisher struct {
	producer *Producer
	source   string
}

func NewBookingPublisher(producer *Producer, source string) *BookingPublisher {
	return &BookingPublisher{producer: producer, source: source}
}

func (p *BookingPublisher) PublishBookingEvent(ctx context.Context, event BookingEvent) error {
	msg, err := NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(bookingSchemaVersion).
		WithSource(p.source).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *BookingPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher discards events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishBookingEvent(context.Context, BookingEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
