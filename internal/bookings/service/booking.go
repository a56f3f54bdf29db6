package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"furnace/internal/bookings/conflict"
	bookingserrors "furnace/internal/bookings/errors"
	"furnace/internal/bookings/repository"
	"furnace/internal/bookings/validator"
	"furnace/pkg/contracts"
	apperrors "furnace/pkg/errors"
	"furnace/pkg/interval"
	"furnace/pkg/kafka"
	"furnace/pkg/logger"
	"furnace/pkg/metrics"
	"furnace/pkg/model"
	"furnace/pkg/sanitizer"

	"github.com/google/uuid"
)

const (
	MsgCreated = "Booking created"
	MsgUpdated = "Booking updated"
	MsgDeleted = "Booking deleted"

	MsgCreateConflict = "Time slot conflict detected across dates."
	MsgUpdateConflict = "Update failed: New range overlaps with another booking."

	actionCreate = string(model.ActionCreate)
	actionUpdate = string(model.ActionUpdate)
	actionDelete = string(model.ActionDelete)
)

// BookingService is the collection-backed store. It is the single writer for
// its repository: every check-then-commit runs under one lock.
type BookingService interface {
	contracts.BookingStore
	Ping(ctx context.Context) error
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	publisher kafka.EventPublisher
	log       *logger.Logger

	mu    sync.Mutex
	newID func() string
	now   func() time.Time
}

var _ contracts.BookingStore = (*bookingService)(nil)

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	publisher kafka.EventPublisher,
	log *logger.Logger,
) BookingService {
	if publisher == nil {
		publisher = kafka.NopPublisher{}
	}
	return &bookingService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		log:       log,
		newID:     func() string { return uuid.New().String() },
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *bookingService) List(ctx context.Context, day time.Time) ([]*model.Booking, error) {
	window := interval.Day(model.NewDateTime(day).Time)

	bookings, err := s.repo.FindOverlapping(ctx, window)
	if err != nil {
		s.log.Error("Failed to list bookings", "day", window.Start.Format(model.DateLayout), "error", err)
		metrics.IncStoreError("list")
		return []*model.Booking{}, s.storeError("Failed to load bookings", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

func (s *bookingService) Create(ctx context.Context, nb *model.NewBooking) (*model.Booking, error) {
	candidate := sanitize(nb)
	if err := s.validator.Validate(candidate); err != nil {
		return nil, s.rejected(actionCreate, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to load bookings for conflict check", "error", err)
		metrics.IncStoreError("find_all")
		return nil, s.storeError("Failed to load bookings", err)
	}

	if clashes := conflict.All(candidate.Interval(), all, ""); len(clashes) > 0 {
		return nil, s.conflicted(actionCreate, MsgCreateConflict, clashes)
	}

	booking := &model.Booking{
		ID:            s.newID(),
		StartDateTime: candidate.StartDateTime,
		EndDateTime:   candidate.EndDateTime,
		Name:          candidate.Name,
		Sample:        candidate.Sample,
		Gas:           candidate.Gas,
		Notes:         candidate.Notes,
		CreatedAt:     s.now().Truncate(time.Millisecond),
	}

	if err := s.repo.Insert(ctx, booking); err != nil {
		s.log.Error("Failed to create booking", "id", booking.ID, "error", err)
		metrics.IncStoreError("insert")
		metrics.IncBookingWrite(actionCreate, metrics.OutcomeError)
		return nil, s.storeError("Failed to create booking", err)
	}

	s.log.Info("Booking created successfully",
		"id", booking.ID,
		"start", booking.StartDateTime.String(),
		"end", booking.EndDateTime.String(),
		"name", booking.Name,
	)
	metrics.IncBookingWrite(actionCreate, metrics.OutcomeSuccess)
	s.publish(ctx, kafka.EventBookingCreated, booking.ID, booking)

	return booking.Clone(), nil
}

func (s *bookingService) Update(ctx context.Context, update *model.BookingUpdate) (*model.Booking, error) {
	candidate := &model.BookingUpdate{ID: update.ID, NewBooking: *sanitize(&update.NewBooking)}
	if err := s.validator.ValidateUpdate(candidate); err != nil {
		return nil, s.rejected(actionUpdate, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.FindByID(ctx, candidate.ID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			s.log.Warn("Update rejected: booking not found", "id", candidate.ID)
			metrics.IncBookingWrite(actionUpdate, metrics.OutcomeRejected)
			return nil, apperrors.NotFoundWithID("Booking", candidate.ID)
		}
		s.log.Error("Failed to load booking for update", "id", candidate.ID, "error", err)
		metrics.IncStoreError("find_by_id")
		return nil, s.storeError("Failed to load booking", err)
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		s.log.Error("Failed to load bookings for conflict check", "error", err)
		metrics.IncStoreError("find_all")
		return nil, s.storeError("Failed to load bookings", err)
	}

	if clashes := conflict.All(candidate.Interval(), all, candidate.ID); len(clashes) > 0 {
		return nil, s.conflicted(actionUpdate, MsgUpdateConflict, clashes)
	}

	merged := candidate.Apply(existing)
	if err := s.repo.Replace(ctx, merged); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			metrics.IncBookingWrite(actionUpdate, metrics.OutcomeRejected)
			return nil, apperrors.NotFoundWithID("Booking", candidate.ID)
		}
		s.log.Error("Failed to update booking", "id", candidate.ID, "error", err)
		metrics.IncStoreError("replace")
		metrics.IncBookingWrite(actionUpdate, metrics.OutcomeError)
		return nil, s.storeError("Failed to update booking", err)
	}

	s.log.Info("Booking updated successfully",
		"id", merged.ID,
		"start", merged.StartDateTime.String(),
		"end", merged.EndDateTime.String(),
	)
	metrics.IncBookingWrite(actionUpdate, metrics.OutcomeSuccess)
	s.publish(ctx, kafka.EventBookingUpdated, merged.ID, merged)

	return merged.Clone(), nil
}

// Delete removes the booking. Deleting an id that does not exist succeeds.
func (s *bookingService) Delete(ctx context.Context, id string) error {
	if sanitizer.TrimAndNormalize(id) == "" {
		metrics.IncBookingWrite(actionDelete, metrics.OutcomeRejected)
		return apperrors.Validation("Booking ID cannot be empty", map[string]any{"id": "id is required"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		s.log.Debug("Delete of unknown booking treated as success", "id", id)
		metrics.IncBookingWrite(actionDelete, metrics.OutcomeSuccess)
		return nil
	case err != nil:
		s.log.Error("Failed to delete booking", "id", id, "error", err)
		metrics.IncStoreError("delete")
		metrics.IncBookingWrite(actionDelete, metrics.OutcomeError)
		return s.storeError("Failed to delete booking", err)
	}

	s.log.Info("Booking deleted successfully", "id", id)
	metrics.IncBookingWrite(actionDelete, metrics.OutcomeSuccess)
	s.publish(ctx, kafka.EventBookingDeleted, id, nil)
	return nil
}

func (s *bookingService) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return s.storeError("Booking storage is unavailable", err)
	}
	return nil
}

func (s *bookingService) rejected(action string, err error) error {
	metrics.IncBookingWrite(action, metrics.OutcomeRejected)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		s.log.Warn("Booking rejected by validation", "action", action, "errors", verrs.Error())
		return apperrors.Validation(verrs.Summary(), verrs.Fields())
	}
	return apperrors.Internal("Failed to validate booking", err)
}

// conflicted reports the earliest clash in detail and lists every clashing id.
// clashes must be non-empty and sorted by start.
func (s *bookingService) conflicted(action, message string, clashes []*model.Booking) error {
	existing := clashes[0]
	ids := make([]string, len(clashes))
	for i, b := range clashes {
		ids[i] = b.ID
	}

	s.log.Warn("Booking rejected by conflict",
		"action", action,
		"conflicts_with", existing.ID,
		"conflict_count", len(clashes),
		"existing_start", existing.StartDateTime.String(),
		"existing_end", existing.EndDateTime.String(),
	)
	metrics.IncBookingConflict(action)
	metrics.IncBookingWrite(action, metrics.OutcomeConflict)
	return apperrors.Conflict(message).WithDetails(map[string]any{
		"conflictingId":    existing.ID,
		"conflictingStart": existing.StartDateTime.String(),
		"conflictingEnd":   existing.EndDateTime.String(),
		"conflictingIds":   ids,
	})
}

func (s *bookingService) storeError(message string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Booking storage did not respond in time")
	case errors.Is(err, bookingserrors.ErrCorruptRecord), errors.Is(err, bookingserrors.ErrDuplicateID):
		return apperrors.Internal(message, err)
	default:
		return apperrors.Transport(message, err)
	}
}

// publish is best effort: the write has already been committed.
func (s *bookingService) publish(ctx context.Context, eventType, id string, booking *model.Booking) {
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  id,
		Booking:    booking.Clone(),
		OccurredAt: s.now(),
	}
	if err := s.publisher.PublishBookingEvent(context.WithoutCancel(ctx), event); err != nil {
		s.log.Warn("Failed to publish booking event", "type", eventType, "id", id, "error", err)
	}
}

func sanitize(nb *model.NewBooking) *model.NewBooking {
	c := *nb
	c.Name = sanitizer.NormalizeName(c.Name)
	c.Sample = sanitizer.NormalizeSample(c.Sample)
	c.Gas = sanitizer.NormalizeGas(c.Gas)
	c.Notes = sanitizer.NormalizeNotes(c.Notes)
	return &c
}
