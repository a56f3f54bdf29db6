package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingserrors "furnace/internal/bookings/errors"
	"furnace/pkg/interval"
	"furnace/pkg/model"

	"github.com/redis/go-redis/v9"
)

const maxTxRetries = 10

// redisBookingRepository keeps the whole collection as one JSON array under a
// single key. Writes use WATCH/MULTI so concurrent writers never lose updates.
type redisBookingRepository struct {
	client  redis.UniversalClient
	key     string
	timeout time.Duration
}

func NewRedisBookingRepository(client redis.UniversalClient, key string, timeout time.Duration) BookingRepository {
	return &redisBookingRepository{
		client:  client,
		key:     key,
		timeout: timeout,
	}
}

func (r *redisBookingRepository) load(ctx context.Context, c redis.Cmdable) ([]*model.Booking, error) {
	raw, err := c.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []*model.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(raw, &bookings); err != nil {
		return nil, fmt.Errorf("%w: key %s: %v", bookingserrors.ErrCorruptRecord, r.key, err)
	}
	for i, b := range bookings {
		if b == nil {
			return nil, fmt.Errorf("%w: key %s: null entry at index %d", bookingserrors.ErrCorruptRecord, r.key, i)
		}
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

// mutate applies fn to the stored collection and writes it back atomically.
func (r *redisBookingRepository) mutate(ctx context.Context, fn func([]*model.Booking) ([]*model.Booking, error)) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	txf := func(tx *redis.Tx) error {
		bookings, err := r.load(ctx, tx)
		if err != nil {
			return err
		}
		updated, err := fn(bookings)
		if err != nil {
			return err
		}
		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to encode bookings: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, data, 0)
			return nil
		})
		return err
	}

	for range maxTxRetries {
		err := r.client.Watch(ctx, txf, r.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to write bookings: too much contention on %s", r.key)
}

func (r *redisBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	bookings, err := r.load(ctx, r.client)
	if err != nil {
		return nil, err
	}
	model.SortByStart(bookings)
	return bookings, nil
}

func (r *redisBookingRepository) FindOverlapping(ctx context.Context, window interval.Interval) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	bookings, err := r.load(ctx, r.client)
	if err != nil {
		return nil, err
	}
	return overlapping(bookings, window), nil
}

func (r *redisBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	bookings, err := r.load(ctx, r.client)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *redisBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	return r.mutate(ctx, func(bookings []*model.Booking) ([]*model.Booking, error) {
		for _, b := range bookings {
			if b.ID == booking.ID {
				return nil, fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateID, booking.ID)
			}
		}
		return append(bookings, booking.Clone()), nil
	})
}

func (r *redisBookingRepository) Replace(ctx context.Context, booking *model.Booking) error {
	return r.mutate(ctx, func(bookings []*model.Booking) ([]*model.Booking, error) {
		for i, b := range bookings {
			if b.ID == booking.ID {
				bookings[i] = booking.Clone()
				return bookings, nil
			}
		}
		return nil, bookingserrors.ErrNotFound
	})
}

func (r *redisBookingRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(ctx, func(bookings []*model.Booking) ([]*model.Booking, error) {
		kept := bookings[:0]
		found := false
		for _, b := range bookings {
			if b.ID == id {
				found = true
				continue
			}
			kept = append(kept, b)
		}
		if !found {
			return nil, bookingserrors.ErrNotFound
		}
		return kept, nil
	})
}

func (r *redisBookingRepository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Ping(ctx).Err()
}

func (r *redisBookingRepository) Close(context.Context) error {
	return r.client.Close()
}
