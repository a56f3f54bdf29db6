package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "furnace/internal/bookings/errors"
	mongomigrations "furnace/internal/migrations/mongo"
	"furnace/pkg/interval"
	"furnace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = mongomigrations.BookingsCollection

type bookingDocument struct {
	ID        string    `bson:"_id"`
	StartTime time.Time `bson:"start_time"`
	EndTime   time.Time `bson:"end_time"`
	Name      string    `bson:"name"`
	Sample    string    `bson:"sample"`
	Gas       string    `bson:"gas"`
	Notes     string    `bson:"notes,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func toDocument(b *model.Booking) *bookingDocument {
	return &bookingDocument{
		ID:        b.ID,
		StartTime: b.StartDateTime.Time,
		EndTime:   b.EndDateTime.Time,
		Name:      b.Name,
		Sample:    b.Sample,
		Gas:       b.Gas,
		Notes:     b.Notes,
		CreatedAt: b.CreatedAt,
	}
}

func (d *bookingDocument) toModel() *model.Booking {
	return &model.Booking{
		ID:            d.ID,
		StartDateTime: model.NewDateTime(d.StartTime.UTC()),
		EndDateTime:   model.NewDateTime(d.EndTime.UTC()),
		Name:          d.Name,
		Sample:        d.Sample,
		Gas:           d.Gas,
		Notes:         d.Notes,
		CreatedAt:     d.CreatedAt.UTC(),
	}
}

type mongoBookingRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoBookingRepository(client *mongo.Client, databaseName string, timeout time.Duration) BookingRepository {
	return &mongoBookingRepository{
		client:     client,
		collection: client.Database(databaseName).Collection(CollectionName),
		timeout:    timeout,
	}
}

// EnsureIndexes creates the time-range index used by overlap queries.
func EnsureIndexes(ctx context.Context, repo BookingRepository) error {
	r, ok := repo.(*mongoBookingRepository)
	if !ok {
		return nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if err := mongomigrations.EnsureIndexes(ctx, r.collection, mongomigrations.BookingsIndexes); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*bookingDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	bookings := make([]*model.Booking, 0, len(docs))
	for _, doc := range docs {
		bookings = append(bookings, doc.toModel())
	}
	return bookings, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, window interval.Interval) ([]*model.Booking, error) {
	return r.find(ctx, overlapFilter(window))
}

func overlapFilter(window interval.Interval) bson.M {
	return bson.M{
		"start_time": bson.M{"$lt": window.End},
		"end_time":   bson.M{"$gt": window.Start},
	}
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc bookingDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return doc.toModel(), nil
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, toDocument(booking)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateID, booking.ID)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) Replace(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": booking.ID}, toDocument(booking))
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.Ping(ctx, nil)
}

func (r *mongoBookingRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
