package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bookingserrors "furnace/internal/bookings/errors"
	"furnace/pkg/interval"
	"furnace/pkg/model"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const memoryDSN = ":memory:"

// sqliteBookingRepository stores wall-clock times as YYYY-MM-DDTHH:mm:ss text,
// which orders lexically the same way it orders in time.
type sqliteBookingRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteBookingRepository(path string, timeout time.Duration) (BookingRepository, error) {
	dsn := memoryDSN
	if path != memoryDSN {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &sqliteBookingRepository{db: db, timeout: timeout}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return repo, nil
}

func (r *sqliteBookingRepository) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			name TEXT NOT NULL,
			sample TEXT NOT NULL,
			gas TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_range ON bookings(start_time, end_time)`,
	}
	for _, q := range queries {
		if _, err := r.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const selectColumns = `SELECT id, start_time, end_time, name, sample, gas, notes, created_at FROM bookings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*model.Booking, error) {
	var (
		b                     model.Booking
		start, end, createdAt string
	)
	if err := row.Scan(&b.ID, &start, &end, &b.Name, &b.Sample, &b.Gas, &b.Notes, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if b.StartDateTime, err = model.ParseDateTime(start); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", bookingserrors.ErrCorruptRecord, b.ID, err)
	}
	if b.EndDateTime, err = model.ParseDateTime(end); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", bookingserrors.ErrCorruptRecord, b.ID, err)
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", bookingserrors.ErrCorruptRecord, b.ID, err)
	}
	return &b, nil
}

func (r *sqliteBookingRepository) query(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer rows.Close()

	bookings := []*model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return bookings, nil
}

func (r *sqliteBookingRepository) FindAll(ctx context.Context) ([]*model.Booking, error) {
	return r.query(ctx, selectColumns+` ORDER BY start_time, id`)
}

func (r *sqliteBookingRepository) FindOverlapping(ctx context.Context, window interval.Interval) ([]*model.Booking, error) {
	return r.query(ctx,
		selectColumns+` WHERE start_time < ? AND end_time > ? ORDER BY start_time, id`,
		model.NewDateTime(window.End).String(),
		model.NewDateTime(window.Start).String(),
	)
}

func (r *sqliteBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	b, err := scanBooking(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return b, nil
}

func (r *sqliteBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (id, start_time, end_time, name, sample, gas, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.ID,
		booking.StartDateTime.String(),
		booking.EndDateTime.String(),
		booking.Name,
		booking.Sample,
		booking.Gas,
		booking.Notes,
		booking.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateID, booking.ID)
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *sqliteBookingRepository) Replace(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET start_time = ?, end_time = ?, name = ?, sample = ?, gas = ?, notes = ?
		WHERE id = ?`,
		booking.StartDateTime.String(),
		booking.EndDateTime.String(),
		booking.Name,
		booking.Sample,
		booking.Gas,
		booking.Notes,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return requireAffected(result)
}

func (r *sqliteBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *sqliteBookingRepository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *sqliteBookingRepository) Close(context.Context) error {
	return r.db.Close()
}
