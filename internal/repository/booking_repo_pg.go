package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// Reserve inserts an active booking and takes one seat from the flight in a
	// single transaction. On success b is filled in and b.Flight holds the
	// flight as it was committed.
	Reserve(ctx context.Context, b *domain.Booking) error
	// Cancel moves a booking to Canceled and returns its seat to the flight.
	Cancel(ctx context.Context, id int64) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
}

var bookingJoinColumns = []string{
	"b.id", "b.flight_id", "b.user_id", "b.passenger_name", "b.passport_number",
	"b.status", "b.created_at", "b.updated_at", "u.email",
	"f.id", "f.flight_number", "f.airline", "f.origin", "f.destination",
	"f.departure_time", "f.arrival_time", "f.total_seats", "f.available_seats",
	"f.created_at", "f.updated_at",
}

type PGBookingRepository struct {
	db   *pgxpool.Pool
	sb   sq.StatementBuilderType
	opts options
}

func NewBookingRepository(db *pgxpool.Pool, opts ...Option) BookingRepository {
	return &PGBookingRepository{
		db:   db,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		opts: buildOptions(opts),
	}
}

func (r *PGBookingRepository) Reserve(ctx context.Context, b *domain.Booking) error {
	tx, err := beginLedgerTx(ctx, r.db, r.opts.lockTimeout)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	flight, err := lockFlight(ctx, tx, b.FlightID)
	if err != nil {
		return err
	}
	if !flight.SeatsConsistent() {
		return fmt.Errorf("flight %d has available_seats=%d total_seats=%d: %w",
			flight.ID, flight.AvailableSeats, flight.TotalSeats, domain.ErrInvariantViolation)
	}
	if flight.AvailableSeats == 0 {
		return fmt.Errorf("flight %d: %w", flight.ID, domain.ErrCapacityExceeded)
	}

	var taken bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM bookings WHERE flight_id = $1 AND passport_number = $2
	)`, b.FlightID, b.PassportNumber).Scan(&taken); err != nil {
		return mapError("check passport", err)
	}
	if taken {
		return fmt.Errorf("flight %d: %w", flight.ID, domain.ErrDuplicatePassport)
	}

	b.Status = domain.BookingStatusBooked
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (flight_id, user_id, passenger_name, passport_number, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`, b.FlightID, b.UserID, b.PassengerName, b.PassportNumber, b.Status).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapError("insert booking", err)
	}

	err = tx.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats - 1, updated_at = now()
		WHERE id = $1 AND available_seats > 0
		RETURNING available_seats, updated_at`, b.FlightID).
		Scan(&flight.AvailableSeats, &flight.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("flight %d: %w", flight.ID, domain.ErrCapacityExceeded)
	}
	if err != nil {
		return mapError("take seat", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapError("commit reserve", err)
	}
	b.Flight = flight
	return nil
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id int64) (*domain.Booking, error) {
	tx, err := beginLedgerTx(ctx, r.db, r.opts.lockTimeout)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var flightID int64
	if err := tx.QueryRow(ctx, `SELECT flight_id FROM bookings WHERE id = $1`, id).Scan(&flightID); err != nil {
		return nil, mapError(fmt.Sprintf("get booking %d", id), err)
	}

	// Lock order is flight, then booking.
	flight, err := lockFlight(ctx, tx, flightID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	var b domain.Booking
	if err := tx.QueryRow(ctx, `SELECT b.id, b.flight_id, b.user_id, b.passenger_name, b.passport_number,
		b.status, b.created_at, b.updated_at, u.email
		FROM bookings b JOIN users u ON u.id = b.user_id
		WHERE b.id = $1 FOR UPDATE OF b`, id).
		Scan(&b.ID, &b.FlightID, &b.UserID, &b.PassengerName, &b.PassportNumber,
			&b.Status, &b.CreatedAt, &b.UpdatedAt, &b.OwnerEmail); err != nil {
		return nil, mapError(fmt.Sprintf("lock booking %d", id), err)
	}
	if b.Status == domain.BookingStatusCanceled {
		return nil, fmt.Errorf("booking %d: %w", id, domain.ErrAlreadyCanceled)
	}

	if err := tx.QueryRow(ctx, `UPDATE bookings SET status = $1, updated_at = now()
		WHERE id = $2 RETURNING status, updated_at`, domain.BookingStatusCanceled, id).
		Scan(&b.Status, &b.UpdatedAt); err != nil {
		return nil, mapError("cancel booking", err)
	}

	if flight != nil {
		if flight.AvailableSeats >= flight.TotalSeats {
			return nil, fmt.Errorf("flight %d already has all %d seats free: %w",
				flight.ID, flight.TotalSeats, domain.ErrInvariantViolation)
		}
		if err := tx.QueryRow(ctx, `UPDATE flights SET available_seats = available_seats + 1, updated_at = now()
			WHERE id = $1 RETURNING available_seats, updated_at`, flight.ID).
			Scan(&flight.AvailableSeats, &flight.UpdatedAt); err != nil {
			return nil, mapError("return seat", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit cancel", err)
	}
	b.Flight = flight
	return &b, nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	sqlStr, args, err := r.joined().Where(sq.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking sql: %w", err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return nil, mapError(fmt.Sprintf("get booking %d", id), err)
	}
	return b, nil
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	sqlStr, args, err := r.joined().
		Where(sq.Eq{"b.user_id": userID}).
		OrderBy("b.created_at DESC", "b.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list bookings sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError("list bookings", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError("scan booking", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list bookings", err)
	}
	return bookings, nil
}

func (r *PGBookingRepository) joined() sq.SelectBuilder {
	return r.sb.
		Select(bookingJoinColumns...).
		From("bookings b").
		Join("users u ON u.id = b.user_id").
		Join("flights f ON f.id = b.flight_id")
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var f domain.Flight
	if err := row.Scan(
		&b.ID, &b.FlightID, &b.UserID, &b.PassengerName, &b.PassportNumber,
		&b.Status, &b.CreatedAt, &b.UpdatedAt, &b.OwnerEmail,
		&f.ID, &f.FlightNumber, &f.Airline, &f.Origin, &f.Destination,
		&f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats,
		&f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Flight = &f
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
