package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	List(ctx context.Context, skip, limit int) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	// Delete removes the flight together with its bookings and returns how many bookings went with it.
	Delete(ctx context.Context, id int64) (int64, error)
}

var flightColumns = []string{
	"id", "flight_number", "airline", "origin", "destination",
	"departure_time", "arrival_time", "total_seats", "available_seats",
	"created_at", "updated_at",
}

type PGFlightRepository struct {
	db   *pgxpool.Pool
	sb   sq.StatementBuilderType
	opts options
}

func NewFlightRepository(db *pgxpool.Pool, opts ...Option) FlightRepository {
	return &PGFlightRepository{
		db:   db,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		opts: buildOptions(opts),
	}
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	query := r.sb.
		Insert("flights").
		Columns(
			"flight_number",
			"airline",
			"origin",
			"destination",
			"departure_time",
			"arrival_time",
			"total_seats",
			"available_seats",
		).
		Values(
			flight.FlightNumber,
			flight.Airline,
			flight.Origin,
			flight.Destination,
			flight.DepartureTime,
			flight.ArrivalTime,
			flight.TotalSeats,
			flight.TotalSeats,
		).
		Suffix("RETURNING id, available_seats, created_at, updated_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert flight sql: %w", err)
	}

	if err := r.db.QueryRow(ctx, sqlStr, args...).
		Scan(&flight.ID, &flight.AvailableSeats, &flight.CreatedAt, &flight.UpdatedAt); err != nil {
		return mapError("insert flight", err)
	}
	return nil
}

func (r *PGFlightRepository) List(ctx context.Context, skip, limit int) ([]domain.Flight, error) {
	query := r.sb.
		Select(flightColumns...).
		From("flights").
		OrderBy("departure_time", "id").
		Offset(uint64(skip)).
		Limit(uint64(limit))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list flights sql: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, mapError("list flights", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		var f domain.Flight
		if err := scanFlight(rows, &f); err != nil {
			return nil, mapError("scan flight", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list flights", err)
	}
	return flights, nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	sqlStr, args, err := r.sb.Select(flightColumns...).From("flights").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get flight sql: %w", err)
	}

	var f domain.Flight
	if err := scanFlight(r.db.QueryRow(ctx, sqlStr, args...), &f); err != nil {
		return nil, mapError(fmt.Sprintf("get flight %d", id), err)
	}
	return &f, nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tx, err := beginLedgerTx(ctx, r.db, r.opts.lockTimeout)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := lockFlight(ctx, tx, id); err != nil {
		return 0, err
	}

	res, err := tx.Exec(ctx, `DELETE FROM bookings WHERE flight_id = $1`, id)
	if err != nil {
		return 0, mapError("delete flight bookings", err)
	}
	removed := res.RowsAffected()

	if _, err := tx.Exec(ctx, `DELETE FROM flights WHERE id = $1`, id); err != nil {
		return 0, mapError("delete flight", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, mapError("commit delete flight", err)
	}
	return removed, nil
}

// lockFlight loads the flight row with FOR UPDATE. Every transaction that
// touches seats or bookings of a flight takes this lock first.
func lockFlight(ctx context.Context, tx pgx.Tx, id int64) (*domain.Flight, error) {
	row := tx.QueryRow(ctx, `SELECT id, flight_number, airline, origin, destination,
		departure_time, arrival_time, total_seats, available_seats, created_at, updated_at
		FROM flights WHERE id = $1 FOR UPDATE`, id)

	var f domain.Flight
	if err := scanFlight(row, &f); err != nil {
		return nil, mapError(fmt.Sprintf("lock flight %d", id), err)
	}
	return &f, nil
}

func scanFlight(row pgx.Row, f *domain.Flight) error {
	return row.Scan(
		&f.ID,
		&f.FlightNumber,
		&f.Airline,
		&f.Origin,
		&f.Destination,
		&f.DepartureTime,
		&f.ArrivalTime,
		&f.TotalSeats,
		&f.AvailableSeats,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
}

var _ FlightRepository = (*PGFlightRepository)(nil)
