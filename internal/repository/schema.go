package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names are matched when translating unique and check violations.
const (
	constraintUserEmail      = "users_email_key"
	constraintFlightNumber   = "flights_flight_number_key"
	constraintPassportFlight = "bookings_flight_passport_key"
	constraintSeatBounds     = "flights_seats_check"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT ` + constraintUserEmail + ` UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS flights (
		id BIGSERIAL PRIMARY KEY,
		flight_number VARCHAR(16) NOT NULL,
		airline VARCHAR(100) NOT NULL,
		origin VARCHAR(100) NOT NULL,
		destination VARCHAR(100) NOT NULL,
		departure_time TIMESTAMPTZ NOT NULL,
		arrival_time TIMESTAMPTZ NOT NULL,
		total_seats INTEGER NOT NULL,
		available_seats INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT ` + constraintFlightNumber + ` UNIQUE (flight_number),
		CONSTRAINT flights_total_seats_check CHECK (total_seats > 0),
		CONSTRAINT ` + constraintSeatBounds + ` CHECK (available_seats >= 0 AND available_seats <= total_seats),
		CONSTRAINT flights_schedule_check CHECK (arrival_time > departure_time)
	)`,
	// The passport key is flat: a canceled booking still holds its (flight, passport) pair.
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		flight_id BIGINT NOT NULL REFERENCES flights(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		passenger_name VARCHAR(100) NOT NULL,
		passport_number VARCHAR(12) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'Booked',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT ` + constraintPassportFlight + ` UNIQUE (flight_id, passport_number),
		CONSTRAINT bookings_status_check CHECK (status IN ('Booked', 'Canceled'))
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_user_id_idx ON bookings (user_id)`,
	`CREATE INDEX IF NOT EXISTS flights_departure_time_idx ON flights (departure_time)`,
}

// Migrate creates the tables when they do not exist yet. It is safe to run on every start.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
