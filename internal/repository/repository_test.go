package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewFlightRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewFlightRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewBookingRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewBookingRepository(pool, WithLockTimeout(0))
	assert.NotNil(t, repo)
	assert.Equal(t, defaultLockTimeout, repo.(*PGBookingRepository).opts.lockTimeout)
}

func TestNewUserRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewUserRepository(pool)
	assert.NotNil(t, repo)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, domain.ErrNotFound},
		{"duplicate passport", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintPassportFlight}, domain.ErrDuplicatePassport},
		{"duplicate flight number", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintFlightNumber}, domain.ErrFlightNumberTaken},
		{"duplicate email", &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: constraintUserEmail}, domain.ErrEmailTaken},
		{"missing parent row", &pgconn.PgError{Code: codeForeignKeyViolation}, domain.ErrNotFound},
		{"seat bounds", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: constraintSeatBounds}, domain.ErrInvariantViolation},
		{"other check", &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "flights_schedule_check"}, domain.ErrValidation},
		{"serialization failure", &pgconn.PgError{Code: codeSerializationFailure}, domain.ErrTransientStore},
		{"deadlock", &pgconn.PgError{Code: codeDeadlockDetected}, domain.ErrTransientStore},
		{"lock timeout", &pgconn.PgError{Code: codeLockNotAvailable}, domain.ErrTransientStore},
		{"statement timeout", &pgconn.PgError{Code: codeQueryCanceled}, domain.ErrTransientStore},
		{"connection failure", &pgconn.PgError{Code: "08006"}, domain.ErrTransientStore},
		{"deadline", context.DeadlineExceeded, domain.ErrTransientStore},
		{"canceled", context.Canceled, domain.ErrTransientStore},
		{"value too long", &pgconn.PgError{Code: "22001"}, domain.ErrValidation},
		{"numeric out of range", &pgconn.PgError{Code: "22003"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapError("op", tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "op: ")
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	assert.NoError(t, mapError("op", nil))

	plain := errors.New("boom")
	err := mapError("op", plain)
	assert.ErrorIs(t, err, plain)
	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrTransientStore, domain.ErrInvariantViolation} {
		assert.False(t, errors.Is(err, sentinel), fmt.Sprint(sentinel))
	}
}

func TestMapError_ErrorCodes(t *testing.T) {
	assert.Equal(t, "validation_error", domain.ErrorCode(mapError("insert flight", &pgconn.PgError{Code: "22001"})))
	assert.Equal(t, "transient_store_error", domain.ErrorCode(mapError("reserve", context.Canceled)))
	assert.Equal(t, "internal_error", domain.ErrorCode(mapError("op", &pgconn.PgError{Code: "XX000"})))
}
