package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"

	classDataException       = "22"
	classConnectionException = "08"
)

// mapError translates driver errors into domain sentinels, keeping the
// original error in the chain for logs.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			switch pgErr.ConstraintName {
			case constraintPassportFlight:
				return fmt.Errorf("%s: %w", op, domain.ErrDuplicatePassport)
			case constraintFlightNumber:
				return fmt.Errorf("%s: %w", op, domain.ErrFlightNumberTaken)
			case constraintUserEmail:
				return fmt.Errorf("%s: %w", op, domain.ErrEmailTaken)
			}
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
		case codeCheckViolation:
			if pgErr.ConstraintName == constraintSeatBounds {
				return fmt.Errorf("%s: %w: %w", op, domain.ErrInvariantViolation, err)
			}
			return fmt.Errorf("%s: %w: %w", op, domain.ErrValidation, err)
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrTransientStore, err)
		}
		switch pgErrorClass(pgErr.Code) {
		case classConnectionException:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrTransientStore, err)
		case classDataException:
			// Values the store cannot hold, e.g. 22001 string too long for its column.
			return fmt.Errorf("%s: %w: %w", op, domain.ErrValidation, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrTransientStore, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pgErrorClass(code string) string {
	if len(code) != 5 {
		return ""
	}
	return code[:2]
}
