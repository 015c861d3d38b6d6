package domain

import "errors"

// Sentinel errors shared by the ledger, the store and the web layer.
// Callers classify with errors.Is; every layer wraps with context.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation error")
	ErrCapacityExceeded   = errors.New("no available seats on this flight")
	ErrDuplicatePassport  = errors.New("passport number already registered for this flight")
	ErrAlreadyCanceled    = errors.New("booking is already canceled")
	ErrFlightNumberTaken  = errors.New("flight number already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTransientStore     = errors.New("store temporarily unavailable")
	ErrInvariantViolation = errors.New("invariant violation")
)

// Retryable reports whether a caller may sanely retry the same request.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransientStore)
}

// ErrorCode returns the stable machine-readable code for err. Errors that
// match no sentinel are reported as internal_error.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrDuplicatePassport):
		return "duplicate_passport"
	case errors.Is(err, ErrAlreadyCanceled):
		return "already_canceled"
	case errors.Is(err, ErrFlightNumberTaken):
		return "flight_number_taken"
	case errors.Is(err, ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, ErrTransientStore):
		return "transient_store_error"
	default:
		return "internal_error"
	}
}
