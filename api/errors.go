package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrDuplicatePassport),
		errors.Is(err, domain.ErrAlreadyCanceled),
		errors.Is(err, domain.ErrFlightNumberTaken),
		errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTransientStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, log *zap.Logger, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error(), Code: domain.ErrorCode(err)}

	switch {
	case status == http.StatusServiceUnavailable:
		log.Warn("store unavailable", zap.String("request_id", requestID(c)), zap.Error(err))
		resp.Error = "service temporarily unavailable, retry the request"
		c.Header("Retry-After", "1")
	case status >= http.StatusInternalServerError:
		log.Error("request failed", zap.String("request_id", requestID(c)), zap.Error(err))
		resp.Error = "internal error"
	}

	c.AbortWithStatusJSON(status, resp)
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}
