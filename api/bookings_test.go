package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, noAuth, zap.NewNop())

	body, _ := json.Marshal(createBookingRequest{PassengerName: "Alice", PassportNumber: "P123456"})
	c, w := newTestContext(http.MethodPost, "/flights/10/book", body)
	c.Params = gin.Params{{Key: "id", Value: "10"}}
	c.Set(principalKey, userPrincipal)

	input := booking.CreateBookingInput{FlightID: 10, PassengerName: "Alice", PassportNumber: "P123456"}
	created := &domain.Booking{
		ID:             1,
		FlightID:       10,
		UserID:         userPrincipal.UserID,
		PassengerName:  "Alice",
		PassportNumber: "P123456",
		Status:         domain.BookingStatusBooked,
		Flight:         &domain.Flight{ID: 10, FlightNumber: "KL1001"},
	}
	mockService.On("CreateBooking", mock.Anything, userPrincipal, input).Return(created, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(1), response.ID)
	assert.Equal(t, "Booked", response.Status)
	require.NotNil(t, response.Flight)
	assert.Equal(t, "KL1001", response.Flight.FlightNumber)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_Rejections(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrCapacityExceeded, http.StatusConflict, "capacity_exceeded"},
		{domain.ErrDuplicatePassport, http.StatusConflict, "duplicate_passport"},
		{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
		{domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{domain.ErrTransientStore, http.StatusServiceUnavailable, "transient_store_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService, noAuth, zap.NewNop())

			c, w := newTestContext(http.MethodPost, "/flights/10/book", []byte(`{"passenger_name":"Alice","passport_number":"P123456"}`))
			c.Params = gin.Params{{Key: "id", Value: "10"}}
			c.Set(principalKey, userPrincipal)
			mockService.On("CreateBooking", mock.Anything, userPrincipal, mock.Anything).Return(nil, fmt.Errorf("create booking: %w", tt.err)).Once()

			handler.create(c)

			assert.Equal(t, tt.status, w.Code)
			var resp errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, noAuth, zap.NewNop())

	c, w := newTestContext(http.MethodDelete, "/bookings/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Set(principalKey, userPrincipal)
	mockService.On("CancelBooking", mock.Anything, userPrincipal, int64(5)).
		Return(&domain.Booking{ID: 5, Status: domain.BookingStatusCanceled}, nil).Once()

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Canceled", response.Status)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_ForbiddenAndAlreadyCanceled(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, noAuth, zap.NewNop())

	mockService.On("CancelBooking", mock.Anything, userPrincipal, int64(5)).Return(nil, fmt.Errorf("cancel booking 5: %w", domain.ErrForbidden)).Once()
	mockService.On("CancelBooking", mock.Anything, userPrincipal, int64(6)).Return(nil, fmt.Errorf("cancel booking 6: %w", domain.ErrAlreadyCanceled)).Once()

	c, w := newTestContext(http.MethodDelete, "/bookings/5", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Set(principalKey, userPrincipal)
	handler.cancel(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = newTestContext(http.MethodDelete, "/bookings/6", nil)
	c.Params = gin.Params{{Key: "id", Value: "6"}}
	c.Set(principalKey, userPrincipal)
	handler.cancel(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already_canceled")

	mockService.AssertExpectations(t)
}

func TestBookingHandler_listMine(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService, noAuth, zap.NewNop())

	c, w := newTestContext(http.MethodGet, "/bookings/me", nil)
	c.Set(principalKey, userPrincipal)
	mockService.On("ListForUser", mock.Anything, userPrincipal).Return([]domain.Booking{}, nil).Once()

	handler.listMine(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
	mockService.AssertExpectations(t)
}
