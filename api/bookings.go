package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service     booking.BookingUseCase
	requireAuth gin.HandlerFunc
	log         *zap.Logger
}

type createBookingRequest struct {
	PassengerName  string `json:"passenger_name"`
	PassportNumber string `json:"passport_number"`
}

func NewBookingHandler(service booking.BookingUseCase, requireAuth gin.HandlerFunc, log *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, requireAuth: requireAuth, log: log}
}

// Register mounts the booking routes; router is the API root because
// booking a seat lives under /flights.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/flights/:id/book", h.requireAuth, h.create)
	router.GET("/bookings/me", h.requireAuth, h.listMine)
	router.DELETE("/bookings/:id", h.requireAuth, h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	flightID, err := pathID(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, validationError("%v", err))
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), principalFrom(c), booking.CreateBookingInput{
		FlightID:       flightID,
		PassengerName:  req.PassengerName,
		PassportNumber: req.PassportNumber,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) listMine(c *gin.Context) {
	list, err := h.service.ListForUser(c.Request.Context(), principalFrom(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(list))
}
