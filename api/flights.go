package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FlightHandler struct {
	service     flights.FlightUseCase
	requireAuth gin.HandlerFunc
	log         *zap.Logger
}

type createFlightRequest struct {
	FlightNumber  string    `json:"flight_number"`
	Airline       string    `json:"airline"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	TotalSeats    int       `json:"total_seats"`
}

type deleteFlightResponse struct {
	ID              int64 `json:"id"`
	BookingsRemoved int64 `json:"bookings_removed"`
}

func NewFlightHandler(service flights.FlightUseCase, requireAuth gin.HandlerFunc, log *zap.Logger) *FlightHandler {
	return &FlightHandler{service: service, requireAuth: requireAuth, log: log}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.requireAuth, h.create)
	router.DELETE("/:id", h.requireAuth, h.delete)
}

func (h *FlightHandler) list(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	limit, err := queryInt(c, "limit", flights.DefaultLimit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.log, validationError("%v", err))
		return
	}

	flight, err := h.service.Create(c.Request.Context(), principalFrom(c), flights.CreateFlightInput{
		FlightNumber:  req.FlightNumber,
		Airline:       req.Airline,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		TotalSeats:    req.TotalSeats,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	removed, err := h.service.Delete(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, deleteFlightResponse{ID: id, BookingsRemoved: removed})
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, validationError("id must be a positive integer")
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validationError("%s must be an integer", name)
	}
	return v, nil
}
