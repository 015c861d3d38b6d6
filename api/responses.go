package api

import (
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type flightSummaryResponse struct {
	ID            int64     `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Airline       string    `json:"airline"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

type bookingResponse struct {
	ID             int64                  `json:"id"`
	FlightID       int64                  `json:"flight_id"`
	UserID         int64                  `json:"user_id"`
	PassengerName  string                 `json:"passenger_name"`
	PassportNumber string                 `json:"passport_number"`
	Status         string                 `json:"status"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Flight         *flightSummaryResponse `json:"flight,omitempty"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type meResponse struct {
	userResponse
	Bookings []bookingResponse `json:"bookings"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:             b.ID,
		FlightID:       b.FlightID,
		UserID:         b.UserID,
		PassengerName:  b.PassengerName,
		PassportNumber: b.PassportNumber,
		Status:         string(b.Status),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
	if f := b.Flight; f != nil {
		resp.Flight = &flightSummaryResponse{
			ID:            f.ID,
			FlightNumber:  f.FlightNumber,
			Airline:       f.Airline,
			Origin:        f.Origin,
			Destination:   f.Destination,
			DepartureTime: f.DepartureTime,
			ArrivalTime:   f.ArrivalTime,
		}
	}
	return resp
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt}
}
