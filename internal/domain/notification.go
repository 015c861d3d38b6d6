package domain

import "time"

type NotificationType string

const (
	NotificationBookingCreated  NotificationType = "booking_created"
	NotificationBookingCanceled NotificationType = "booking_canceled"
)

// FlightSummary is the part of a flight carried in notifications.
type FlightSummary struct {
	ID            int64     `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Airline       string    `json:"airline"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
}

// Notification is emitted after a ledger transaction commits.
type Notification struct {
	EventID        string           `json:"event_id"`
	Type           NotificationType `json:"type"`
	BookingID      int64            `json:"booking_id"`
	Flight         FlightSummary    `json:"flight"`
	PassengerName  string           `json:"passenger_name"`
	RecipientEmail string           `json:"recipient_email"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

func SummarizeFlight(f *Flight) FlightSummary {
	if f == nil {
		return FlightSummary{}
	}
	return FlightSummary{
		ID:            f.ID,
		FlightNumber:  f.FlightNumber,
		Airline:       f.Airline,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
	}
}
