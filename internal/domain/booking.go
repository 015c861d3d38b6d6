package domain

import (
	"regexp"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusBooked   BookingStatus = "Booked"
	BookingStatusCanceled BookingStatus = "Canceled"
)

type Booking struct {
	ID             int64         `json:"id"`
	FlightID       int64         `json:"flight_id"`
	UserID         int64         `json:"user_id"`
	PassengerName  string        `json:"passenger_name"`
	PassportNumber string        `json:"passport_number"`
	Status         BookingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Populated by reads that join the owner and the flight.
	OwnerEmail string  `json:"-"`
	Flight     *Flight `json:"flight,omitempty"`
}

func (b *Booking) Active() bool {
	return b.Status == BookingStatusBooked
}

var passportPattern = regexp.MustCompile(`^[A-Z]{1,3}[0-9]{6,9}$`)

// NormalizePassport trims and upper-cases a passport number so that the
// (flight, passport) uniqueness is case-insensitive.
func NormalizePassport(passport string) string {
	return strings.ToUpper(strings.TrimSpace(passport))
}

// ValidPassport expects an already normalized value.
func ValidPassport(passport string) bool {
	return passportPattern.MatchString(passport)
}
