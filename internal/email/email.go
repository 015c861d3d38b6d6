package email

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"go.uber.org/zap"
)

// Sender stands in for a mail gateway; it records what would be sent.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, n domain.Notification) error {
	s.log.Info("send email",
		zap.String("to", n.RecipientEmail),
		zap.String("subject", Subject(n)),
		zap.String("event_id", n.EventID),
		zap.Int64("booking_id", n.BookingID),
		zap.String("flight_number", n.Flight.FlightNumber),
	)
	return nil
}

func Subject(n domain.Notification) string {
	switch n.Type {
	case domain.NotificationBookingCreated:
		return "Booking confirmed: " + n.Flight.FlightNumber
	case domain.NotificationBookingCanceled:
		return "Booking canceled: " + n.Flight.FlightNumber
	default:
		return "Booking update"
	}
}
