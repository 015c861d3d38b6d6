package booking

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/policy"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"go.uber.org/zap"
)

const maxPassengerNameLength = 100

type BookingUseCase interface {
	CreateBooking(ctx context.Context, principal domain.Principal, input CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, principal domain.Principal, bookingID int64) (*domain.Booking, error)
	ListForUser(ctx context.Context, principal domain.Principal) ([]domain.Booking, error)
}

// Cache is the part of the flight cache that ledger writes make stale.
type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Notifier interface {
	Notify(n domain.Notification)
}

type CreateBookingInput struct {
	FlightID       int64
	PassengerName  string
	PassportNumber string
}

type BookingService struct {
	bookings repository.BookingRepository
	cache    Cache
	notifier Notifier
	log      *zap.Logger
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithNotifier(notifier Notifier) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = notifier
	}
}

func NewBookingService(bookings repository.BookingRepository, log *zap.Logger, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		bookings: bookings,
		log:      log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, principal domain.Principal, input CreateBookingInput) (*domain.Booking, error) {
	b, err := s.createBooking(ctx, principal, input)
	metrics.IncLedgerOperation("create_booking", domain.ErrorCode(err))
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, domain.NotificationBookingCreated, b, b.Flight, principal.Email)
	return b, nil
}

func (s *BookingService) createBooking(ctx context.Context, principal domain.Principal, input CreateBookingInput) (*domain.Booking, error) {
	if !policy.CanBook(principal) {
		return nil, domain.ErrUnauthorized
	}

	name := strings.TrimSpace(input.PassengerName)
	if name == "" {
		return nil, fmt.Errorf("%w: passenger_name is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxPassengerNameLength {
		return nil, fmt.Errorf("%w: passenger_name must be at most %d characters", domain.ErrValidation, maxPassengerNameLength)
	}
	passport := domain.NormalizePassport(input.PassportNumber)
	if !domain.ValidPassport(passport) {
		return nil, fmt.Errorf("%w: passport_number must be 1-3 letters followed by 6-9 digits", domain.ErrValidation)
	}

	b := &domain.Booking{
		FlightID:       input.FlightID,
		UserID:         principal.UserID,
		PassengerName:  name,
		PassportNumber: passport,
	}
	if err := s.bookings.Reserve(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	b.OwnerEmail = principal.Email
	return b, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, principal domain.Principal, bookingID int64) (*domain.Booking, error) {
	current, updated, err := s.cancelBooking(ctx, principal, bookingID)
	metrics.IncLedgerOperation("cancel_booking", domain.ErrorCode(err))
	if err != nil {
		return nil, err
	}

	// The flight row can be gone only if it was deleted together with the booking;
	// fall back to the snapshot read before the transaction.
	flight := updated.Flight
	if flight == nil {
		flight = current.Flight
	}
	s.afterCommit(ctx, domain.NotificationBookingCanceled, updated, flight, updated.OwnerEmail)
	return updated, nil
}

func (s *BookingService) cancelBooking(ctx context.Context, principal domain.Principal, bookingID int64) (*domain.Booking, *domain.Booking, error) {
	if !principal.Authenticated() {
		return nil, nil, domain.ErrUnauthorized
	}

	current, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("cancel booking: %w", err)
	}
	if !policy.CanCancelBooking(principal, current) {
		return nil, nil, fmt.Errorf("cancel booking %d: %w", bookingID, domain.ErrForbidden)
	}
	if !current.Active() {
		return nil, nil, fmt.Errorf("cancel booking %d: %w", bookingID, domain.ErrAlreadyCanceled)
	}

	updated, err := s.bookings.Cancel(ctx, bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("cancel booking: %w", err)
	}
	if updated.OwnerEmail == "" {
		updated.OwnerEmail = current.OwnerEmail
	}
	return current, updated, nil
}

func (s *BookingService) ListForUser(ctx context.Context, principal domain.Principal) ([]domain.Booking, error) {
	if !principal.Authenticated() {
		return nil, domain.ErrUnauthorized
	}
	bookings, err := s.bookings.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// afterCommit runs once the ledger transaction is durable. Nothing here can
// undo the booking change, so failures are only logged.
func (s *BookingService) afterCommit(ctx context.Context, kind domain.NotificationType, b *domain.Booking, flight *domain.Flight, recipient string) {
	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.Warn("failed to invalidate flights cache", zap.Int64("booking_id", b.ID), zap.Error(err))
		}
	}
	if s.notifier == nil {
		return
	}
	if recipient == "" {
		s.log.Warn("no recipient for booking notification", zap.Int64("booking_id", b.ID), zap.String("type", string(kind)))
		return
	}
	s.notifier.Notify(domain.Notification{
		Type:           kind,
		BookingID:      b.ID,
		Flight:         domain.SummarizeFlight(flight),
		PassengerName:  b.PassengerName,
		RecipientEmail: recipient,
	})
}

var _ BookingUseCase = (*BookingService)(nil)
