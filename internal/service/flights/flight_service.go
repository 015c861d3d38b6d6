package flights

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/Domenick1991/flightbooking/internal/policy"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Column widths of the flights table.
const (
	maxFlightNumberLength = 16
	maxPlaceLength        = 100
)

type FlightUseCase interface {
	List(ctx context.Context, skip, limit int) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Create(ctx context.Context, principal domain.Principal, input CreateFlightInput) (*domain.Flight, error)
	// Delete returns the number of bookings removed with the flight.
	Delete(ctx context.Context, principal domain.Principal, id int64) (int64, error)
}

// FlightCache stores list pages per generation. InvalidateFlights starts a
// new generation, so a page must be stored under the generation read before
// the store query that produced it.
type FlightCache interface {
	FlightsGeneration(ctx context.Context) (int64, error)
	GetFlights(ctx context.Context, generation int64, skip, limit int) ([]domain.Flight, bool, error)
	SetFlights(ctx context.Context, generation int64, skip, limit int, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	FlightNumber  string
	Airline       string
	Origin        string
	Destination   string
	DepartureTime time.Time
	ArrivalTime   time.Time
	TotalSeats    int
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   *zap.Logger
}

// cache may be nil, in which case every list goes to the store.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, log *zap.Logger) *FlightService {
	return &FlightService{repo: repo, cache: cache, log: log}
}

func (s *FlightService) List(ctx context.Context, skip, limit int) ([]domain.Flight, error) {
	if skip < 0 {
		return nil, fmt.Errorf("%w: skip must be >= 0", domain.ErrValidation)
	}
	if limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", domain.ErrValidation, MaxLimit)
	}

	if s.cache == nil {
		return s.listFromStore(ctx, skip, limit)
	}

	gen, err := s.cache.FlightsGeneration(ctx)
	if err != nil {
		s.log.Warn("flights cache generation read failed", zap.Error(err))
		return s.listFromStore(ctx, skip, limit)
	}

	cached, ok, err := s.cache.GetFlights(ctx, gen, skip, limit)
	if err != nil {
		s.log.Warn("flights cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	flights, err := s.listFromStore(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetFlights(ctx, gen, skip, limit, flights); err != nil {
		s.log.Warn("flights cache write failed", zap.Error(err))
	}
	return flights, nil
}

func (s *FlightService) listFromStore(ctx context.Context, skip, limit int) ([]domain.Flight, error) {
	flights, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Create(ctx context.Context, principal domain.Principal, input CreateFlightInput) (*domain.Flight, error) {
	if !policy.CanMutateFlight(principal) {
		return nil, fmt.Errorf("create flight: %w", domain.ErrForbidden)
	}

	flight, err := input.toFlight()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, fmt.Errorf("create flight: %w", err)
	}

	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) Delete(ctx context.Context, principal domain.Principal, id int64) (int64, error) {
	removed, err := s.delete(ctx, principal, id)
	metrics.IncLedgerOperation("delete_flight", domain.ErrorCode(err))
	return removed, err
}

func (s *FlightService) delete(ctx context.Context, principal domain.Principal, id int64) (int64, error) {
	if !policy.CanMutateFlight(principal) {
		return 0, fmt.Errorf("delete flight: %w", domain.ErrForbidden)
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete flight: %w", err)
	}

	s.log.Info("flight deleted", zap.Int64("flight_id", id), zap.Int64("bookings_removed", removed))
	s.invalidate(ctx)
	return removed, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("failed to invalidate flights cache", zap.Error(err))
	}
}

func (in CreateFlightInput) toFlight() (*domain.Flight, error) {
	f := &domain.Flight{
		FlightNumber:  strings.ToUpper(strings.TrimSpace(in.FlightNumber)),
		Airline:       strings.TrimSpace(in.Airline),
		Origin:        strings.TrimSpace(in.Origin),
		Destination:   strings.TrimSpace(in.Destination),
		DepartureTime: in.DepartureTime,
		ArrivalTime:   in.ArrivalTime,
		TotalSeats:    in.TotalSeats,
	}

	switch {
	case f.FlightNumber == "":
		return nil, fmt.Errorf("%w: flight_number is required", domain.ErrValidation)
	case utf8.RuneCountInString(f.FlightNumber) > maxFlightNumberLength:
		return nil, fmt.Errorf("%w: flight_number must be at most %d characters", domain.ErrValidation, maxFlightNumberLength)
	case f.Airline == "":
		return nil, fmt.Errorf("%w: airline is required", domain.ErrValidation)
	case utf8.RuneCountInString(f.Airline) > maxPlaceLength:
		return nil, fmt.Errorf("%w: airline must be at most %d characters", domain.ErrValidation, maxPlaceLength)
	case f.Origin == "" || f.Destination == "":
		return nil, fmt.Errorf("%w: origin and destination are required", domain.ErrValidation)
	case utf8.RuneCountInString(f.Origin) > maxPlaceLength || utf8.RuneCountInString(f.Destination) > maxPlaceLength:
		return nil, fmt.Errorf("%w: origin and destination must be at most %d characters", domain.ErrValidation, maxPlaceLength)
	case strings.EqualFold(f.Origin, f.Destination):
		return nil, fmt.Errorf("%w: origin and destination must differ", domain.ErrValidation)
	case f.TotalSeats <= 0:
		return nil, fmt.Errorf("%w: total_seats must be positive", domain.ErrValidation)
	case f.TotalSeats > math.MaxInt32:
		return nil, fmt.Errorf("%w: total_seats is too large", domain.ErrValidation)
	case f.DepartureTime.IsZero() || f.ArrivalTime.IsZero():
		return nil, fmt.Errorf("%w: departure_time and arrival_time are required", domain.ErrValidation)
	case !f.ArrivalTime.After(f.DepartureTime):
		return nil, fmt.Errorf("%w: arrival_time must be after departure_time", domain.ErrValidation)
	}

	f.AvailableSeats = f.TotalSeats
	return f, nil
}

var _ FlightUseCase = (*FlightService)(nil)
