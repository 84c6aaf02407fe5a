package passengers

import (
	"context"
	"fmt"

	"github.com/Domenick1991/busalert/internal/domain"
	"github.com/Domenick1991/busalert/internal/repository"
)

type PassengerUseCase interface {
	UnnotifiedByBus(ctx context.Context, busID string) ([]domain.Passenger, error)
	ByBus(ctx context.Context, busID string) ([]domain.Passenger, error)
	Register(ctx context.Context, input RegisterInput) (*domain.Reservation, []domain.Passenger, error)
}

type PassengerService struct {
	reservations repository.ReservationRepository
	passengers   repository.PassengerRepository
}

type RegisterInput struct {
	BusID         string
	ReservationID string
	Passengers    []domain.Passenger
}

func NewPassengerService(reservations repository.ReservationRepository, passengers repository.PassengerRepository) *PassengerService {
	return &PassengerService{reservations: reservations, passengers: passengers}
}

// UnnotifiedByBus resolves a bus to the riders that have not been alerted yet,
// in storage order.
func (s *PassengerService) UnnotifiedByBus(ctx context.Context, busID string) ([]domain.Passenger, error) {
	return s.byBus(ctx, busID, true)
}

func (s *PassengerService) ByBus(ctx context.Context, busID string) ([]domain.Passenger, error) {
	return s.byBus(ctx, busID, false)
}

func (s *PassengerService) byBus(ctx context.Context, busID string, unnotifiedOnly bool) ([]domain.Passenger, error) {
	reservations, err := s.reservations.ListByBus(ctx, busID)
	if err != nil {
		return nil, fmt.Errorf("list reservations for bus %s: %w", busID, err)
	}
	if len(reservations) == 0 {
		return []domain.Passenger{}, nil
	}

	ids := make([]string, 0, len(reservations))
	for _, r := range reservations {
		ids = append(ids, r.ReservationID)
	}

	passengers, err := s.passengers.ListByReservations(ctx, ids, unnotifiedOnly)
	if err != nil {
		return nil, fmt.Errorf("list passengers for bus %s: %w", busID, err)
	}
	return passengers, nil
}

// Register stores a booking with its riders, all starting un-notified.
func (s *PassengerService) Register(ctx context.Context, input RegisterInput) (*domain.Reservation, []domain.Passenger, error) {
	if input.BusID == "" {
		return nil, nil, domain.ValidationError{Field: "bus_id", Msg: "is required"}
	}
	if input.ReservationID == "" {
		return nil, nil, domain.ValidationError{Field: "pnr_id", Msg: "is required"}
	}
	if len(input.Passengers) == 0 {
		return nil, nil, domain.ValidationError{Field: "passengers", Msg: "at least one passenger is required"}
	}

	passengers := make([]domain.Passenger, len(input.Passengers))
	for i, p := range input.Passengers {
		if p.PassengerID == "" {
			return nil, nil, domain.ValidationError{Field: fmt.Sprintf("passengers[%d].passenger_id", i), Msg: "is required"}
		}
		if p.Phone == "" {
			return nil, nil, domain.ValidationError{Field: fmt.Sprintf("passengers[%d].phone", i), Msg: "is required"}
		}
		p.Notified = false
		p.NotificationSentAt = nil
		p.CallMadeAt = nil
		passengers[i] = p
	}

	reservation := &domain.Reservation{BusID: input.BusID, ReservationID: input.ReservationID}
	if err := s.reservations.CreateWithPassengers(ctx, reservation, passengers); err != nil {
		return nil, nil, err
	}
	return reservation, passengers, nil
}

var _ PassengerUseCase = (*PassengerService)(nil)
