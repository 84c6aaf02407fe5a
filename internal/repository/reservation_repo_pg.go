package repository

import (
	"context"

	"github.com/Domenick1991/busalert/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	ListByBus(ctx context.Context, busID string) ([]domain.Reservation, error)
	CreateWithPassengers(ctx context.Context, reservation *domain.Reservation, passengers []domain.Passenger) error
}

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) ListByBus(ctx context.Context, busID string) ([]domain.Reservation, error) {
	rows, err := r.db.Query(ctx, `SELECT id, bus_id, pnr_id, created_at FROM bus_pnr WHERE bus_id=$1 ORDER BY id`, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.BusID, &res.ReservationID, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// CreateWithPassengers records a booking and its riders in one transaction.
// Re-registering an existing (bus, reservation) pair keeps the original row.
func (r *PGReservationRepository) CreateWithPassengers(ctx context.Context, reservation *domain.Reservation, passengers []domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bus_pnr (bus_id, pnr_id) VALUES ($1, $2)
		ON CONFLICT (bus_id, pnr_id) DO UPDATE SET bus_id = EXCLUDED.bus_id
		RETURNING id, created_at`, reservation.BusID, reservation.ReservationID).
		Scan(&reservation.ID, &reservation.CreatedAt); err != nil {
		return err
	}

	for i := range passengers {
		passengers[i].ReservationID = reservation.ReservationID
		if err := savePassenger(ctx, tx, &passengers[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
