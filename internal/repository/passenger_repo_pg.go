package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/busalert/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PassengerRepository interface {
	ListByReservations(ctx context.Context, reservationIDs []string, unnotifiedOnly bool) ([]domain.Passenger, error)
	Save(ctx context.Context, passenger *domain.Passenger) error
	MarkNotified(ctx context.Context, passengerID string, at time.Time) (*domain.Passenger, error)
}

type PGPassengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

const passengerColumns = `id, pnr_id, passenger_id, COALESCE(passenger_name, ''), passenger_phone,
	pickup_latitude, pickup_longitude, COALESCE(pickup_address, ''), notified,
	notification_sent_at, call_made_at, created_at`

const upsertPassengerSQL = `INSERT INTO bus_passenger
	(pnr_id, passenger_id, passenger_name, passenger_phone, pickup_latitude, pickup_longitude,
	 pickup_address, notified, notification_sent_at, call_made_at)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
	ON CONFLICT (passenger_id) DO UPDATE SET
		pnr_id = EXCLUDED.pnr_id,
		passenger_name = EXCLUDED.passenger_name,
		passenger_phone = EXCLUDED.passenger_phone,
		pickup_latitude = EXCLUDED.pickup_latitude,
		pickup_longitude = EXCLUDED.pickup_longitude,
		pickup_address = EXCLUDED.pickup_address,
		notified = EXCLUDED.notified,
		notification_sent_at = EXCLUDED.notification_sent_at,
		call_made_at = EXCLUDED.call_made_at
	RETURNING id, created_at`

func (r *PGPassengerRepository) ListByReservations(ctx context.Context, reservationIDs []string, unnotifiedOnly bool) ([]domain.Passenger, error) {
	passengers := make([]domain.Passenger, 0)
	if len(reservationIDs) == 0 {
		return passengers, nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+passengerColumns+` FROM bus_passenger
		WHERE pnr_id = ANY($1) AND ($2 = false OR notified = false)
		ORDER BY id`, reservationIDs, unnotifiedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, *p)
	}
	return passengers, rows.Err()
}

// Save inserts the passenger or replaces the row with the same passenger id.
func (r *PGPassengerRepository) Save(ctx context.Context, p *domain.Passenger) error {
	return savePassenger(ctx, r.db, p)
}

// MarkNotified is the keyed state transition used after a dispatch attempt.
func (r *PGPassengerRepository) MarkNotified(ctx context.Context, passengerID string, at time.Time) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `UPDATE bus_passenger
		SET notified = true, notification_sent_at = $2, call_made_at = $2
		WHERE passenger_id = $1
		RETURNING `+passengerColumns, passengerID, at)
	p, err := scanPassenger(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "passenger " + passengerID, Err: err}
		}
		return nil, err
	}
	return p, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func savePassenger(ctx context.Context, db queryRower, p *domain.Passenger) error {
	return db.QueryRow(ctx, upsertPassengerSQL,
		p.ReservationID, p.PassengerID, p.Name, p.Phone, p.PickupLatitude, p.PickupLongitude,
		p.PickupAddress, p.Notified, p.NotificationSentAt, p.CallMadeAt).
		Scan(&p.ID, &p.CreatedAt)
}

func scanPassenger(row pgx.Row) (*domain.Passenger, error) {
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.ReservationID, &p.PassengerID, &p.Name, &p.Phone,
		&p.PickupLatitude, &p.PickupLongitude, &p.PickupAddress, &p.Notified,
		&p.NotificationSentAt, &p.CallMadeAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
