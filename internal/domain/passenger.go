package domain

import "time"

type Reservation struct {
	ID            int64
	BusID         string
	ReservationID string
	CreatedAt     time.Time
}

type Passenger struct {
	ID                 int64
	ReservationID      string
	PassengerID        string
	Name               string
	Phone              string
	PickupLatitude     *float64
	PickupLongitude    *float64
	PickupAddress      string
	Notified           bool
	NotificationSentAt *time.Time
	CallMadeAt         *time.Time
	CreatedAt          time.Time
}

// HasPickup reports whether both pickup coordinates are present.
func (p Passenger) HasPickup() bool {
	return p.PickupLatitude != nil && p.PickupLongitude != nil
}

// MarkNotified flips the notified flag and stamps both delivery timestamps.
func (p *Passenger) MarkNotified(at time.Time) {
	p.Notified = true
	p.NotificationSentAt = &at
	p.CallMadeAt = &at
}

// LocationEvent is one bus position report. Timestamp is advisory only.
type LocationEvent struct {
	BusID     string  `json:"bus_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// NotificationRequest joins a passenger's contact and pickup fields with the
// computed ETA. It lives only between processing and dispatch.
type NotificationRequest struct {
	PassengerID      string
	PassengerName    string
	PassengerPhone   string
	PickupLatitude   float64
	PickupLongitude  float64
	PickupAddress    string
	EstimatedMinutes int64
}
