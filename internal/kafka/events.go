package kafka

import "time"

const EventPassengerNotified = "passenger_notified"

// NotificationEvent is published once a passenger has been flipped to notified.
type NotificationEvent struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	PassengerID      string    `json:"passenger_id"`
	EstimatedMinutes int64     `json:"estimated_minutes"`
	SMSSent          bool      `json:"sms_sent"`
	CallPlaced       bool      `json:"call_placed"`
	NotifiedAt       time.Time `json:"notified_at"`
}
