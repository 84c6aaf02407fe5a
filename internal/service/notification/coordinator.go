package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/busalert/internal/domain"
	"github.com/Domenick1991/busalert/internal/kafka"
	"github.com/google/uuid"
)

const markTimeout = 5 * time.Second

type CoordinatorUseCase interface {
	Dispatch(ctx context.Context, requests []domain.NotificationRequest)
}

// Channel delivers a rendered message to a phone number.
type Channel interface {
	SendText(ctx context.Context, phone, body string) error
	PlaceVoiceCall(ctx context.Context, phone, body string) error
}

// Store flips a passenger to notified by passenger id.
type Store interface {
	MarkNotified(ctx context.Context, passengerID string, at time.Time) (*domain.Passenger, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Coordinator struct {
	channel  Channel
	store    Store
	producer Producer
	topic    string
	now      func() time.Time
}

type CoordinatorOption func(*Coordinator)

// WithEvents publishes a NotificationEvent to topic after each passenger is marked.
func WithEvents(producer Producer, topic string) CoordinatorOption {
	return func(c *Coordinator) {
		c.producer = producer
		c.topic = topic
	}
}

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

func NewCoordinator(channel Channel, store Store, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		channel: channel,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatch alerts every passenger in requests. For each one the SMS and the
// voice call are attempted independently and the notified flag is written
// afterwards no matter how delivery went. Nothing is returned to the caller:
// failures are logged per passenger.
func (c *Coordinator) Dispatch(ctx context.Context, requests []domain.NotificationRequest) {
	for _, req := range requests {
		c.dispatchOne(ctx, req)
	}
}

func (c *Coordinator) dispatchOne(ctx context.Context, req domain.NotificationRequest) {
	body := RenderMessage(req)

	smsSent := attempt(req.PassengerID, "sms", func() error {
		return c.channel.SendText(ctx, req.PassengerPhone, body)
	})
	callPlaced := attempt(req.PassengerID, "voice call", func() error {
		return c.channel.PlaceVoiceCall(ctx, req.PassengerPhone, body)
	})

	// the flag write must outlive a caller that went away after delivery
	markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	at := c.now()
	if _, err := c.store.MarkNotified(markCtx, req.PassengerID, at); err != nil {
		if domain.IsNotFound(err) {
			log.Printf("mark notified skipped, passenger gone passenger_id=%s", req.PassengerID)
			return
		}
		log.Printf("mark notified failed passenger_id=%s: %v", req.PassengerID, err)
		return
	}
	log.Printf("passenger notified passenger_id=%s eta_minutes=%d sms=%t call=%t",
		req.PassengerID, req.EstimatedMinutes, smsSent, callPlaced)

	c.publish(markCtx, req, at, smsSent, callPlaced)
}

// attempt runs one delivery step. Errors and panics are logged and reported
// as false so the remaining steps still run.
func attempt(passengerID, kind string, send func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("%s panic passenger_id=%s: %v", kind, passengerID, r)
			ok = false
		}
	}()
	if err := send(); err != nil {
		log.Printf("%s failed passenger_id=%s: %v", kind, passengerID, err)
		return false
	}
	return true
}

func (c *Coordinator) publish(ctx context.Context, req domain.NotificationRequest, at time.Time, smsSent, callPlaced bool) {
	if c.producer == nil || c.topic == "" {
		return
	}
	event := kafka.NotificationEvent{
		ID:               uuid.NewString(),
		Type:             kafka.EventPassengerNotified,
		PassengerID:      req.PassengerID,
		EstimatedMinutes: req.EstimatedMinutes,
		SMSSent:          smsSent,
		CallPlaced:       callPlaced,
		NotifiedAt:       at,
	}
	if err := c.producer.Publish(ctx, c.topic, req.PassengerID, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for passenger %s: %v", event.Type, req.PassengerID, err)
	}
}

// RenderMessage builds the alert text shared by SMS and voice.
func RenderMessage(req domain.NotificationRequest) string {
	name := req.PassengerName
	if name == "" {
		name = "Passenger"
	}
	address := req.PickupAddress
	if address == "" {
		address = "your pickup location"
	}
	return fmt.Sprintf("Dear %s, your bus will arrive at %s in approximately %d minutes. Please be ready at the pickup point.",
		name, address, req.EstimatedMinutes)
}

var _ CoordinatorUseCase = (*Coordinator)(nil)
