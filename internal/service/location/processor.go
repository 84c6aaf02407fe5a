package location

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/busalert/internal/domain"
	"github.com/Domenick1991/busalert/internal/eta"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultThresholdMinutes = 10
	defaultConcurrency      = 4
)

type ProcessorUseCase interface {
	Process(ctx context.Context, busID string, busLat, busLng float64) ([]domain.NotificationRequest, error)
}

// PassengerLookup resolves a bus to the passengers still waiting for an alert.
type PassengerLookup interface {
	UnnotifiedByBus(ctx context.Context, busID string) ([]domain.Passenger, error)
}

type Processor struct {
	passengers       PassengerLookup
	estimator        eta.Estimator
	thresholdMinutes int64
	concurrency      int
}

type ProcessorOption func(*Processor)

func WithThreshold(minutes int64) ProcessorOption {
	return func(p *Processor) {
		p.thresholdMinutes = minutes
	}
}

// WithConcurrency bounds how many ETAs are estimated at once for one event.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func NewProcessor(passengers PassengerLookup, estimator eta.Estimator, opts ...ProcessorOption) *Processor {
	p := &Processor{
		passengers:       passengers,
		estimator:        estimator,
		thresholdMinutes: DefaultThresholdMinutes,
		concurrency:      defaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type estimate struct {
	minutes int64
	err     error
}

// Process returns a request for every unnotified passenger of busID whose ETA
// is at or under the threshold, in lookup order. A passenger record that
// cannot be estimated is logged and left out; it never fails its siblings.
func (p *Processor) Process(ctx context.Context, busID string, busLat, busLng float64) ([]domain.NotificationRequest, error) {
	passengers, err := p.passengers.UnnotifiedByBus(ctx, busID)
	if err != nil {
		return nil, fmt.Errorf("lookup passengers: %w", err)
	}
	requests := make([]domain.NotificationRequest, 0)
	if len(passengers) == 0 {
		return requests, nil
	}

	estimates := make([]estimate, len(passengers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range passengers {
		g.Go(func() error {
			minutes, err := p.estimatePassenger(gctx, busLat, busLng, passengers[i])
			estimates[i] = estimate{minutes: minutes, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, passenger := range passengers {
		est := estimates[i]
		if est.err != nil {
			log.Printf("skip passenger bus_id=%s passenger_id=%s: %v", busID, passenger.PassengerID, est.err)
			continue
		}
		if est.minutes > p.thresholdMinutes {
			continue
		}
		log.Printf("passenger within threshold bus_id=%s passenger_id=%s eta_minutes=%d threshold=%d",
			busID, passenger.PassengerID, est.minutes, p.thresholdMinutes)
		requests = append(requests, toRequest(passenger, est.minutes))
	}
	return requests, nil
}

func (p *Processor) estimatePassenger(ctx context.Context, busLat, busLng float64, passenger domain.Passenger) (int64, error) {
	if !passenger.HasPickup() {
		field := "pickup_latitude"
		if passenger.PickupLatitude != nil {
			field = "pickup_longitude"
		}
		return 0, domain.InvalidPassengerRecordError{PassengerID: passenger.PassengerID, Field: field}
	}
	minutes, err := p.estimator.Estimate(ctx, busLat, busLng, *passenger.PickupLatitude, *passenger.PickupLongitude)
	if err != nil {
		return 0, fmt.Errorf("estimate eta: %w", err)
	}
	return minutes, nil
}

func toRequest(p domain.Passenger, minutes int64) domain.NotificationRequest {
	return domain.NotificationRequest{
		PassengerID:      p.PassengerID,
		PassengerName:    p.Name,
		PassengerPhone:   p.Phone,
		PickupLatitude:   *p.PickupLatitude,
		PickupLongitude:  *p.PickupLongitude,
		PickupAddress:    p.PickupAddress,
		EstimatedMinutes: minutes,
	}
}

var _ ProcessorUseCase = (*Processor)(nil)
