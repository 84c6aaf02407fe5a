package approach

import (
	"context"
	"fmt"
	"log"

	"github.com/Domenick1991/busalert/internal/domain"
	"github.com/Domenick1991/busalert/internal/service/location"
	"github.com/Domenick1991/busalert/internal/service/notification"
)

type PipelineUseCase interface {
	Handle(ctx context.Context, event domain.LocationEvent) (int, error)
}

// Locker serialises work per bus. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, busID string) (func(), error)
}

// Pipeline runs one location event end to end: it finds the passengers the
// bus is about to reach and alerts them. Events for the same bus never
// overlap, so a passenger is not alerted twice by two concurrent updates.
type Pipeline struct {
	processor   location.ProcessorUseCase
	coordinator notification.CoordinatorUseCase
	locker      Locker
}

func NewPipeline(processor location.ProcessorUseCase, coordinator notification.CoordinatorUseCase, locker Locker) *Pipeline {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Pipeline{
		processor:   processor,
		coordinator: coordinator,
		locker:      locker,
	}
}

// Handle returns how many passengers were handed to the coordinator.
func (p *Pipeline) Handle(ctx context.Context, event domain.LocationEvent) (int, error) {
	if event.BusID == "" {
		return 0, domain.ValidationError{Field: "bus_id", Msg: "is required"}
	}

	unlock, err := p.locker.Lock(ctx, event.BusID)
	if err != nil {
		return 0, fmt.Errorf("lock bus %s: %w", event.BusID, err)
	}
	defer unlock()

	requests, err := p.processor.Process(ctx, event.BusID, event.Latitude, event.Longitude)
	if err != nil {
		return 0, err
	}
	if len(requests) == 0 {
		return 0, nil
	}

	log.Printf("dispatching notifications bus_id=%s count=%d", event.BusID, len(requests))
	p.coordinator.Dispatch(ctx, requests)
	return len(requests), nil
}

var _ PipelineUseCase = (*Pipeline)(nil)
