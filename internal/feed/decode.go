// Package feed turns raw location-feed payloads into location events. It
// accepts the service's own JSON schema and GTFS-Realtime vehicle positions.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/busalert/internal/domain"
	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/go-playground/validator/v10"
	"google.golang.org/protobuf/proto"
)

const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/x-protobuf"
)

// ErrMalformed wraps every payload that cannot become a location event.
var ErrMalformed = errors.New("malformed location payload")

var validate = validator.New()

type locationPayload struct {
	BusID     string   `json:"bus_id" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Timestamp string   `json:"timestamp"`
}

// Decode parses one feed message. An empty content type means JSON.
func Decode(contentType string, payload []byte) ([]domain.LocationEvent, error) {
	switch mediaType(contentType) {
	case "", ContentTypeJSON:
		event, err := DecodeJSON(payload)
		if err != nil {
			return nil, err
		}
		return []domain.LocationEvent{event}, nil
	case ContentTypeProtobuf:
		return DecodeGTFSRT(payload)
	default:
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrMalformed, contentType)
	}
}

func DecodeJSON(payload []byte) (domain.LocationEvent, error) {
	var p locationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return domain.LocationEvent{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate.Struct(p); err != nil {
		return domain.LocationEvent{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return domain.LocationEvent{
		BusID:     p.BusID,
		Latitude:  *p.Latitude,
		Longitude: *p.Longitude,
		Timestamp: p.Timestamp,
	}, nil
}

// DecodeGTFSRT extracts one event per vehicle position in a FeedMessage. The
// vehicle descriptor id is the bus id, falling back to the entity id.
func DecodeGTFSRT(payload []byte) ([]domain.LocationEvent, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(payload, &fm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	events := make([]domain.LocationEvent, 0, len(fm.GetEntity()))
	for _, e := range fm.GetEntity() {
		if e.GetIsDeleted() || e.Vehicle == nil || e.Vehicle.Position == nil {
			continue
		}
		vp := e.GetVehicle()

		busID := vp.GetVehicle().GetId()
		if busID == "" {
			busID = e.GetId()
		}
		if busID == "" {
			continue
		}

		event := domain.LocationEvent{
			BusID:     busID,
			Latitude:  float64(vp.GetPosition().GetLatitude()),
			Longitude: float64(vp.GetPosition().GetLongitude()),
		}
		if ts := vp.GetTimestamp(); ts > 0 {
			event.Timestamp = time.Unix(int64(ts), 0).UTC().Format(time.RFC3339)
		}
		events = append(events, event)
	}
	return events, nil
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
