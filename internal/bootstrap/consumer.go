package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Domenick1991/busalert/internal/feed"
	"github.com/Domenick1991/busalert/internal/service/approach"
	kafkaGo "github.com/segmentio/kafka-go"
)

// LocationMessageHandler turns one feed message into pipeline runs. The
// content-type header picks the decoder; without it the payload is JSON.
func LocationMessageHandler(pipeline approach.PipelineUseCase) func(context.Context, kafkaGo.Message) error {
	return func(ctx context.Context, msg kafkaGo.Message) error {
		events, err := feed.Decode(header(msg, "content-type"), msg.Value)
		if err != nil {
			return err
		}

		var failed int
		for _, event := range events {
			sent, err := pipeline.Handle(ctx, event)
			if err != nil {
				failed++
				log.Printf("process location failed bus_id=%s offset=%d: %v", event.BusID, msg.Offset, err)
				continue
			}
			if sent > 0 {
				log.Printf("location processed bus_id=%s notifications_sent=%d", event.BusID, sent)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d events failed", failed, len(events))
		}
		return nil
	}
}

func header(msg kafkaGo.Message, key string) string {
	for _, h := range msg.Headers {
		if strings.EqualFold(h.Key, key) {
			return string(h.Value)
		}
	}
	return ""
}
