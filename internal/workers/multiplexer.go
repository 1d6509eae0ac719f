package workers

import (
	"context"
	"encoding/json"
	"log"

	"tcg-tracker/internal/kafka"
	"tcg-tracker/internal/models"
)

// StartEventMultiplexer forwards collection events from the consumer to
// outCh. Anything else is logged and skipped; a full channel drops.
func StartEventMultiplexer(ctx context.Context, consumer *kafka.Consumer, outCh chan []byte) {
	if consumer == nil || outCh == nil {
		return
	}
	consumer.Start(ctx, func(key, value []byte) {
		route(value, outCh)
	})
}

func route(value []byte, outCh chan []byte) {
	var wrapper struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(value, &wrapper); err != nil {
		log.Printf("Invalid message in multiplexer: %v", err)
		return
	}

	switch wrapper.Type {
	case models.CollectionAdd, models.CollectionRemove:
		select {
		case outCh <- value:
		default:
			log.Printf("⚠️ Channel full, dropping %s", wrapper.Type)
		}
	default:
		log.Printf("Unknown message type: %s", wrapper.Type)
	}
}

// ChannelPublisher delivers events straight to the workers when no broker is
// configured.
type ChannelPublisher struct {
	out chan []byte
}

func NewChannelPublisher(out chan []byte) *ChannelPublisher {
	return &ChannelPublisher{out: out}
}

func (p *ChannelPublisher) PublishObjectAsync(key []byte, obj interface{}) {
	value, err := json.Marshal(obj)
	if err != nil {
		log.Printf("Failed to marshal event: %v", err)
		return
	}
	route(value, p.out)
}
