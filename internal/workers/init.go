package workers

import (
	"context"

	"tcg-tracker/internal/kafka"
	"tcg-tracker/internal/models"
)

const eventBuffer = 100

type WorkerBundle struct {
	PopularityWorker *GenericWorker[models.CollectionEvent]
	// Publisher is where collection events should be sent: the Kafka
	// producer when configured, the in-process channel otherwise.
	Publisher kafka.ProducerInterface
}

// StartAllWorkers starts the popularity pipeline. Without a recorder only the
// Kafka producer (if any) is returned, so events are still published.
func StartAllWorkers(ctx context.Context, recorder PopularityRecorder, kafkaBundle *kafka.KafkaBundle) *WorkerBundle {
	bundle := &WorkerBundle{}
	if kafkaBundle != nil {
		bundle.Publisher = kafkaBundle.CollectionProducer
	}
	if recorder == nil {
		return bundle
	}

	eventsCh := make(chan []byte, eventBuffer)
	if kafkaBundle != nil {
		StartEventMultiplexer(ctx, kafkaBundle.CollectionConsumer, eventsCh)
	} else {
		bundle.Publisher = NewChannelPublisher(eventsCh)
	}

	bundle.PopularityWorker = NewGenericWorker(eventsCh, NewPopularityHandler(recorder))
	go bundle.PopularityWorker.Start(ctx)
	return bundle
}
