package kafka

import "tcg-tracker/internal/config"

const popularityGroup = "collection-popularity"

type KafkaBundle struct {
	CollectionProducer *Producer
	CollectionConsumer *Consumer
}

// InitKafka returns nil when no brokers are configured.
func InitKafka(cfg *config.Config) (*KafkaBundle, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, nil
	}
	producer, err := NewProducer(cfg.KafkaBrokers, cfg.CollectionTopic)
	if err != nil {
		return nil, err
	}
	consumer, err := NewConsumer(cfg.KafkaBrokers, cfg.CollectionTopic, popularityGroup)
	if err != nil {
		producer.Close()
		return nil, err
	}
	return &KafkaBundle{CollectionProducer: producer, CollectionConsumer: consumer}, nil
}

func (b *KafkaBundle) Close() {
	if b == nil {
		return
	}
	b.CollectionConsumer.Stop()
	b.CollectionProducer.Close()
}
