package services

import (
	"context"
	"log"
	"strings"
	"time"

	"tcg-tracker/internal/kafka"
	"tcg-tracker/internal/models"
	"tcg-tracker/internal/repositories"
)

// CollectionService mutates the saved collection and announces each change
// on the event stream when a producer is configured.
type CollectionService struct {
	repo     *repositories.CollectionRepository
	producer kafka.ProducerInterface
	now      func() time.Time
}

func NewCollectionService(repo *repositories.CollectionRepository, producer kafka.ProducerInterface) *CollectionService {
	return &CollectionService{repo: repo, producer: producer, now: time.Now}
}

func (s *CollectionService) Add(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	added, err := s.repo.Add(ctx, id)
	if err != nil {
		return false, err
	}
	if added {
		log.Printf("⭐ saved card %s", id)
		s.publish(models.CollectionAdd, id)
	}
	return added, nil
}

func (s *CollectionService) Remove(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		log.Printf("removed card %s", id)
		s.publish(models.CollectionRemove, id)
	}
	return removed, nil
}

func (s *CollectionService) Contains(id string) bool {
	return s.repo.Contains(id)
}

func (s *CollectionService) List() []models.SavedCard {
	return s.repo.List()
}

func (s *CollectionService) publish(eventType, id string) {
	if s.producer == nil {
		return
	}
	s.producer.PublishObjectAsync([]byte(id), models.CollectionEvent{
		Type:   eventType,
		CardID: id,
		At:     s.now().UTC(),
	})
}
