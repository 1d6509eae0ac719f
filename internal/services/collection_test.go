package services

import (
	"context"
	"sync"
	"testing"

	"tcg-tracker/internal/models"
	"tcg-tracker/internal/repositories"
	"tcg-tracker/internal/storage"
)

type recordingProducer struct {
	mu     sync.Mutex
	events []models.CollectionEvent
}

func (p *recordingProducer) PublishObjectAsync(key []byte, obj interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, obj.(models.CollectionEvent))
}

func TestCollectionService_PublishesChanges(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	producer := &recordingProducer{}
	svc := NewCollectionService(repositories.NewCollectionRepository(ctx, store), producer)

	svc.Add(ctx, "base1-4")
	svc.Add(ctx, "base1-4")
	svc.Remove(ctx, "base1-4")
	svc.Remove(ctx, "base1-4")

	if len(producer.events) != 2 {
		t.Fatalf("events = %+v, want add and remove only", producer.events)
	}
	if producer.events[0].Type != models.CollectionAdd || producer.events[1].Type != models.CollectionRemove {
		t.Errorf("events = %+v", producer.events)
	}
	if svc.Contains("base1-4") || len(svc.List()) != 0 {
		t.Error("collection not empty")
	}
}

func TestCollectionService_NoProducer(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	svc := NewCollectionService(repositories.NewCollectionRepository(ctx, store), nil)
	if added, err := svc.Add(ctx, "sv01-1"); err != nil || !added {
		t.Fatalf("added=%v err=%v", added, err)
	}
}
