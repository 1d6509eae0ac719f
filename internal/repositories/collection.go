package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"tcg-tracker/internal/models"
	"tcg-tracker/internal/storage"
)

const CollectionKey = "pokemon-card-collection"

var ErrEmptyCardID = errors.New("card id is empty")

// CollectionRepository is the saved-card list. Every mutation rewrites the
// whole list under CollectionKey before it becomes visible.
type CollectionRepository struct {
	mu    sync.RWMutex
	store storage.Store
	cards []models.SavedCard
	index map[string]int
	now   func() time.Time
}

// NewCollectionRepository loads the stored list. Missing or unreadable data
// starts an empty collection.
func NewCollectionRepository(ctx context.Context, store storage.Store) *CollectionRepository {
	r := &CollectionRepository{store: store, now: time.Now}
	r.cards = r.load(ctx)
	r.reindex()
	return r
}

func (r *CollectionRepository) load(ctx context.Context) []models.SavedCard {
	data, err := r.store.Get(ctx, CollectionKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Printf("⚠️ collection load failed, starting empty: %v", err)
		return nil
	}

	var saved []models.SavedCard
	if err := json.Unmarshal(data, &saved); err != nil {
		log.Printf("⚠️ stored collection is malformed, starting empty: %v", err)
		return nil
	}

	// drop blank and repeated ids a foreign writer may have left
	out := saved[:0]
	seen := make(map[string]bool, len(saved))
	for _, c := range saved {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

func (r *CollectionRepository) reindex() {
	r.index = make(map[string]int, len(r.cards))
	for i, c := range r.cards {
		r.index[c.ID] = i
	}
}

// Add saves id. Adding an id already present changes nothing and reports false.
func (r *CollectionRepository) Add(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrEmptyCardID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; ok {
		return false, nil
	}

	next := make([]models.SavedCard, len(r.cards), len(r.cards)+1)
	copy(next, r.cards)
	next = append(next, models.SavedCard{ID: id, AddedAt: r.now().UTC()})
	if err := r.persist(ctx, next); err != nil {
		return false, err
	}
	r.cards = next
	r.index[id] = len(next) - 1
	return true, nil
}

// Remove drops id. Removing an absent id reports false.
func (r *CollectionRepository) Remove(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, ErrEmptyCardID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.index[id]
	if !ok {
		return false, nil
	}

	next := make([]models.SavedCard, 0, len(r.cards)-1)
	next = append(next, r.cards[:pos]...)
	next = append(next, r.cards[pos+1:]...)
	if err := r.persist(ctx, next); err != nil {
		return false, err
	}
	r.cards = next
	r.reindex()
	return true, nil
}

func (r *CollectionRepository) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[strings.TrimSpace(id)]
	return ok
}

// List returns the saved cards in insertion order.
func (r *CollectionRepository) List() []models.SavedCard {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.SavedCard, len(r.cards))
	copy(out, r.cards)
	return out
}

func (r *CollectionRepository) persist(ctx context.Context, cards []models.SavedCard) error {
	if cards == nil {
		cards = []models.SavedCard{}
	}
	data, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := r.store.Set(ctx, CollectionKey, data, 0); err != nil {
		log.Printf("❌ Failed to save collection: %v", err)
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}
