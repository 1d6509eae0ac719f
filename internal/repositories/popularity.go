package repositories

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"tcg-tracker/internal/models"
)

const PopularityKey = "popular:saved"

// PopularityRepository counts how often each card is saved, as a sorted set.
type PopularityRepository struct {
	redis *redis.Client
	key   string
}

func NewPopularityRepository(rdb *redis.Client) *PopularityRepository {
	return &PopularityRepository{redis: rdb, key: PopularityKey}
}

// Record applies one collection event. Cards whose count drops to zero leave
// the ranking.
func (r *PopularityRepository) Record(ctx context.Context, event models.CollectionEvent) error {
	var delta float64
	switch event.Type {
	case models.CollectionAdd:
		delta = 1
	case models.CollectionRemove:
		delta = -1
	default:
		return fmt.Errorf("unknown collection event %q", event.Type)
	}

	score, err := r.redis.ZIncrBy(ctx, r.key, delta, event.CardID).Result()
	if err != nil {
		return fmt.Errorf("zincrby %s: %w", event.CardID, err)
	}
	if score <= 0 {
		if err := r.redis.ZRem(ctx, r.key, event.CardID).Err(); err != nil {
			return fmt.Errorf("zrem %s: %w", event.CardID, err)
		}
	}
	log.Printf("📈 %s %s -> %.0f", event.Type, event.CardID, score)
	return nil
}

// Top returns up to n cards, most saved first.
func (r *PopularityRepository) Top(ctx context.Context, n int) ([]models.TrendingCard, error) {
	if n < 1 {
		return []models.TrendingCard{}, nil
	}
	entries, err := r.redis.ZRevRangeWithScores(ctx, r.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", r.key, err)
	}
	out := make([]models.TrendingCard, 0, len(entries))
	for _, e := range entries {
		id, ok := e.Member.(string)
		if !ok {
			continue
		}
		out = append(out, models.TrendingCard{CardID: id, Saves: int64(e.Score)})
	}
	return out, nil
}
