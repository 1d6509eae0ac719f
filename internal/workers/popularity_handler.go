package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"tcg-tracker/internal/models"
)

type PopularityRecorder interface {
	Record(ctx context.Context, event models.CollectionEvent) error
}

// PopularityHandler feeds collection events into the save ranking.
type PopularityHandler struct {
	recorder PopularityRecorder
}

func NewPopularityHandler(recorder PopularityRecorder) PopularityHandler {
	return PopularityHandler{recorder: recorder}
}

func (PopularityHandler) Type() string {
	return "popularity"
}

func (PopularityHandler) Decode(key, value []byte) (*models.CollectionEvent, error) {
	var event models.CollectionEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return nil, fmt.Errorf("invalid collection event JSON: %w", err)
	}
	if event.CardID == "" {
		return nil, fmt.Errorf("collection event without card id")
	}
	switch event.Type {
	case models.CollectionAdd, models.CollectionRemove:
	default:
		return nil, fmt.Errorf("unknown collection event type %q", event.Type)
	}
	return &event, nil
}

func (h PopularityHandler) Apply(ctx context.Context, event *models.CollectionEvent) error {
	return h.recorder.Record(ctx, *event)
}
