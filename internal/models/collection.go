package models

import "time"

type SavedCard struct {
	ID      string    `json:"id"`
	AddedAt time.Time `json:"addedAt"`
}

// CollectionEvent is published on every collection mutation.
type CollectionEvent struct {
	Type   string    `json:"type"`
	CardID string    `json:"cardId"`
	At     time.Time `json:"at"`
}

const (
	CollectionAdd    = "collection.add"
	CollectionRemove = "collection.remove"
)

// TrendingCard is a card id ranked by how many collections hold it.
type TrendingCard struct {
	CardID string `json:"cardId"`
	Saves  int64  `json:"saves"`
	Card   *Card  `json:"card,omitempty"`
}
