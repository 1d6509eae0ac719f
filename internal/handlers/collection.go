package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tcg-tracker/internal/models"
)

type Collection interface {
	Add(ctx context.Context, id string) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)
	Contains(id string) bool
	List() []models.SavedCard
}

type CardResolver interface {
	CollectionCards(ctx context.Context, saved []models.SavedCard) []models.Card
}

type CollectionHandler struct {
	collection Collection
	cards      CardResolver
}

func NewCollectionHandler(collection Collection, cards CardResolver) *CollectionHandler {
	return &CollectionHandler{collection: collection, cards: cards}
}

type collectionView struct {
	Entries []models.SavedCard `json:"entries"`
	Cards   []models.Card      `json:"cards"`
}

// List returns the saved entries and the cards they resolve to; entries that
// no longer resolve are still listed.
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.collection.List()
	view := collectionView{Entries: entries, Cards: []models.Card{}}
	if len(entries) > 0 {
		view.Cards = h.cards.CollectionCards(r.Context(), entries)
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "saved": h.collection.Contains(id)})
}

func (h *CollectionHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	added, err := h.collection.Add(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"id": id, "saved": true})
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.collection.Remove(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "saved": false, "removed": removed})
}
