package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"tcg-tracker/internal/models"
)

type CardCatalog interface {
	Featured(ctx context.Context, limit int) (models.CardPage, error)
	Recent(ctx context.Context, limit int) (models.CardPage, error)
	Search(ctx context.Context, filter models.CardFilter, page, pageSize int) (models.CardPage, error)
	Card(ctx context.Context, id string) (models.Card, error)
	Refresh(ctx context.Context, id string) (models.Card, error)
	CardPrice(ctx context.Context, id, variant string) (models.PriceQuote, error)
	Sets(ctx context.Context, series string) ([]models.CardSet, error)
	SetCards(ctx context.Context, setID string, limit int) (models.CardPage, error)
}

type TrendingRanker interface {
	Top(ctx context.Context, limit int) ([]models.TrendingCard, error)
}

type CardHandler struct {
	catalog  CardCatalog
	trending TrendingRanker
}

func NewCardHandler(catalog CardCatalog, trending TrendingRanker) *CardHandler {
	return &CardHandler{catalog: catalog, trending: trending}
}

// Featured serves the home listing.
func (h *CardHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", 0)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}
	page, err := h.catalog.Featured(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CardHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", 0)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}
	page, err := h.catalog.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CardHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.CardFilter{
		Name:   strings.TrimSpace(q.Get("name")),
		Set:    strings.TrimSpace(q.Get("set")),
		Type:   strings.TrimSpace(q.Get("type")),
		Rarity: strings.TrimSpace(q.Get("rarity")),
	}
	if filter.IsZero() {
		badRequest(w, "at least one of name, set, type, rarity is required")
		return
	}
	page, ok := intParam(r, "page", 1)
	if !ok {
		badRequest(w, "page must be a positive integer")
		return
	}
	pageSize, ok := intParam(r, "pageSize", 0)
	if !ok {
		badRequest(w, "pageSize must be a positive integer")
		return
	}

	result, err := h.catalog.Search(r.Context(), filter, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *CardHandler) Card(w http.ResponseWriter, r *http.Request) {
	card, err := h.catalog.Card(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Refresh refetches one card, bypassing its cached detail and price.
func (h *CardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	card, err := h.catalog.Refresh(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Price serves the converted display price; ?variant= picks the breakdown.
func (h *CardHandler) Price(w http.ResponseWriter, r *http.Request) {
	quote, err := h.catalog.CardPrice(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("variant"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (h *CardHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", 0)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}
	top, err := h.trending.Top(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (h *CardHandler) Sets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.catalog.Sets(r.Context(), r.URL.Query().Get("series"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (h *CardHandler) SetCards(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(r, "limit", 0)
	if !ok {
		badRequest(w, "limit must be a positive integer")
		return
	}
	page, err := h.catalog.SetCards(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
