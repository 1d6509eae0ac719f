package services

import (
	"context"
	"errors"

	"tcg-tracker/internal/models"
)

var ErrTrendingUnavailable = errors.New("trending is not configured")

type PopularityReader interface {
	Top(ctx context.Context, n int) ([]models.TrendingCard, error)
}

// TrendingService ranks cards by how many collections saved them.
type TrendingService struct {
	popularity PopularityReader
	catalog    *CatalogService
}

// NewTrendingService accepts a nil reader; Top then reports ErrTrendingUnavailable.
func NewTrendingService(popularity PopularityReader, catalog *CatalogService) *TrendingService {
	return &TrendingService{popularity: popularity, catalog: catalog}
}

func (s *TrendingService) Top(ctx context.Context, limit int) ([]models.TrendingCard, error) {
	if s.popularity == nil {
		return nil, ErrTrendingUnavailable
	}
	ranked, err := s.popularity.Top(ctx, clampLimit(limit, DefaultSampleSize))
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.CardID
	}
	byID := make(map[string]models.Card, len(ranked))
	for _, c := range s.catalog.CardsByID(ctx, ids) {
		byID[c.ID] = c
	}
	for i := range ranked {
		if c, ok := byID[ranked[i].CardID]; ok {
			ranked[i].Card = &c
		}
	}
	return ranked, nil
}
