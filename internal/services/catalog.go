package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"tcg-tracker/internal/api"
	"tcg-tracker/internal/models"
	"tcg-tracker/internal/pricing"
	"tcg-tracker/internal/query"
)

const (
	PriceStaleTime    = 2 * time.Minute
	FeaturedStaleTime = 10 * time.Minute
	SetCardsStaleTime = 15 * time.Minute
	SetsStaleTime     = 30 * time.Minute

	recentOrder        = "-set.releaseDate"
	collectionParallel = 6
)

type SetLister interface {
	Sets(ctx context.Context, series string) ([]models.CardSet, error)
}

// CatalogService answers every card, set and price read through the query
// cache, so identical requests share one upstream round trip.
type CatalogService struct {
	query    *query.Client
	fetcher  *MultiSourceFetcher
	sets     SetLister
	currency *CurrencyService
}

func NewCatalogService(q *query.Client, fetcher *MultiSourceFetcher, sets SetLister, currency *CurrencyService) *CatalogService {
	return &CatalogService{query: q, fetcher: fetcher, sets: sets, currency: currency}
}

// Retryable is the retry policy of catalog reads: a definite "no such card"
// or an answer that was merely empty everywhere is final.
func Retryable(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if errors.Is(err, ErrNoSourceAvailable) && api.KindOf(err) == 0 {
		return false
	}
	return api.IsRetryable(err)
}

func clampLimit(limit, fallback int) int {
	if limit < 1 {
		return fallback
	}
	return min(limit, MaxPageSize)
}

// Featured lists rare cards for the home page.
func (s *CatalogService) Featured(ctx context.Context, limit int) (models.CardPage, error) {
	limit = clampLimit(limit, DefaultSampleSize)
	return query.Fetch(ctx, s.query, query.Key{"cards", "featured", limit},
		func(ctx context.Context) (models.CardPage, error) {
			return s.fetcher.Fetch(ctx, CardQuery{Q: api.PopularRarities, PageSize: limit})
		},
		query.WithStaleTime(FeaturedStaleTime), query.WithRetryIf(Retryable))
}

// Recent lists cards from the newest sets.
func (s *CatalogService) Recent(ctx context.Context, limit int) (models.CardPage, error) {
	limit = clampLimit(limit, DefaultSampleSize)
	return query.Fetch(ctx, s.query, query.Key{"cards", "recent", limit},
		func(ctx context.Context) (models.CardPage, error) {
			return s.fetcher.Fetch(ctx, CardQuery{OrderBy: recentOrder, PageSize: limit})
		},
		query.WithRetryIf(Retryable))
}

func (s *CatalogService) Search(ctx context.Context, filter models.CardFilter, page, pageSize int) (models.CardPage, error) {
	filter = models.CardFilter{
		Name:   strings.TrimSpace(filter.Name),
		Set:    strings.TrimSpace(filter.Set),
		Type:   strings.TrimSpace(filter.Type),
		Rarity: strings.TrimSpace(filter.Rarity),
	}
	q := CardQuery{Filter: filter, Page: page, PageSize: pageSize}
	key := query.Key{"cards", "search", filter.Name, filter.Set, filter.Type, filter.Rarity, q.page(), q.pageSize()}
	return query.Fetch(ctx, s.query, key,
		func(ctx context.Context) (models.CardPage, error) {
			return s.fetcher.Fetch(ctx, q)
		},
		query.WithRetryIf(Retryable))
}

func (s *CatalogService) Card(ctx context.Context, id string) (models.Card, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Card{}, ErrNotFound
	}
	return query.Fetch(ctx, s.query, query.Key{"cards", "detail", id},
		func(ctx context.Context) (models.Card, error) {
			return s.fetcher.Card(ctx, id)
		},
		query.WithRetryIf(Retryable))
}

// Refresh drops the cached detail and price of one card and fetches it again.
func (s *CatalogService) Refresh(ctx context.Context, id string) (models.Card, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Card{}, ErrNotFound
	}
	s.query.Invalidate(query.Key{"cards", "detail", id})
	s.query.Invalidate(query.Key{"cards", "price", id})
	return s.Card(ctx, id)
}

// CardPrice is the live display price of one card converted to the target
// currency. A card without usable pricing gives Available=false, not an error.
func (s *CatalogService) CardPrice(ctx context.Context, id, variant string) (models.PriceQuote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.PriceQuote{}, ErrNotFound
	}
	card, err := query.Fetch(ctx, s.query, query.Key{"cards", "price", id},
		func(ctx context.Context) (models.Card, error) {
			return s.fetcher.Card(ctx, id)
		},
		query.WithStaleTime(PriceStaleTime), query.WithRetryIf(Retryable))
	if err != nil {
		return models.PriceQuote{}, err
	}

	quote := models.PriceQuote{CardID: card.ID, Target: s.currency.Target()}
	price, ok := pricing.Normalize(card.Pricing)
	if !ok {
		return quote, nil
	}
	quote.Available = true
	quote.Price = &price
	quote.Converted = s.currency.Convert(ctx, price.Amount, price.Currency)
	if quote.Target == models.BRL {
		quote.Formatted = FormatBRL(quote.Converted)
	}
	if details, ok := pricing.Details(card.Pricing, variant); ok {
		quote.Details = details
	}
	return quote, nil
}

func (s *CatalogService) Sets(ctx context.Context, series string) ([]models.CardSet, error) {
	series = strings.TrimSpace(series)
	return query.Fetch(ctx, s.query, query.Key{"sets", series},
		func(ctx context.Context) ([]models.CardSet, error) {
			return s.sets.Sets(ctx, series)
		},
		query.WithStaleTime(SetsStaleTime), query.WithGCTime(2*SetsStaleTime))
}

func (s *CatalogService) SetCards(ctx context.Context, setID string, limit int) (models.CardPage, error) {
	setID = strings.TrimSpace(setID)
	limit = clampLimit(limit, DefaultPageSize)
	return query.Fetch(ctx, s.query, query.Key{"sets", setID, "cards", limit},
		func(ctx context.Context) (models.CardPage, error) {
			return s.fetcher.Fetch(ctx, CardQuery{SetID: setID, PageSize: limit})
		},
		query.WithStaleTime(SetCardsStaleTime), query.WithGCTime(2*SetCardsStaleTime), query.WithRetryIf(Retryable))
}

// CollectionCards resolves saved ids to cards; see CardsByID.
func (s *CatalogService) CollectionCards(ctx context.Context, saved []models.SavedCard) []models.Card {
	ids := make([]string, len(saved))
	for i, sc := range saved {
		ids[i] = sc.ID
	}
	return s.CardsByID(ctx, ids)
}

// CardsByID resolves ids to cards in parallel. Ids that fail to resolve are
// left out; order follows ids.
func (s *CatalogService) CardsByID(ctx context.Context, ids []string) []models.Card {
	results := make([]*models.Card, len(ids))
	sem := semaphore.NewWeighted(collectionParallel)
	var g errgroup.Group

	for i, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			card, err := s.Card(ctx, id)
			if err == nil {
				results[i] = &card
			}
			return nil
		})
	}
	_ = g.Wait()

	cards := make([]models.Card, 0, len(ids))
	for _, c := range results {
		if c != nil {
			cards = append(cards, *c)
		}
	}
	return cards
}

// Rates exposes the currency snapshot the price quotes are converted with.
func (s *CatalogService) Rates(ctx context.Context) models.ExchangeRateSnapshot {
	return s.currency.Rates(ctx)
}
