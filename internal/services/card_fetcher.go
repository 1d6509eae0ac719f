package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tcg-tracker/internal/api"
	"tcg-tracker/internal/models"
)

var (
	// ErrNoSourceAvailable means every source failed or returned nothing.
	ErrNoSourceAvailable = errors.New("no card source available")
	// ErrNotFound means no source knows the requested id.
	ErrNotFound = errors.New("card not found")

	errNoCards = errors.New("no usable cards")
)

const (
	DefaultPageSize   = 20
	MaxPageSize       = 250
	DefaultSampleSize = 8
)

// CardQuery is one listing request, understood by every source.
type CardQuery struct {
	Filter models.CardFilter
	// SetID restricts the listing to one set.
	SetID string
	// Q is an extra pokemontcg.io predicate; other sources ignore it.
	Q        string
	OrderBy  string
	Page     int
	PageSize int
}

// Filtered reports whether an empty answer is a legitimate "nothing matched".
func (q CardQuery) Filtered() bool {
	return !q.Filter.IsZero() || q.SetID != ""
}

func (q CardQuery) page() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

func (q CardQuery) pageSize() int {
	switch {
	case q.PageSize < 1:
		return DefaultPageSize
	case q.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return q.PageSize
	}
}

// CardSource is one upstream able to answer a CardQuery with normalized cards.
type CardSource interface {
	Name() string
	Cards(ctx context.Context, q CardQuery) (models.CardPage, error)
	Card(ctx context.Context, id string) (models.Card, error)
}

// MultiSourceFetcher asks sources in priority order; the first non-empty
// answer wins as a whole. Answers are never merged.
type MultiSourceFetcher struct {
	sources []CardSource
}

func NewMultiSourceFetcher(sources ...CardSource) *MultiSourceFetcher {
	return &MultiSourceFetcher{sources: sources}
}

func (f *MultiSourceFetcher) Fetch(ctx context.Context, q CardQuery) (models.CardPage, error) {
	var errs []error
	answeredEmpty := false

	for _, src := range f.sources {
		if err := ctx.Err(); err != nil {
			return models.CardPage{}, err
		}
		page, err := src.Cards(ctx, q)
		if err != nil {
			log.Printf("⚠️ %s: cards failed: %v", src.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		if len(page.Cards) == 0 {
			log.Printf("%s: no cards, trying next source", src.Name())
			answeredEmpty = true
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), errNoCards))
			continue
		}
		page.Source = src.Name()
		return page, nil
	}

	if answeredEmpty && q.Filtered() {
		return models.CardPage{Cards: []models.Card{}, Page: q.page(), PageSize: q.pageSize()}, nil
	}
	return models.CardPage{}, fmt.Errorf("%w: %w", ErrNoSourceAvailable, errors.Join(errs...))
}

// Card looks id up in each source in order. ErrNotFound is returned only when
// every source answered 404 or an empty result.
func (f *MultiSourceFetcher) Card(ctx context.Context, id string) (models.Card, error) {
	var errs []error
	allMissing := true

	for _, src := range f.sources {
		if err := ctx.Err(); err != nil {
			return models.Card{}, err
		}
		card, err := src.Card(ctx, id)
		if err == nil {
			card.Source = src.Name()
			return card, nil
		}
		if !api.IsNotFound(err) && !errors.Is(err, ErrNotFound) {
			allMissing = false
			log.Printf("⚠️ %s: card %s failed: %v", src.Name(), id, err)
		}
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}

	if allMissing {
		return models.Card{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return models.Card{}, fmt.Errorf("%w: %w", ErrNoSourceAvailable, errors.Join(errs...))
}
