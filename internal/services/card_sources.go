package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"tcg-tracker/internal/api"
	"tcg-tracker/internal/models"
)

// PopularSets are sampled when a listing names no set.
var PopularSets = []string{"swsh1", "swsh9", "sv01", "sv02", "sv03", "base1", "swsh10", "swsh11"}

const detailConcurrency = 4

// PokemonTCGSource is source A: the official API, filtered and paged upstream.
type PokemonTCGSource struct {
	client *api.PokemonTCGClient
}

func NewPokemonTCGSource(client *api.PokemonTCGClient) *PokemonTCGSource {
	return &PokemonTCGSource{client: client}
}

func (s *PokemonTCGSource) Name() string { return api.SourcePokemonTCG }

func (s *PokemonTCGSource) Cards(ctx context.Context, q CardQuery) (models.CardPage, error) {
	var predicates []string
	if q.Q != "" {
		predicates = append(predicates, "("+q.Q+")")
	}
	if f := api.FilterQuery(q.Filter); f != "" {
		predicates = append(predicates, f)
	}
	if p := api.Predicate("set.id", q.SetID); p != "" {
		predicates = append(predicates, p)
	}
	return s.client.Cards(ctx, api.CardsQuery{
		Q:        strings.Join(predicates, " "),
		Page:     q.page(),
		PageSize: q.pageSize(),
		OrderBy:  q.OrderBy,
	})
}

func (s *PokemonTCGSource) Card(ctx context.Context, id string) (models.Card, error) {
	return s.client.Card(ctx, id)
}

// TCGdexSource is source B. Name searches are ranked locally; everything else
// is a random sample of one set with details fetched in parallel.
type TCGdexSource struct {
	client *api.TCGdexClient
	sets   []string
}

func NewTCGdexSource(client *api.TCGdexClient) *TCGdexSource {
	return &TCGdexSource{client: client, sets: PopularSets}
}

func (s *TCGdexSource) Name() string { return api.SourceTCGdex }

func (s *TCGdexSource) Card(ctx context.Context, id string) (models.Card, error) {
	return s.client.Card(ctx, id)
}

func (s *TCGdexSource) Cards(ctx context.Context, q CardQuery) (models.CardPage, error) {
	if q.Filter.Name != "" {
		return s.search(ctx, q)
	}
	return s.sample(ctx, q)
}

func (s *TCGdexSource) search(ctx context.Context, q CardQuery) (models.CardPage, error) {
	briefs, err := s.client.SearchByName(ctx, q.Filter.Name)
	if err != nil {
		return models.CardPage{}, err
	}
	ranked := rankByName(briefs, q.Filter.Name)
	rest := q.Filter
	rest.Name = ""

	// Briefs carry no set, type or rarity, so any of those filters needs the
	// details of every candidate before the page can be cut.
	if rest.IsZero() && q.SetID == "" {
		cards, err := s.details(ctx, paginate(ranked, q.page(), q.pageSize()))
		if err != nil {
			return models.CardPage{}, err
		}
		return models.CardPage{Cards: cards, Page: q.page(), PageSize: q.pageSize(), TotalCount: len(ranked)}, nil
	}

	candidates, err := s.details(ctx, ranked[:min(len(ranked), MaxPageSize)])
	if err != nil {
		return models.CardPage{}, err
	}
	matched := filterCards(candidates, rest, q.SetID)
	return models.CardPage{
		Cards:      paginate(matched, q.page(), q.pageSize()),
		Page:       q.page(),
		PageSize:   q.pageSize(),
		TotalCount: len(matched),
	}, nil
}

// sample returns up to pageSize random cards of q.SetID, or of a random
// popular set. Not reproducible between calls.
func (s *TCGdexSource) sample(ctx context.Context, q CardQuery) (models.CardPage, error) {
	setID := q.SetID
	if setID == "" {
		if len(s.sets) == 0 {
			return models.CardPage{}, fmt.Errorf("tcgdex: no set to sample")
		}
		setID = s.sets[rand.IntN(len(s.sets))]
	}

	set, err := s.client.Set(ctx, setID)
	if err != nil {
		return models.CardPage{}, err
	}

	briefs := set.Cards
	rand.Shuffle(len(briefs), func(i, j int) { briefs[i], briefs[j] = briefs[j], briefs[i] })
	n := q.PageSize
	if n < 1 {
		n = DefaultSampleSize
	}
	if n > len(briefs) {
		n = len(briefs)
	}

	cards, err := s.details(ctx, briefs[:n])
	if err != nil {
		return models.CardPage{}, err
	}
	cards = filterCards(cards, q.Filter, "")
	return models.CardPage{
		Cards:      cards,
		Page:       1,
		PageSize:   n,
		TotalCount: len(set.Cards),
	}, nil
}

// details fetches full cards for briefs, at most detailConcurrency at a time.
// Failed lookups are dropped; order follows briefs.
func (s *TCGdexSource) details(ctx context.Context, briefs []models.Card) ([]models.Card, error) {
	if len(briefs) == 0 {
		return []models.Card{}, nil
	}
	results := make([]*models.Card, len(briefs))
	sem := semaphore.NewWeighted(int64(min(detailConcurrency, len(briefs))))
	var g errgroup.Group

	for i, brief := range briefs {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			card, err := s.client.Card(ctx, brief.ID)
			if err != nil {
				return nil
			}
			if card.Set.ID == "" {
				card.Set = brief.Set
			}
			results[i] = &card
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0, len(results))
	for _, c := range results {
		if c != nil {
			cards = append(cards, *c)
		}
	}
	return cards, nil
}

// StaticFeedSource is source C: one published list, filtered and paged here.
type StaticFeedSource struct {
	client *api.StaticFeedClient
}

func NewStaticFeedSource(client *api.StaticFeedClient) *StaticFeedSource {
	return &StaticFeedSource{client: client}
}

func (s *StaticFeedSource) Name() string { return api.SourceStaticFeed }

func (s *StaticFeedSource) Cards(ctx context.Context, q CardQuery) (models.CardPage, error) {
	all, err := s.client.Cards(ctx)
	if err != nil {
		return models.CardPage{}, err
	}
	matched := all
	if q.Filter.Name != "" {
		matched = rankByName(matched, q.Filter.Name)
	}
	rest := q.Filter
	rest.Name = ""
	matched = filterCards(matched, rest, q.SetID)

	return models.CardPage{
		Cards:      paginate(matched, q.page(), q.pageSize()),
		Page:       q.page(),
		PageSize:   q.pageSize(),
		TotalCount: len(matched),
	}, nil
}

func (s *StaticFeedSource) Card(ctx context.Context, id string) (models.Card, error) {
	all, err := s.client.Cards(ctx)
	if err != nil {
		return models.Card{}, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Card{}, ErrNotFound
}

type cardNames []models.Card

func (c cardNames) String(i int) string { return c[i].Name }
func (c cardNames) Len() int            { return len(c) }

// rankByName keeps cards whose name fuzzily matches pattern, best first.
func rankByName(cards []models.Card, pattern string) []models.Card {
	matches := fuzzy.FindFrom(strings.ToLower(pattern), lowerNames(cards))
	out := make([]models.Card, 0, len(matches))
	for _, m := range matches {
		out = append(out, cards[m.Index])
	}
	return out
}

func lowerNames(cards []models.Card) cardNames {
	lowered := make(cardNames, len(cards))
	for i, c := range cards {
		lowered[i] = c
		lowered[i].Name = strings.ToLower(c.Name)
	}
	return lowered
}

func filterCards(cards []models.Card, f models.CardFilter, setID string) []models.Card {
	if f.IsZero() && setID == "" {
		return cards
	}
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if setID != "" && !strings.EqualFold(c.Set.ID, setID) {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Set != "" && !strings.EqualFold(c.Set.Name, f.Set) && !strings.EqualFold(c.Set.ID, f.Set) {
			continue
		}
		if f.Rarity != "" && !strings.EqualFold(c.Rarity, f.Rarity) {
			continue
		}
		if f.Type != "" && !hasType(c.Types, f.Type) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

func paginate(cards []models.Card, page, size int) []models.Card {
	start := (page - 1) * size
	if start >= len(cards) {
		return []models.Card{}
	}
	end := min(start+size, len(cards))
	return cards[start:end]
}
