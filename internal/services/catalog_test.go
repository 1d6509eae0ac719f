package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tcg-tracker/internal/api"
	"tcg-tracker/internal/models"
	"tcg-tracker/internal/query"
)

type fakeSets struct {
	calls int
}

func (f *fakeSets) Sets(ctx context.Context, series string) ([]models.CardSet, error) {
	f.calls++
	return []models.CardSet{{ID: "sv01", Name: "Scarlet & Violet", Series: series}}, nil
}

func ptr(v float64) *float64 { return &v }

func newCatalog(t *testing.T, sources ...CardSource) (*CatalogService, *fakeSets) {
	t.Helper()
	qc, err := query.NewClient(64, query.WithRetryDelay(func(int) time.Duration { return 0 }))
	if err != nil {
		t.Fatal(err)
	}
	currency, _, _ := newCurrency(t, &fakeRates{rates: map[models.Currency]float64{models.USD: 5, models.EUR: 6}})
	sets := &fakeSets{}
	return NewCatalogService(qc, NewMultiSourceFetcher(sources...), sets, currency), sets
}

func TestCardPrice(t *testing.T) {
	src := &fakeSource{name: "a", cards: []models.Card{
		{ID: "holo", Name: "Holo", Pricing: &models.RawPricing{TCGPlayer: &models.TCGPlayerPricing{
			Variants: map[string]models.TCGPlayerPrice{"holofoil": {Market: ptr(12.5), Low: ptr(10)}},
		}}},
		{ID: "eur", Name: "Eur", Pricing: &models.RawPricing{Cardmarket: &models.CardmarketPricing{Avg: ptr(9)}}},
		{ID: "none", Name: "None"},
	}}
	catalog, _ := newCatalog(t, src)
	ctx := context.Background()

	q, err := catalog.CardPrice(ctx, "holo", "")
	if err != nil {
		t.Fatal(err)
	}
	if !q.Available || q.Price.Currency != models.USD || q.Converted != 62.5 || q.Formatted != "R$ 62,50" {
		t.Errorf("holo quote = %+v", q)
	}
	if q.Details == nil || *q.Details.Low != 10 {
		t.Errorf("details = %+v", q.Details)
	}

	q, _ = catalog.CardPrice(ctx, "eur", "")
	if q.Price.Currency != models.EUR || q.Converted != 54 {
		t.Errorf("eur quote = %+v", q)
	}

	q, err = catalog.CardPrice(ctx, "none", "")
	if err != nil || q.Available || q.Price != nil {
		t.Errorf("unpriced quote = %+v err=%v", q, err)
	}

	if _, err := catalog.CardPrice(ctx, "missing", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRefresh_BypassesCachedCard(t *testing.T) {
	src := &fakeSource{name: "a", cards: []models.Card{{ID: "base1-4", Name: "Charizard"}}}
	catalog, _ := newCatalog(t, src)
	ctx := context.Background()

	if _, err := catalog.Card(ctx, "base1-4"); err != nil {
		t.Fatal(err)
	}
	if _, err := catalog.Card(ctx, "base1-4"); err != nil {
		t.Fatal(err)
	}
	if src.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 while cached", src.calls.Load())
	}

	src.cards[0].Name = "Charizard (reprint)"
	card, err := catalog.Refresh(ctx, " base1-4 ")
	if err != nil {
		t.Fatal(err)
	}
	if card.Name != "Charizard (reprint)" || src.calls.Load() != 2 {
		t.Fatalf("card = %+v calls = %d", card, src.calls.Load())
	}
	if card, _ := catalog.Card(ctx, "base1-4"); card.Name != "Charizard (reprint)" || src.calls.Load() != 2 {
		t.Fatalf("refreshed card not cached: %+v calls = %d", card, src.calls.Load())
	}

	if _, err := catalog.Refresh(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty id err = %v", err)
	}
}

func TestCard_NotFoundIsNotRetried(t *testing.T) {
	src := &fakeSource{name: "a"}
	catalog, _ := newCatalog(t, src)

	if _, err := catalog.Card(context.Background(), "base1-999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if src.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", src.calls.Load())
	}
}

func TestSearch_TransientFailureRetried(t *testing.T) {
	src := &fakeSource{name: "a", err: &api.Error{Kind: api.KindUpstream, Source: "a", StatusCode: 503, Err: errors.New("status 503")}}
	catalog, _ := newCatalog(t, src)

	_, err := catalog.Search(context.Background(), models.CardFilter{Name: "pika"}, 1, 20)
	if !errors.Is(err, ErrNoSourceAvailable) {
		t.Fatalf("err = %v", err)
	}
	if got := src.calls.Load(); got != query.DefaultRetryCount+1 {
		t.Errorf("calls = %d, want %d", got, query.DefaultRetryCount+1)
	}
}

func TestSets_Cached(t *testing.T) {
	catalog, sets := newCatalog(t)
	for i := 0; i < 3; i++ {
		got, err := catalog.Sets(context.Background(), "Scarlet & Violet")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Fatalf("sets = %+v", got)
		}
	}
	if sets.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", sets.calls)
	}
}

func TestCollectionCards_DropsUnresolved(t *testing.T) {
	src := &fakeSource{name: "a", cards: cardsNamed("a", 3)}
	catalog, _ := newCatalog(t, src)

	saved := []models.SavedCard{{ID: "a-3"}, {ID: "gone"}, {ID: "a-1"}}
	cards := catalog.CollectionCards(context.Background(), saved)
	if len(cards) != 2 || cards[0].ID != "a-3" || cards[1].ID != "a-1" {
		t.Fatalf("cards = %+v", cards)
	}
}

type fakePopularity struct {
	top []models.TrendingCard
}

func (f fakePopularity) Top(ctx context.Context, n int) ([]models.TrendingCard, error) {
	return f.top, nil
}

func TestTrending(t *testing.T) {
	src := &fakeSource{name: "a", cards: cardsNamed("a", 2)}
	catalog, _ := newCatalog(t, src)

	if _, err := NewTrendingService(nil, catalog).Top(context.Background(), 5); !errors.Is(err, ErrTrendingUnavailable) {
		t.Fatalf("err = %v", err)
	}

	svc := NewTrendingService(fakePopularity{top: []models.TrendingCard{{CardID: "a-2", Saves: 4}, {CardID: "zz", Saves: 1}}}, catalog)
	top, err := svc.Top(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if top[0].Card == nil || top[0].Card.ID != "a-2" || top[1].Card != nil {
		t.Errorf("top = %+v", top)
	}
}
