package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"tcg-tracker/internal/api"
	"tcg-tracker/internal/models"
	"tcg-tracker/internal/repositories"
	"tcg-tracker/internal/services"
)

type fakeCatalog struct {
	cards      map[string]models.Card
	searchErr  error
	lastFilter models.CardFilter
	lastPage   [2]int
	saved      []models.SavedCard
	refreshed  []string
}

func (f *fakeCatalog) Featured(ctx context.Context, limit int) (models.CardPage, error) {
	return models.CardPage{Cards: []models.Card{{ID: "base1-4", Name: "Charizard"}}, Page: 1, PageSize: limit}, nil
}

func (f *fakeCatalog) Recent(ctx context.Context, limit int) (models.CardPage, error) {
	return models.CardPage{Page: 1, PageSize: limit}, nil
}

func (f *fakeCatalog) Search(ctx context.Context, filter models.CardFilter, page, pageSize int) (models.CardPage, error) {
	f.lastFilter = filter
	f.lastPage = [2]int{page, pageSize}
	if f.searchErr != nil {
		return models.CardPage{}, f.searchErr
	}
	return models.CardPage{Cards: []models.Card{{ID: "base1-58", Name: "Pikachu"}}, Page: page, PageSize: pageSize, TotalCount: 1}, nil
}

func (f *fakeCatalog) Card(ctx context.Context, id string) (models.Card, error) {
	c, ok := f.cards[id]
	if !ok {
		return models.Card{}, fmt.Errorf("card %s: %w", id, services.ErrNotFound)
	}
	return c, nil
}

func (f *fakeCatalog) Refresh(ctx context.Context, id string) (models.Card, error) {
	f.refreshed = append(f.refreshed, id)
	return f.Card(ctx, id)
}

func (f *fakeCatalog) CardPrice(ctx context.Context, id, variant string) (models.PriceQuote, error) {
	if _, err := f.Card(ctx, id); err != nil {
		return models.PriceQuote{}, err
	}
	return models.PriceQuote{CardID: id, Available: true, Converted: 62.5, Target: models.BRL, Formatted: "R$ 62,50"}, nil
}

func (f *fakeCatalog) Sets(ctx context.Context, series string) ([]models.CardSet, error) {
	return []models.CardSet{{ID: "base1", Name: "Base", Series: series}}, nil
}

func (f *fakeCatalog) SetCards(ctx context.Context, setID string, limit int) (models.CardPage, error) {
	return models.CardPage{Cards: []models.Card{{ID: setID + "-1"}}, PageSize: limit}, nil
}

func (f *fakeCatalog) CollectionCards(ctx context.Context, saved []models.SavedCard) []models.Card {
	f.saved = saved
	var out []models.Card
	for _, s := range saved {
		if c, ok := f.cards[s.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

type fakeTrending struct{ err error }

func (f fakeTrending) Top(ctx context.Context, limit int) ([]models.TrendingCard, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.TrendingCard{{CardID: "base1-4", Saves: 3}}, nil
}

type fakeCollection struct {
	ids map[string]bool
	err error
}

func (f *fakeCollection) Add(ctx context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if strings.TrimSpace(id) == "" {
		return false, repositories.ErrEmptyCardID
	}
	if f.ids[id] {
		return false, nil
	}
	f.ids[id] = true
	return true, nil
}

func (f *fakeCollection) Remove(ctx context.Context, id string) (bool, error) {
	if !f.ids[id] {
		return false, nil
	}
	delete(f.ids, id)
	return true, nil
}

func (f *fakeCollection) Contains(id string) bool { return f.ids[id] }

func (f *fakeCollection) List() []models.SavedCard {
	var out []models.SavedCard
	for id := range f.ids {
		out = append(out, models.SavedCard{ID: id, AddedAt: time.Unix(0, 0)})
	}
	return out
}

type fakeCurrency struct{}

func (fakeCurrency) Rates(ctx context.Context) models.ExchangeRateSnapshot {
	return models.ExchangeRateSnapshot{Rates: map[models.Currency]float64{models.USD: 5, models.EUR: 6}, Live: true}
}

func (fakeCurrency) Convert(ctx context.Context, amount float64, from models.Currency) float64 {
	if amount <= 0 {
		return 0
	}
	return amount * 5
}

func (fakeCurrency) Target() models.Currency { return models.BRL }

type fixture struct {
	catalog    *fakeCatalog
	collection *fakeCollection
	trending   *fakeTrending
	router     chi.Router
}

func newFixture() *fixture {
	f := &fixture{
		catalog: &fakeCatalog{cards: map[string]models.Card{
			"base1-4":  {ID: "base1-4", Name: "Charizard"},
			"base1-58": {ID: "base1-58", Name: "Pikachu"},
		}},
		collection: &fakeCollection{ids: map[string]bool{}},
		trending:   &fakeTrending{},
	}
	cards := NewCardHandler(f.catalog, f.trending)
	coll := NewCollectionHandler(f.collection, f.catalog)
	exchange := NewExchangeHandler(fakeCurrency{})

	r := chi.NewRouter()
	r.Get("/cards", cards.Featured)
	r.Get("/cards/recent", cards.Recent)
	r.Get("/cards/search", cards.Search)
	r.Get("/cards/trending", cards.Trending)
	r.Get("/cards/{id}", cards.Card)
	r.Get("/cards/{id}/price", cards.Price)
	r.Post("/cards/{id}/refresh", cards.Refresh)
	r.Get("/sets", cards.Sets)
	r.Get("/sets/{id}/cards", cards.SetCards)
	r.Get("/collection", coll.List)
	r.Get("/collection/{id}", coll.Get)
	r.Put("/collection/{id}", coll.Put)
	r.Delete("/collection/{id}", coll.Delete)
	r.Get("/exchange/rates", exchange.Rates)
	r.Get("/exchange/convert", exchange.Convert)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestCardHandler_Card(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodGet, "/cards/base1-4")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if c := decode[models.Card](t, rr); c.Name != "Charizard" {
		t.Fatalf("card = %+v", c)
	}

	rr = f.do(t, http.MethodGet, "/cards/nope")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if body := decode[errorBody](t, rr); body.Kind != "not_found" {
		t.Fatalf("body = %+v", body)
	}
}

func TestCardHandler_Refresh(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/cards/base1-4/refresh")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(f.catalog.refreshed) != 1 || f.catalog.refreshed[0] != "base1-4" {
		t.Fatalf("refreshed = %v", f.catalog.refreshed)
	}
	if rr := f.do(t, http.MethodPost, "/cards/nope/refresh"); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCardHandler_Price(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/cards/base1-4/price?variant=holofoil")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	q := decode[models.PriceQuote](t, rr)
	if q.Formatted != "R$ 62,50" {
		t.Fatalf("quote = %+v", q)
	}
}

func TestCardHandler_SearchParams(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodGet, "/cards/search?name=%20pikachu%20&type=Lightning&page=2&pageSize=10")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	want := models.CardFilter{Name: "pikachu", Type: "Lightning"}
	if f.catalog.lastFilter != want || f.catalog.lastPage != [2]int{2, 10} {
		t.Fatalf("filter=%+v page=%v", f.catalog.lastFilter, f.catalog.lastPage)
	}

	tests := []string{
		"/cards/search",
		"/cards/search?name=pikachu&page=0",
		"/cards/search?name=pikachu&pageSize=abc",
		"/cards?limit=-1",
	}
	for _, target := range tests {
		if rr := f.do(t, http.MethodGet, target); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rr.Code)
		}
	}
}

func TestCardHandler_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{
			name:   "no source",
			err:    fmt.Errorf("%w: %w", services.ErrNoSourceAvailable, errors.New("all down")),
			status: http.StatusBadGateway,
			kind:   "no_source",
		},
		{
			name:   "upstream",
			err:    &api.Error{Kind: api.KindUpstream, Source: "pokemontcg", StatusCode: 500},
			status: http.StatusBadGateway,
			kind:   "upstream",
		},
		{
			name:   "decode",
			err:    &api.Error{Kind: api.KindDecode, Source: "tcgdex", Err: errors.New("bad json")},
			status: http.StatusBadGateway,
			kind:   "decode",
		},
		{
			name:   "other",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.catalog.searchErr = tt.err
			rr := f.do(t, http.MethodGet, "/cards/search?name=pikachu")
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if body := decode[errorBody](t, rr); body.Kind != tt.kind {
				t.Fatalf("kind = %q, want %q", body.Kind, tt.kind)
			}
		})
	}
}

func TestCardHandler_CancelledRequestWritesNothing(t *testing.T) {
	f := newFixture()
	f.catalog.searchErr = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/cards/search?name=pikachu", nil).WithContext(ctx))

	if rr.Body.Len() != 0 {
		t.Fatalf("cancelled request got body %q", rr.Body)
	}
}

func TestCardHandler_Trending(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/cards/trending")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if top := decode[[]models.TrendingCard](t, rr); len(top) != 1 || top[0].Saves != 3 {
		t.Fatalf("top = %+v", top)
	}

	f.trending.err = services.ErrTrendingUnavailable
	if rr := f.do(t, http.MethodGet, "/cards/trending"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
}

func TestCardHandler_Sets(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/sets?series=Base")
	sets := decode[[]models.CardSet](t, rr)
	if len(sets) != 1 || sets[0].Series != "Base" {
		t.Fatalf("sets = %+v", sets)
	}

	rr = f.do(t, http.MethodGet, "/sets/sv01/cards?limit=5")
	page := decode[models.CardPage](t, rr)
	if page.PageSize != 5 || page.Cards[0].ID != "sv01-1" {
		t.Fatalf("page = %+v", page)
	}
}

func TestCollectionHandler_Lifecycle(t *testing.T) {
	f := newFixture()

	if rr := f.do(t, http.MethodPut, "/collection/base1-4"); rr.Code != http.StatusCreated {
		t.Fatalf("first put status = %d, want 201", rr.Code)
	}
	if rr := f.do(t, http.MethodPut, "/collection/base1-4"); rr.Code != http.StatusOK {
		t.Fatalf("repeat put status = %d, want 200", rr.Code)
	}
	f.do(t, http.MethodPut, "/collection/gone-1")

	rr := f.do(t, http.MethodGet, "/collection/base1-4")
	if got := decode[map[string]any](t, rr); got["saved"] != true {
		t.Fatalf("get = %+v", got)
	}

	rr = f.do(t, http.MethodGet, "/collection")
	view := decode[collectionView](t, rr)
	if len(view.Entries) != 2 || len(view.Cards) != 1 || view.Cards[0].ID != "base1-4" {
		t.Fatalf("view = %+v", view)
	}

	rr = f.do(t, http.MethodDelete, "/collection/base1-4")
	if got := decode[map[string]any](t, rr); got["removed"] != true {
		t.Fatalf("delete = %+v", got)
	}
	if f.collection.Contains("base1-4") {
		t.Fatal("card still saved after delete")
	}
}

func TestCollectionHandler_EmptyListSkipsResolve(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/collection")
	view := decode[collectionView](t, rr)
	if len(view.Cards) != 0 || f.catalog.saved != nil {
		t.Fatalf("view = %+v, resolved %v", view, f.catalog.saved)
	}
}

func TestCollectionHandler_PersistFailure(t *testing.T) {
	f := newFixture()
	f.collection.err = errors.New("disk full")
	if rr := f.do(t, http.MethodPut, "/collection/base1-4"); rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestExchangeHandler_Convert(t *testing.T) {
	f := newFixture()

	rr := f.do(t, http.MethodGet, "/exchange/convert?amount=10&from=usd")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	got := decode[conversion](t, rr)
	if got.Converted != 50 || got.From != models.USD || got.Formatted != "R$ 50,00" {
		t.Fatalf("conversion = %+v", got)
	}

	for _, target := range []string{
		"/exchange/convert?from=USD",
		"/exchange/convert?amount=1&from=JPY",
		"/exchange/convert?amount=NaN&from=USD",
		"/exchange/convert?amount=Inf&from=USD",
		"/exchange/convert?amount=-Inf&from=EUR",
		"/exchange/convert?amount=1e308&from=USD",
	} {
		if rr := f.do(t, http.MethodGet, target); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rr.Code)
		} else if body := decode[errorBody](t, rr); body.Kind != "bad_request" {
			t.Errorf("%s: body = %+v", target, body)
		}
	}
}

func TestExchangeHandler_Rates(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/exchange/rates")
	snap := decode[models.ExchangeRateSnapshot](t, rr)
	if !snap.Live || snap.Rates[models.USD] != 5 {
		t.Fatalf("snapshot = %+v", snap)
	}
}
