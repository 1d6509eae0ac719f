package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tcg-tracker/internal/models"
)

func serveJSON(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPokemonTCGClient_Cards(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.Header.Get("X-Api-Key")
		fmt.Fprint(w, `{
			"data": [
				{"id": "base1-4", "name": "Charizard", "hp": "120", "types": ["Fire"],
				 "set": {"id": "base1", "name": "Base", "series": "Base"},
				 "tcgplayer": {"updatedAt": "2024/01/01", "prices": {"holofoil": {"market": 350.5}}},
				 "cardmarket": {"prices": {"averageSellPrice": 300}}},
				{"id": "base1-4", "name": "Charizard"},
				{"id": "", "name": "broken"}
			],
			"page": 1, "pageSize": 20, "totalCount": 1
		}`)
	}))
	defer srv.Close()

	c := NewPokemonTCGClient(srv.URL, "secret", nil)
	page, err := c.Cards(context.Background(), CardsQuery{Q: FilterQuery(models.CardFilter{Name: "Charizard", Type: "Fire"})})
	if err != nil {
		t.Fatal(err)
	}

	if gotQuery != `name:"Charizard" types:"Fire"` {
		t.Errorf("q = %q", gotQuery)
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(page.Cards) != 1 {
		t.Fatalf("cards = %d, want 1 after dedupe and drop", len(page.Cards))
	}
	card := page.Cards[0]
	if card.HP == nil || *card.HP != 120 {
		t.Errorf("hp = %v, want 120", card.HP)
	}
	if card.Pricing == nil || *card.Pricing.TCGPlayer.Variants["holofoil"].Market != 350.5 {
		t.Fatalf("pricing = %+v", card.Pricing)
	}
	if *card.Pricing.Cardmarket.Avg != 300 {
		t.Errorf("cardmarket avg = %v", *card.Pricing.Cardmarket.Avg)
	}
}

func TestPokemonTCGClient_MissingDataIsDecodeFailure(t *testing.T) {
	srv := serveJSON(t, map[string]string{"/cards": `{"page": 1}`})
	_, err := NewPokemonTCGClient(srv.URL, "", nil).Cards(context.Background(), CardsQuery{})
	if KindOf(err) != KindDecode {
		t.Fatalf("err = %v, want decode failure", err)
	}
}

func TestPokemonTCGClient_CardNotFound(t *testing.T) {
	srv := serveJSON(t, nil)
	_, err := NewPokemonTCGClient(srv.URL, "", nil).Card(context.Background(), "nope")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want 404", err)
	}
	if IsRetryable(err) {
		t.Fatal("404 must not be retryable")
	}
}

func TestPokemonTCGClient_SetsBySeries(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"data": [{"id": "sv1", "name": "Scarlet & Violet", "series": "Scarlet & Violet"}, {"name": "no id"}]}`)
	}))
	defer srv.Close()

	sets, err := NewPokemonTCGClient(srv.URL, "", nil).Sets(context.Background(), "Scarlet & Violet")
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != `series:"Scarlet & Violet"` {
		t.Errorf("q = %q", gotQuery)
	}
	if len(sets) != 1 || sets[0].ID != "sv1" {
		t.Fatalf("sets = %+v", sets)
	}
}

func TestPredicate(t *testing.T) {
	tests := []struct {
		field, value, want string
	}{
		{"set.id", "base1", `set.id:"base1"`},
		{"set.id", `base1" OR name:"x`, `set.id:"base1 OR name:x"`},
		{"series", ` "Base" `, `series:"Base"`},
		{"series", `""`, ""},
		{"name", "", ""},
	}
	for _, tt := range tests {
		if got := Predicate(tt.field, tt.value); got != tt.want {
			t.Errorf("Predicate(%q, %q) = %s, want %s", tt.field, tt.value, got, tt.want)
		}
	}
}

func TestPokemonTCGClient_SetsStripsQuotes(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"data": []}`)
	}))
	defer srv.Close()

	if _, err := NewPokemonTCGClient(srv.URL, "", nil).Sets(context.Background(), `Base"`); err != nil {
		t.Fatal(err)
	}
	if gotQuery != `series:"Base"` {
		t.Errorf("q = %s", gotQuery)
	}
}

func TestTCGdexClient_Card(t *testing.T) {
	srv := serveJSON(t, map[string]string{"/cards/sv01-001": `{
		"id": "sv01-001", "localId": "001", "name": "Pineco", "hp": 60,
		"image": "https://assets.tcgdex.net/en/sv/sv01/001",
		"set": {"id": "sv01", "name": "Scarlet & Violet", "serie": {"name": "Scarlet & Violet"}},
		"attacks": [{"name": "Tackle", "damage": 30}],
		"weaknesses": [{"type": "Fire", "value": "x2"}],
		"pricing": {
			"tcgplayer": {"updated": "2024-01-01", "unit": "USD", "reverse-holofoil": {"marketPrice": 0.4}},
			"cardmarket": {"avg": 0.2, "avg-holo": 0.5}
		}
	}`})

	card, err := NewTCGdexClient(srv.URL, nil).Card(context.Background(), "sv01-001")
	if err != nil {
		t.Fatal(err)
	}
	if card.Images.Small != "https://assets.tcgdex.net/en/sv/sv01/001/low.webp" ||
		card.Images.Large != "https://assets.tcgdex.net/en/sv/sv01/001/high.webp" {
		t.Errorf("images = %+v", card.Images)
	}
	if card.HP == nil || *card.HP != 60 {
		t.Errorf("hp = %v", card.HP)
	}
	if card.Attacks[0].Damage != "30" {
		t.Errorf("damage = %q", card.Attacks[0].Damage)
	}
	if card.Set.Series != "Scarlet & Violet" {
		t.Errorf("series = %q", card.Set.Series)
	}
	tp := card.Pricing.TCGPlayer
	if tp.Updated != "2024-01-01" || len(tp.Variants) != 1 {
		t.Fatalf("tcgplayer = %+v", tp)
	}
	if p, ok := tp.Variants["reverseHolofoil"]; !ok || *p.Market != 0.4 {
		t.Errorf("variants = %+v", tp.Variants)
	}
	if *card.Pricing.Cardmarket.AvgHolo != 0.5 {
		t.Errorf("avg-holo = %v", *card.Pricing.Cardmarket.AvgHolo)
	}
}

func TestTCGdexClient_Set(t *testing.T) {
	srv := serveJSON(t, map[string]string{"/sets/base1": `{
		"id": "base1", "name": "Base Set", "serie": {"name": "Base"},
		"cards": [
			{"id": "base1-1", "localId": "1", "name": "Alakazam", "image": "https://img/base1/1"},
			{"id": "base1-2", "localId": "2", "name": "Blastoise"},
			{"id": "base1-2", "localId": "2", "name": "Blastoise"}
		]
	}`})

	set, err := NewTCGdexClient(srv.URL, nil).Set(context.Background(), "base1")
	if err != nil {
		t.Fatal(err)
	}
	if set.Series != "Base" || len(set.Cards) != 2 {
		t.Fatalf("set = %+v", set)
	}
	if set.Cards[0].Set.ID != "base1" || set.Cards[0].Images.Small != "https://img/base1/1/low.webp" {
		t.Errorf("first card = %+v", set.Cards[0])
	}
	if set.Cards[1].Images.Small != "" {
		t.Errorf("card without image got %q", set.Cards[1].Images.Small)
	}
}

func TestStaticFeedClient_AcceptsAlternateSpellings(t *testing.T) {
	srv := serveJSON(t, map[string]string{"/feed.json": `[
		{"cardId": "swsh1-1", "name": "Celebi V", "imageUrl": "s.png", "imageUrlHiRes": "l.png", "cardNumber": "1", "hp": "180", "setName": "Sword & Shield"},
		{"id": "swsh1-2", "name": "Roselia", "set": {"id": "swsh1", "name": "SWSH"}},
		{"name": "no id"}
	]`})

	cards, err := NewStaticFeedClient(srv.URL+"/feed.json", nil).Cards(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}
	first := cards[0]
	if first.ID != "swsh1-1" || first.Images.Small != "s.png" || first.Images.Large != "l.png" || first.Number != "1" {
		t.Errorf("first = %+v", first)
	}
	if first.HP == nil || *first.HP != 180 || first.Set.Name != "Sword & Shield" {
		t.Errorf("first hp/set = %v %+v", first.HP, first.Set)
	}
	if cards[1].Set.ID != "swsh1" || cards[1].Set.Name != "SWSH" {
		t.Errorf("second set = %+v", cards[1].Set)
	}
}

func TestExchangeClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") == "EUR" {
			fmt.Fprint(w, `{"rates": {}}`)
			return
		}
		fmt.Fprint(w, `{"amount": 1, "base": "USD", "rates": {"BRL": 5.42}}`)
	}))
	defer srv.Close()

	c := NewExchangeClient(srv.URL, nil)
	rate, err := c.FetchExchangeRate(context.Background(), models.USD, models.BRL)
	if err != nil {
		t.Fatal(err)
	}
	if rate.Rate != 5.42 {
		t.Fatalf("rate = %v", rate.Rate)
	}

	_, err = c.FetchExchangeRate(context.Background(), models.EUR, models.BRL)
	if KindOf(err) != KindDecode {
		t.Fatalf("err = %v, want decode failure", err)
	}
}

func TestErrorKinds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bad":
			fmt.Fprint(w, `{not json`)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	client := NewTCGdexClient(srv.URL, nil)

	_, err := client.Card(context.Background(), "x")
	if KindOf(err) != KindUpstream || !IsRetryable(err) {
		t.Errorf("503: kind=%s retryable=%v", KindOf(err), IsRetryable(err))
	}

	bad := NewStaticFeedClient(srv.URL+"/bad", nil)
	_, err = bad.Cards(context.Background())
	if KindOf(err) != KindDecode || IsRetryable(err) {
		t.Errorf("bad body: kind=%s retryable=%v", KindOf(err), IsRetryable(err))
	}

	srv.Close()
	_, err = client.Card(context.Background(), "x")
	if KindOf(err) != KindTransport || !IsRetryable(err) {
		t.Errorf("closed server: kind=%s retryable=%v", KindOf(err), IsRetryable(err))
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", fmt.Errorf("wrap: %w", context.Canceled), false},
		{"plain", errors.New("boom"), true},
		{"404", &Error{Kind: KindUpstream, StatusCode: 404}, false},
		{"500", &Error{Kind: KindUpstream, StatusCode: 500}, true},
		{"decode", &Error{Kind: KindDecode}, false},
		{"transport", &Error{Kind: KindTransport, Err: errors.New("reset")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
