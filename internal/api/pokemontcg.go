package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tcg-tracker/internal/models"
)

const SourcePokemonTCG = "pokemontcg"

// PopularRarities is the rarity predicate used for the featured listing.
const PopularRarities = `rarity:"Rare Holo" OR rarity:"Rare Ultra" OR rarity:"Rare"`

// PokemonTCGClient talks to the official pokemontcg.io v2 API.
type PokemonTCGClient struct {
	baseURL string
	get     httpGetter
}

func NewPokemonTCGClient(baseURL, apiKey string, client *http.Client) *PokemonTCGClient {
	g := newGetter(SourcePokemonTCG, client)
	if apiKey != "" {
		g.headers["X-Api-Key"] = apiKey
	}
	return &PokemonTCGClient{baseURL: strings.TrimRight(baseURL, "/"), get: g}
}

// CardsQuery is a raw listing request; Q uses the upstream `field:"value"` syntax.
type CardsQuery struct {
	Q        string
	Page     int
	PageSize int
	OrderBy  string
}

// Predicate renders one `field:"value"` term. Quotes are stripped from value
// so it cannot end the term early; an empty value gives "".
func Predicate(field, value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, `"`, ""))
	if value == "" {
		return ""
	}
	return fmt.Sprintf(`%s:"%s"`, field, value)
}

// FilterQuery renders a filter as space-joined `field:"value"` predicates.
func FilterQuery(f models.CardFilter) string {
	var parts []string
	add := func(field, value string) {
		if p := Predicate(field, value); p != "" {
			parts = append(parts, p)
		}
	}
	add("name", f.Name)
	add("set.name", f.Set)
	add("types", f.Type)
	add("rarity", f.Rarity)
	return strings.Join(parts, " ")
}

func (c *PokemonTCGClient) Cards(ctx context.Context, q CardsQuery) (models.CardPage, error) {
	params := url.Values{}
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.OrderBy != "" {
		params.Set("orderBy", q.OrderBy)
	}
	apiURL := c.baseURL + "/cards"
	if enc := params.Encode(); enc != "" {
		apiURL += "?" + enc
	}

	var resp struct {
		Data       []ptcgCard `json:"data"`
		Page       int        `json:"page"`
		PageSize   int        `json:"pageSize"`
		TotalCount int        `json:"totalCount"`
	}
	if err := c.get.getJSON(ctx, apiURL, &resp); err != nil {
		return models.CardPage{}, err
	}
	if resp.Data == nil {
		return models.CardPage{}, decodeError(SourcePokemonTCG, apiURL, fmt.Errorf("missing data array"))
	}

	page := models.CardPage{
		Cards:      make([]models.Card, 0, len(resp.Data)),
		Page:       resp.Page,
		PageSize:   resp.PageSize,
		TotalCount: resp.TotalCount,
		Source:     SourcePokemonTCG,
	}
	if page.Page == 0 {
		page.Page = 1
	}
	if page.PageSize == 0 {
		page.PageSize = 20
	}
	for _, raw := range resp.Data {
		if card, ok := raw.normalize(); ok {
			page.Cards = append(page.Cards, card)
		}
	}
	page.Cards = models.DedupeCards(page.Cards)
	return page, nil
}

func (c *PokemonTCGClient) Card(ctx context.Context, id string) (models.Card, error) {
	apiURL := c.baseURL + "/cards/" + url.PathEscape(id)
	var resp struct {
		Data *ptcgCard `json:"data"`
	}
	if err := c.get.getJSON(ctx, apiURL, &resp); err != nil {
		return models.Card{}, err
	}
	if resp.Data == nil {
		return models.Card{}, decodeError(SourcePokemonTCG, apiURL, fmt.Errorf("missing data object"))
	}
	card, ok := resp.Data.normalize()
	if !ok {
		return models.Card{}, decodeError(SourcePokemonTCG, apiURL, fmt.Errorf("card without id or name"))
	}
	return card, nil
}

// Sets lists every set, or the sets of one series when series is non-empty.
func (c *PokemonTCGClient) Sets(ctx context.Context, series string) ([]models.CardSet, error) {
	apiURL := c.baseURL + "/sets"
	if p := Predicate("series", series); p != "" {
		apiURL += "?" + url.Values{"q": {p}}.Encode()
	}
	var resp struct {
		Data []ptcgSet `json:"data"`
	}
	if err := c.get.getJSON(ctx, apiURL, &resp); err != nil {
		return nil, err
	}
	sets := make([]models.CardSet, 0, len(resp.Data))
	for _, s := range resp.Data {
		if s.ID == "" {
			continue
		}
		sets = append(sets, models.CardSet{
			ID:           s.ID,
			Name:         s.Name,
			Series:       s.Series,
			PrintedTotal: s.PrintedTotal,
			Total:        s.Total,
			ReleaseDate:  s.ReleaseDate,
			Images:       models.SetImages{Symbol: s.Images.Symbol, Logo: s.Images.Logo},
			Source:       SourcePokemonTCG,
		})
	}
	return sets, nil
}

type ptcgSet struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series"`
	PrintedTotal int    `json:"printedTotal"`
	Total        int    `json:"total"`
	ReleaseDate  string `json:"releaseDate"`
	Images       struct {
		Symbol string `json:"symbol"`
		Logo   string `json:"logo"`
	} `json:"images"`
}

type ptcgCard struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	HP     json.RawMessage `json:"hp"`
	Types  []string        `json:"types"`
	Number string          `json:"number"`
	Rarity string          `json:"rarity"`
	Images struct {
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"images"`
	Set     ptcgSet `json:"set"`
	Attacks []struct {
		Name   string   `json:"name"`
		Cost   []string `json:"cost"`
		Damage string   `json:"damage"`
		Text   string   `json:"text"`
	} `json:"attacks"`
	Weaknesses  []models.TypeValue `json:"weaknesses"`
	Resistances []models.TypeValue `json:"resistances"`
	RetreatCost []string           `json:"retreatCost"`
	TCGPlayer   *struct {
		UpdatedAt string `json:"updatedAt"`
		Prices    map[string]struct {
			Low       *float64 `json:"low"`
			Mid       *float64 `json:"mid"`
			High      *float64 `json:"high"`
			Market    *float64 `json:"market"`
			DirectLow *float64 `json:"directLow"`
		} `json:"prices"`
	} `json:"tcgplayer"`
	Cardmarket *struct {
		UpdatedAt string `json:"updatedAt"`
		Prices    struct {
			AverageSellPrice *float64 `json:"averageSellPrice"`
			LowPrice         *float64 `json:"lowPrice"`
			TrendPrice       *float64 `json:"trendPrice"`
			Avg1             *float64 `json:"avg1"`
			Avg7             *float64 `json:"avg7"`
			Avg30            *float64 `json:"avg30"`
		} `json:"prices"`
	} `json:"cardmarket"`
}

func (r ptcgCard) normalize() (models.Card, bool) {
	if r.ID == "" || r.Name == "" {
		return models.Card{}, false
	}
	card := models.Card{
		ID:          r.ID,
		Name:        r.Name,
		Images:      models.CardImages{Small: r.Images.Small, Large: r.Images.Large},
		Set:         models.SetRef{ID: r.Set.ID, Name: r.Set.Name, Series: r.Set.Series},
		Number:      r.Number,
		Rarity:      r.Rarity,
		Types:       r.Types,
		HP:          parseHP(r.HP),
		Weaknesses:  r.Weaknesses,
		Resistances: r.Resistances,
		RetreatCost: r.RetreatCost,
		Source:      SourcePokemonTCG,
	}
	for _, a := range r.Attacks {
		card.Attacks = append(card.Attacks, models.Attack{Name: a.Name, Cost: a.Cost, Damage: a.Damage, Text: a.Text})
	}

	var pricing models.RawPricing
	if r.TCGPlayer != nil && len(r.TCGPlayer.Prices) > 0 {
		tp := &models.TCGPlayerPricing{Updated: r.TCGPlayer.UpdatedAt, Variants: map[string]models.TCGPlayerPrice{}}
		for variant, p := range r.TCGPlayer.Prices {
			tp.Variants[variant] = models.TCGPlayerPrice{
				Low: p.Low, Mid: p.Mid, High: p.High, Market: p.Market, DirectLow: p.DirectLow,
			}
		}
		pricing.TCGPlayer = tp
	}
	if r.Cardmarket != nil {
		p := r.Cardmarket.Prices
		pricing.Cardmarket = &models.CardmarketPricing{
			Updated: r.Cardmarket.UpdatedAt,
			Avg:     p.AverageSellPrice,
			Low:     p.LowPrice,
			Trend:   p.TrendPrice,
			Avg1:    p.Avg1,
			Avg7:    p.Avg7,
			Avg30:   p.Avg30,
		}
	}
	if pricing.TCGPlayer != nil || pricing.Cardmarket != nil {
		card.Pricing = &pricing
	}
	return card, true
}

// parseHP accepts a JSON number or a numeric string; anything else is unknown.
func parseHP(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		hp := int(n)
		return &hp
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	hp, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &hp
}
