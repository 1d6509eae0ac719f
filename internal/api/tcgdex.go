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

const SourceTCGdex = "tcgdex"

// TCGdex image URLs come without a resolution; the client appends one.
const (
	tcgdexSmallSuffix = "/low.webp"
	tcgdexLargeSuffix = "/high.webp"
)

type TCGdexClient struct {
	baseURL string
	get     httpGetter
}

func NewTCGdexClient(baseURL string, client *http.Client) *TCGdexClient {
	return &TCGdexClient{baseURL: strings.TrimRight(baseURL, "/"), get: newGetter(SourceTCGdex, client)}
}

// TCGdexSet is a set with the brief list of its cards.
type TCGdexSet struct {
	ID     string
	Name   string
	Series string
	Cards  []models.Card
}

func (c *TCGdexClient) Set(ctx context.Context, setID string) (TCGdexSet, error) {
	apiURL := c.baseURL + "/sets/" + url.PathEscape(setID)
	var resp struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Serie struct {
			Name string `json:"name"`
		} `json:"serie"`
		Cards []tcgdexBrief `json:"cards"`
	}
	if err := c.get.getJSON(ctx, apiURL, &resp); err != nil {
		return TCGdexSet{}, err
	}
	if resp.ID == "" && resp.Name == "" {
		return TCGdexSet{}, decodeError(SourceTCGdex, apiURL, fmt.Errorf("set without id"))
	}

	set := TCGdexSet{ID: resp.ID, Name: resp.Name, Series: resp.Serie.Name}
	for _, b := range resp.Cards {
		if card, ok := b.normalize(); ok {
			card.Set = models.SetRef{ID: resp.ID, Name: resp.Name, Series: resp.Serie.Name}
			set.Cards = append(set.Cards, card)
		}
	}
	set.Cards = models.DedupeCards(set.Cards)
	return set, nil
}

func (c *TCGdexClient) Card(ctx context.Context, id string) (models.Card, error) {
	apiURL := c.baseURL + "/cards/" + url.PathEscape(id)
	var raw tcgdexCard
	if err := c.get.getJSON(ctx, apiURL, &raw); err != nil {
		return models.Card{}, err
	}
	card, err := raw.normalize()
	if err != nil {
		return models.Card{}, decodeError(SourceTCGdex, apiURL, err)
	}
	return card, nil
}

// SearchByName returns brief cards whose name matches upstream's own filter.
func (c *TCGdexClient) SearchByName(ctx context.Context, name string) ([]models.Card, error) {
	apiURL := c.baseURL + "/cards?" + url.Values{"name": {name}}.Encode()
	var briefs []tcgdexBrief
	if err := c.get.getJSON(ctx, apiURL, &briefs); err != nil {
		return nil, err
	}
	cards := make([]models.Card, 0, len(briefs))
	for _, b := range briefs {
		if card, ok := b.normalize(); ok {
			cards = append(cards, card)
		}
	}
	return models.DedupeCards(cards), nil
}

type tcgdexBrief struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

func (b tcgdexBrief) normalize() (models.Card, bool) {
	if b.ID == "" || b.Name == "" {
		return models.Card{}, false
	}
	return models.Card{
		ID:     b.ID,
		Name:   b.Name,
		Number: b.LocalID,
		Images: tcgdexImages(b.Image),
		Source: SourceTCGdex,
	}, true
}

func tcgdexImages(base string) models.CardImages {
	if base == "" {
		return models.CardImages{}
	}
	return models.CardImages{Small: base + tcgdexSmallSuffix, Large: base + tcgdexLargeSuffix}
}

type tcgdexCard struct {
	ID      string          `json:"id"`
	LocalID string          `json:"localId"`
	Name    string          `json:"name"`
	Image   string          `json:"image"`
	Rarity  string          `json:"rarity"`
	HP      json.RawMessage `json:"hp"`
	Types   []string        `json:"types"`
	Set     struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Serie struct {
			Name string `json:"name"`
		} `json:"serie"`
	} `json:"set"`
	Attacks []struct {
		Name   string          `json:"name"`
		Cost   []string        `json:"cost"`
		Damage json.RawMessage `json:"damage"`
		Effect string          `json:"effect"`
	} `json:"attacks"`
	Weaknesses  []tcgdexTypeValue `json:"weaknesses"`
	Resistances []tcgdexTypeValue `json:"resistances"`
	Pricing     *struct {
		TCGPlayer  map[string]json.RawMessage `json:"tcgplayer"`
		Cardmarket *models.CardmarketPricing  `json:"cardmarket"`
	} `json:"pricing"`
}

type tcgdexTypeValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (r tcgdexCard) normalize() (models.Card, error) {
	if r.ID == "" || r.Name == "" {
		return models.Card{}, fmt.Errorf("card without id or name")
	}
	card := models.Card{
		ID:     r.ID,
		Name:   r.Name,
		Images: tcgdexImages(r.Image),
		Set:    models.SetRef{ID: r.Set.ID, Name: r.Set.Name, Series: r.Set.Serie.Name},
		Number: r.LocalID,
		Rarity: r.Rarity,
		Types:  r.Types,
		HP:     parseHP(r.HP),
		Source: SourceTCGdex,
	}
	for _, a := range r.Attacks {
		card.Attacks = append(card.Attacks, models.Attack{
			Name:   a.Name,
			Cost:   a.Cost,
			Damage: rawText(a.Damage),
			Text:   a.Effect,
		})
	}
	for _, w := range r.Weaknesses {
		card.Weaknesses = append(card.Weaknesses, models.TypeValue{Type: w.Type, Value: rawText(w.Value)})
	}
	for _, w := range r.Resistances {
		card.Resistances = append(card.Resistances, models.TypeValue{Type: w.Type, Value: rawText(w.Value)})
	}

	if r.Pricing != nil {
		tp, err := tcgdexTCGPlayer(r.Pricing.TCGPlayer)
		if err != nil {
			return models.Card{}, err
		}
		pricing := models.RawPricing{TCGPlayer: tp, Cardmarket: r.Pricing.Cardmarket}
		if pricing.TCGPlayer != nil || pricing.Cardmarket != nil {
			card.Pricing = &pricing
		}
	}
	return card, nil
}

// tcgdexTCGPlayer splits the flat tcgplayer object into metadata and per-variant prices.
func tcgdexTCGPlayer(raw map[string]json.RawMessage) (*models.TCGPlayerPricing, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tp := &models.TCGPlayerPricing{Variants: map[string]models.TCGPlayerPrice{}}
	for key, value := range raw {
		switch key {
		case "updated":
			tp.Updated = rawText(value)
		case "unit":
		default:
			if len(value) == 0 || value[0] != '{' {
				continue
			}
			var p models.TCGPlayerPrice
			if err := json.Unmarshal(value, &p); err != nil {
				return nil, fmt.Errorf("tcgplayer variant %q: %w", key, err)
			}
			tp.Variants[normalizeVariant(key)] = p
		}
	}
	if len(tp.Variants) == 0 {
		return nil, nil
	}
	return tp, nil
}

// normalizeVariant maps "reverse-holofoil" to the camel-case names the official API uses.
func normalizeVariant(key string) string {
	parts := strings.Split(key, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

// rawText renders a JSON string or number as text; other shapes give "".
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}
