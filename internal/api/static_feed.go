package api

import (
	"context"
	"encoding/json"
	"net/http"

	"tcg-tracker/internal/models"
)

const SourceStaticFeed = "static-feed"

// StaticFeedClient reads a published expansion card list. The feed is not a
// stable API: several field spellings are accepted for the same value.
type StaticFeedClient struct {
	url string
	get httpGetter
}

func NewStaticFeedClient(feedURL string, client *http.Client) *StaticFeedClient {
	return &StaticFeedClient{url: feedURL, get: newGetter(SourceStaticFeed, client)}
}

func (c *StaticFeedClient) Cards(ctx context.Context) ([]models.Card, error) {
	var items []feedItem
	if err := c.get.getJSON(ctx, c.url, &items); err != nil {
		return nil, err
	}
	cards := make([]models.Card, 0, len(items))
	for _, it := range items {
		if card, ok := it.normalize(); ok {
			cards = append(cards, card)
		}
	}
	return models.DedupeCards(cards), nil
}

type feedItem struct {
	ID            string `json:"id"`
	CardID        string `json:"cardId"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	ImageURL      string `json:"imageUrl"`
	SmallImage    string `json:"smallImage"`
	ImageHiRes    string `json:"imageHiRes"`
	ImageURLHiRes string `json:"imageUrlHiRes"`
	LargeImage    string `json:"largeImage"`
	SetName       string `json:"setName"`
	Set           *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"set"`
	Number      string             `json:"number"`
	CardNumber  string             `json:"cardNumber"`
	Rarity      string             `json:"rarity"`
	Types       []string           `json:"types"`
	HP          json.RawMessage    `json:"hp"`
	Weaknesses  []models.TypeValue `json:"weaknesses"`
	Resistances []models.TypeValue `json:"resistances"`
	RetreatCost []string           `json:"retreatCost"`
}

func (it feedItem) normalize() (models.Card, bool) {
	id := firstNonEmpty(it.ID, it.CardID)
	if id == "" || it.Name == "" {
		return models.Card{}, false
	}
	card := models.Card{
		ID:   id,
		Name: it.Name,
		Images: models.CardImages{
			Small: firstNonEmpty(it.Image, it.ImageURL, it.SmallImage),
			Large: firstNonEmpty(it.ImageHiRes, it.ImageURLHiRes, it.LargeImage),
		},
		Number:      firstNonEmpty(it.Number, it.CardNumber),
		Rarity:      it.Rarity,
		Types:       it.Types,
		HP:          parseHP(it.HP),
		Weaknesses:  it.Weaknesses,
		Resistances: it.Resistances,
		RetreatCost: it.RetreatCost,
		Source:      SourceStaticFeed,
	}
	card.Set.Name = it.SetName
	if it.Set != nil {
		card.Set.ID = it.Set.ID
		card.Set.Name = firstNonEmpty(it.Set.Name, it.SetName)
	}
	return card, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
