package models

type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	BRL Currency = "BRL"
)

// RawPricing holds the two upstream pricing schemas as delivered.
// Either side may be nil.
type RawPricing struct {
	TCGPlayer  *TCGPlayerPricing  `json:"tcgplayer,omitempty"`
	Cardmarket *CardmarketPricing `json:"cardmarket,omitempty"`
}

// TCGPlayerPricing is quoted in USD, keyed by print variant
// ("normal", "holofoil", "reverseHolofoil", ...).
type TCGPlayerPricing struct {
	Updated  string                    `json:"updated,omitempty"`
	Variants map[string]TCGPlayerPrice `json:"variants,omitempty"`
}

type TCGPlayerPrice struct {
	Low       *float64 `json:"lowPrice,omitempty"`
	Mid       *float64 `json:"midPrice,omitempty"`
	High      *float64 `json:"highPrice,omitempty"`
	Market    *float64 `json:"marketPrice,omitempty"`
	DirectLow *float64 `json:"directLowPrice,omitempty"`
}

// CardmarketPricing is quoted in EUR.
type CardmarketPricing struct {
	Updated   string   `json:"updated,omitempty"`
	Avg       *float64 `json:"avg,omitempty"`
	Low       *float64 `json:"low,omitempty"`
	Trend     *float64 `json:"trend,omitempty"`
	Avg1      *float64 `json:"avg1,omitempty"`
	Avg7      *float64 `json:"avg7,omitempty"`
	Avg30     *float64 `json:"avg30,omitempty"`
	AvgHolo   *float64 `json:"avg-holo,omitempty"`
	LowHolo   *float64 `json:"low-holo,omitempty"`
	TrendHolo *float64 `json:"trend-holo,omitempty"`
	Avg1Holo  *float64 `json:"avg1-holo,omitempty"`
	Avg7Holo  *float64 `json:"avg7-holo,omitempty"`
	Avg30Holo *float64 `json:"avg30-holo,omitempty"`
}

// Price is a single displayable amount; Amount and Currency always come from the same schema.
type Price struct {
	Amount   float64  `json:"amount"`
	Currency Currency `json:"currency"`
}

// PriceDetails is the per-schema breakdown shown on a card page.
type PriceDetails struct {
	Currency Currency `json:"currency"`
	Market   *float64 `json:"market,omitempty"`
	Low      *float64 `json:"low,omitempty"`
	High     *float64 `json:"high,omitempty"`
	Mid      *float64 `json:"mid,omitempty"`
	Direct   *float64 `json:"direct,omitempty"`
	Trend    *float64 `json:"trend,omitempty"`
	Avg7     *float64 `json:"avg7,omitempty"`
	Avg30    *float64 `json:"avg30,omitempty"`
	Updated  string   `json:"updated,omitempty"`
}

type PriceQuote struct {
	CardID    string        `json:"cardId"`
	Available bool          `json:"available"`
	Price     *Price        `json:"price,omitempty"`
	Converted float64       `json:"converted"`
	Target    Currency      `json:"target"`
	Formatted string        `json:"formatted,omitempty"`
	Details   *PriceDetails `json:"details,omitempty"`
}
