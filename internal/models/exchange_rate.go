package models

import "time"

// ExchangeRateSnapshot maps a source currency to target units per one source unit.
type ExchangeRateSnapshot struct {
	Target    Currency             `json:"target"`
	Rates     map[Currency]float64 `json:"rates"`
	FetchedAt time.Time            `json:"fetchedAt"`
	Live      bool                 `json:"live"`
}

// ExchangeRate is a single upstream quote.
type ExchangeRate struct {
	Base   Currency `json:"base"`
	Target Currency `json:"target"`
	Rate   float64  `json:"rate"`
}

// Clone returns a copy that does not share the rates map.
func (s ExchangeRateSnapshot) Clone() ExchangeRateSnapshot {
	out := s
	out.Rates = make(map[Currency]float64, len(s.Rates))
	for k, v := range s.Rates {
		out.Rates[k] = v
	}
	return out
}
