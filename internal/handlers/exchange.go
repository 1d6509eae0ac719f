package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"

	"tcg-tracker/internal/models"
	"tcg-tracker/internal/services"
)

type Currency interface {
	Rates(ctx context.Context) models.ExchangeRateSnapshot
	Convert(ctx context.Context, amount float64, from models.Currency) float64
	Target() models.Currency
}

type ExchangeHandler struct {
	currency Currency
}

func NewExchangeHandler(currency Currency) *ExchangeHandler {
	return &ExchangeHandler{currency: currency}
}

func (h *ExchangeHandler) Rates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.currency.Rates(r.Context()))
}

type conversion struct {
	Amount    float64         `json:"amount"`
	From      models.Currency `json:"from"`
	To        models.Currency `json:"to"`
	Converted float64         `json:"converted"`
	Formatted string          `json:"formatted,omitempty"`
}

func (h *ExchangeHandler) Convert(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil || !finite(amount) {
		badRequest(w, "Required parameters: ?amount=12.5&from=USD")
		return
	}
	from := models.Currency(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("from"))))
	switch from {
	case models.USD, models.EUR:
	default:
		badRequest(w, "from must be USD or EUR")
		return
	}

	out := conversion{
		Amount:    amount,
		From:      from,
		To:        h.currency.Target(),
		Converted: h.currency.Convert(r.Context(), amount, from),
	}
	if !finite(out.Converted) {
		badRequest(w, "amount is out of range")
		return
	}
	if out.To == models.BRL {
		out.Formatted = services.FormatBRL(out.Converted)
	}
	writeJSON(w, http.StatusOK, out)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
