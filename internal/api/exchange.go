package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tcg-tracker/internal/models"
)

const SourceFrankfurter = "frankfurter"

// ExchangeClient reads latest rates from a Frankfurter-compatible API.
type ExchangeClient struct {
	baseURL string
	get     httpGetter
}

func NewExchangeClient(baseURL string, client *http.Client) *ExchangeClient {
	return &ExchangeClient{baseURL: strings.TrimRight(baseURL, "/"), get: newGetter(SourceFrankfurter, client)}
}

func (c *ExchangeClient) FetchExchangeRate(ctx context.Context, base, target models.Currency) (*models.ExchangeRate, error) {
	apiURL := fmt.Sprintf(
		"%s/latest?from=%s&to=%s",
		c.baseURL,
		url.QueryEscape(string(base)),
		url.QueryEscape(string(target)),
	)

	var result struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := c.get.getJSON(ctx, apiURL, &result); err != nil {
		return nil, err
	}

	rate, ok := result.Rates[strings.ToUpper(string(target))]
	if !ok || rate <= 0 {
		return nil, decodeError(SourceFrankfurter, apiURL, fmt.Errorf("currency %s not found", target))
	}

	return &models.ExchangeRate{
		Base:   base,
		Target: target,
		Rate:   rate,
	}, nil
}
