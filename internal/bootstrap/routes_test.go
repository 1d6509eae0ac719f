package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tcg-tracker/internal/handlers"
)

func TestInitRoutes(t *testing.T) {
	r := InitRoutes(&HandlersBundle{
		CardHandler:       handlers.NewCardHandler(nil, nil),
		CollectionHandler: handlers.NewCollectionHandler(nil, nil),
		ExchangeHandler:   handlers.NewExchangeHandler(nil),
	})

	tests := []struct {
		method, target string
		status         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/cards/search", http.StatusBadRequest},
		{http.MethodGet, "/exchange/convert", http.StatusBadRequest},
		{http.MethodPost, "/collection/base1-4", http.StatusMethodNotAllowed},
		{http.MethodGet, "/users", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, nil))
		if rr.Code != tt.status {
			t.Errorf("%s %s: status = %d, want %d", tt.method, tt.target, rr.Code, tt.status)
		}
	}
}
