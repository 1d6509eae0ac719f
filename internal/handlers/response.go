package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"tcg-tracker/internal/api"
	"tcg-tracker/internal/repositories"
	"tcg-tracker/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "bad_request"})
}

// writeError maps service failures to status codes. A request whose client
// went away gets no body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}

	status, body := http.StatusInternalServerError, errorBody{Error: "internal error"}
	switch {
	case errors.Is(err, services.ErrNotFound):
		status, body = http.StatusNotFound, errorBody{Error: "card not found", Kind: "not_found"}
	case errors.Is(err, repositories.ErrEmptyCardID):
		status, body = http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "bad_request"}
	case errors.Is(err, services.ErrTrendingUnavailable):
		status, body = http.StatusServiceUnavailable, errorBody{Error: err.Error(), Kind: "unavailable"}
	case errors.Is(err, services.ErrNoSourceAvailable):
		status, body = http.StatusBadGateway, errorBody{Error: "no card source available", Kind: "no_source"}
	case api.KindOf(err) != 0:
		status, body = http.StatusBadGateway, errorBody{Error: "upstream request failed", Kind: api.KindOf(err).String()}
	}

	log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, status, body)
}

// intParam reads a positive integer query parameter; absent gives fallback.
func intParam(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
