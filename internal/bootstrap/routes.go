package bootstrap

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func InitRoutes(h *HandlersBundle) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
		w.Write([]byte("OK"))
	})

	r.Route("/cards", func(r chi.Router) {
		r.Get("/", h.CardHandler.Featured)
		r.Get("/recent", h.CardHandler.Recent)
		r.Get("/search", h.CardHandler.Search)
		r.Get("/trending", h.CardHandler.Trending)
		r.Get("/{id}", h.CardHandler.Card)
		r.Get("/{id}/price", h.CardHandler.Price)
		r.Post("/{id}/refresh", h.CardHandler.Refresh)
	})

	r.Get("/sets", h.CardHandler.Sets)
	r.Get("/sets/{id}/cards", h.CardHandler.SetCards)

	r.Route("/collection", func(r chi.Router) {
		r.Get("/", h.CollectionHandler.List)
		r.Get("/{id}", h.CollectionHandler.Get)
		r.Put("/{id}", h.CollectionHandler.Put)
		r.Delete("/{id}", h.CollectionHandler.Delete)
	})

	r.Get("/exchange/rates", h.ExchangeHandler.Rates)
	r.Get("/exchange/convert", h.ExchangeHandler.Convert)

	return r
}
