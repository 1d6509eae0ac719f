package bootstrap

import (
	"tcg-tracker/internal/handlers"
	"tcg-tracker/internal/services"
)

type HandlersBundle struct {
	CardHandler       *handlers.CardHandler
	CollectionHandler *handlers.CollectionHandler
	ExchangeHandler   *handlers.ExchangeHandler
}

type ServicesBundle struct {
	Catalog    *services.CatalogService
	Collection *services.CollectionService
	Trending   *services.TrendingService
	Currency   *services.CurrencyService
}

func InitBootstrap(svc *ServicesBundle) *HandlersBundle {
	return &HandlersBundle{
		CardHandler:       handlers.NewCardHandler(svc.Catalog, svc.Trending),
		CollectionHandler: handlers.NewCollectionHandler(svc.Collection, svc.Catalog),
		ExchangeHandler:   handlers.NewExchangeHandler(svc.Currency),
	}
}
