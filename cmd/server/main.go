package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"tcg-tracker/internal/api"
	"tcg-tracker/internal/bootstrap"
	"tcg-tracker/internal/config"
	"tcg-tracker/internal/db"
	"tcg-tracker/internal/kafka"
	"tcg-tracker/internal/models"
	"tcg-tracker/internal/query"
	"tcg-tracker/internal/repositories"
	"tcg-tracker/internal/services"
	"tcg-tracker/internal/storage"
	"tcg-tracker/internal/workers"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// ------------------------
	// Storage
	// ------------------------
	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	store, err := openStore(cfg, redisClient)
	if err != nil {
		log.Fatalf("❌ Storage init failed: %v", err)
	}

	// ------------------------
	// Kafka + workers
	// ------------------------
	kafkaBundle, err := kafka.InitKafka(cfg)
	if err != nil {
		log.Fatalf("❌ Kafka init failed: %v", err)
	}

	var (
		recorder   workers.PopularityRecorder
		popularity services.PopularityReader
	)
	if redisClient != nil {
		repo := repositories.NewPopularityRepository(redisClient)
		recorder, popularity = repo, repo
	} else {
		log.Println("⚠️ No Redis configured, trending is disabled")
	}
	workerBundle := workers.StartAllWorkers(ctx, recorder, kafkaBundle)

	// ------------------------
	// Services
	// ------------------------
	queryClient, err := query.NewClient(cfg.QueryCacheSize)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	pokemonTCG := api.NewPokemonTCGClient(cfg.PokemonTCGBaseURL, cfg.PokemonTCGAPIKey, nil)
	fetcher := services.NewMultiSourceFetcher(
		services.NewPokemonTCGSource(pokemonTCG),
		services.NewTCGdexSource(api.NewTCGdexClient(cfg.TCGdexBaseURL, nil)),
		services.NewStaticFeedSource(api.NewStaticFeedClient(cfg.StaticFeedURL, nil)),
	)
	currency := services.NewCurrencyService(
		store,
		api.NewExchangeClient(cfg.ExchangeBaseURL, nil),
		models.Currency(cfg.TargetCurrency),
	)
	catalog := services.NewCatalogService(queryClient, fetcher, pokemonTCG, currency)

	collectionRepo := repositories.NewCollectionRepository(ctx, store)
	svc := &bootstrap.ServicesBundle{
		Catalog:    catalog,
		Collection: services.NewCollectionService(collectionRepo, workerBundle.Publisher),
		Trending:   services.NewTrendingService(popularity, catalog),
		Currency:   currency,
	}

	bootstrap.StartCronJobs(ctx, catalog, queryClient, cfg.WarmInterval)

	// ------------------------
	// Server
	// ------------------------
	r := bootstrap.InitRoutes(bootstrap.InitBootstrap(svc))
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	done := bootstrap.GracefulShutdown(srv, stop, redisClient, kafkaBundle)

	log.Printf("🚀 Server started on :%s", cfg.Port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-done
}

func openStore(cfg *config.Config, redisClient *redis.Client) (storage.Store, error) {
	if redisClient != nil {
		return storage.NewRedisStore(redisClient, ""), nil
	}
	log.Printf("Using file store in %s", cfg.DataDir)
	return storage.NewFileStore(cfg.DataDir)
}
