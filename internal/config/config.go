package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	PokemonTCGBaseURL string
	PokemonTCGAPIKey  string
	TCGdexBaseURL     string
	StaticFeedURL     string
	ExchangeBaseURL   string
	TargetCurrency    string

	// RedisURL empty means the file store under DataDir is used.
	RedisURL string
	DataDir  string

	// KafkaBrokers empty disables the collection event stream.
	KafkaBrokers    []string
	CollectionTopic string

	WarmInterval   time.Duration
	QueryCacheSize int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded (ok for prod)")
	}
	return &Config{
		Port:              getEnv("PORT", "8080"),
		PokemonTCGBaseURL: getEnv("POKEMONTCG_BASE_URL", "https://api.pokemontcg.io/v2"),
		PokemonTCGAPIKey:  os.Getenv("POKEMONTCG_API_KEY"),
		TCGdexBaseURL:     getEnv("TCGDEX_BASE_URL", "https://api.tcgdex.net/v2/en"),
		StaticFeedURL:     getEnv("STATIC_FEED_URL", "https://tcg.pokemon.com/assets/json/expansion-cards.json"),
		ExchangeBaseURL:   getEnv("FRANKFURTER_BASE_URL", "https://api.frankfurter.app"),
		TargetCurrency:    strings.ToUpper(getEnv("TARGET_CURRENCY", "BRL")),
		RedisURL:          os.Getenv("REDIS_URL"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		KafkaBrokers:      splitList(os.Getenv("KAFKA_BROKERS")),
		CollectionTopic:   getEnv("COLLECTION_KAFKA_TOPIC", "collection-events"),
		WarmInterval:      getDuration("WARM_INTERVAL", 10*time.Minute),
		QueryCacheSize:    1024,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
