package bootstrap

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tcg-tracker/internal/kafka"

	"github.com/redis/go-redis/v9"
)

// GracefulShutdown stops background work, then the server, on SIGINT/SIGTERM.
// The returned channel closes once every connection is released.
func GracefulShutdown(srv *http.Server, stop context.CancelFunc, redisClient *redis.Client, kafkaBundle *kafka.KafkaBundle) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Println("🛑 Shutting down gracefully...")
		stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}

		kafkaBundle.Close()

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Printf("Redis close error: %v", err)
			}
		}
	}()
	return done
}
