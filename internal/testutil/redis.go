// Package testutil holds helpers for tests that need live infrastructure.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient connects to TEST_REDIS_URL (default localhost:6379) and skips
// the test when nothing answers. Keys under prefix are removed on cleanup.
func RedisClient(t *testing.T, prefix string) *redis.Client {
	t.Helper()

	opt := &redis.Options{Addr: "localhost:6379"}
	if raw := os.Getenv("TEST_REDIS_URL"); raw != "" {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			t.Fatalf("invalid TEST_REDIS_URL: %v", err)
		}
		opt = parsed
	}

	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		t.Skipf("redis unavailable: %v", err)
	}

	t.Cleanup(func() {
		ctx := context.Background()
		iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			rdb.Del(ctx, iter.Val())
		}
		rdb.Close()
	})
	return rdb
}

// KafkaBrokers returns TEST_KAFKA_BROKERS or skips the test.
func KafkaBrokers(t *testing.T) []string {
	t.Helper()
	raw := os.Getenv("TEST_KAFKA_BROKERS")
	if raw == "" {
		t.Skip("TEST_KAFKA_BROKERS not set")
	}
	return strings.Split(raw, ",")
}
