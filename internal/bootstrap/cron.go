package bootstrap

import (
	"context"
	"time"

	"tcg-tracker/internal/cron"
	"tcg-tracker/internal/query"
)

const (
	// warmLimit 0 warms the same keys the routes read when no ?limit= is sent.
	warmLimit     = 0
	sweepInterval = time.Minute
)

func StartCronJobs(ctx context.Context, catalog cron.Warmable, queryClient *query.Client, warmInterval time.Duration) {
	if warmInterval > 0 {
		warmer := cron.NewCacheWarmer(catalog, warmLimit, warmInterval)
		go warmer.Start(ctx)
	}
	go queryClient.StartSweeper(ctx, sweepInterval)
}
