package cron

import (
	"context"
	"errors"
	"log"
	"time"

	"tcg-tracker/internal/models"
)

// Warmable is the part of the catalog the warmer keeps hot.
type Warmable interface {
	Featured(ctx context.Context, limit int) (models.CardPage, error)
	Recent(ctx context.Context, limit int) (models.CardPage, error)
	Sets(ctx context.Context, series string) ([]models.CardSet, error)
	Rates(ctx context.Context) models.ExchangeRateSnapshot
}

// CacheWarmer periodically refetches the home listings, the set catalog and
// the exchange rates.
type CacheWarmer struct {
	catalog  Warmable
	limit    int
	interval time.Duration
}

func NewCacheWarmer(catalog Warmable, limit int, interval time.Duration) *CacheWarmer {
	return &CacheWarmer{
		catalog:  catalog,
		limit:    limit,
		interval: interval,
	}
}

func (w *CacheWarmer) Start(ctx context.Context) {
	log.Printf("🕗 CacheWarmer started (interval: %v)", w.interval)

	if err := w.RunOnce(ctx); err != nil {
		log.Printf("CacheWarmer iteration failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				log.Printf("CacheWarmer iteration failed: %v", err)
			}

		case <-ctx.Done():
			log.Println("CacheWarmer stopped")
			return
		}
	}
}

// RunOnce refreshes every warmed entry and returns the joined failures.
func (w *CacheWarmer) RunOnce(ctx context.Context) error {
	var errs []error

	if _, err := w.catalog.Featured(ctx, w.limit); err != nil {
		errs = append(errs, err)
	}
	if _, err := w.catalog.Recent(ctx, w.limit); err != nil {
		errs = append(errs, err)
	}
	if _, err := w.catalog.Sets(ctx, ""); err != nil {
		errs = append(errs, err)
	}
	rates := w.catalog.Rates(ctx)

	log.Printf("Cache warmed (%d failures, rates live=%v)", len(errs), rates.Live)
	return errors.Join(errs...)
}
