package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tcg-tracker/internal/models"
	"tcg-tracker/internal/storage"
)

const (
	RatesKey        = "currency-rates-brl"
	RatesTTL        = time.Hour
	FallbackRetryIn = time.Minute
)

// FallbackRates are used per currency when the live quote cannot be fetched.
var FallbackRates = map[models.Currency]float64{
	models.USD: 5.5,
	models.EUR: 6.0,
}

type RateFetcher interface {
	FetchExchangeRate(ctx context.Context, base, target models.Currency) (*models.ExchangeRate, error)
}

// storedRates is the persisted form; timestamp is unix milliseconds.
type storedRates struct {
	Rates     map[models.Currency]float64 `json:"rates"`
	Timestamp int64                       `json:"timestamp"`
}

// CurrencyService converts USD and EUR amounts to the target currency. Live
// rates are kept for RatesTTL in memory and in the store; fallback rates are
// kept in memory only and retried after FallbackRetryIn.
type CurrencyService struct {
	store   storage.Store
	fetcher RateFetcher
	target  models.Currency
	now     func() time.Time

	mu       sync.RWMutex
	snapshot *models.ExchangeRateSnapshot
	loading  atomic.Bool
	group    singleflight.Group
}

func NewCurrencyService(store storage.Store, fetcher RateFetcher, target models.Currency) *CurrencyService {
	if target == "" {
		target = models.BRL
	}
	return &CurrencyService{store: store, fetcher: fetcher, target: target, now: time.Now}
}

func (s *CurrencyService) Target() models.Currency { return s.target }

// IsLoading reports whether a rate load is in flight.
func (s *CurrencyService) IsLoading() bool {
	return s.loading.Load()
}

// Rates returns the current snapshot, loading it first when missing or
// expired. It never fails: missing quotes fall back per currency.
func (s *CurrencyService) Rates(ctx context.Context) models.ExchangeRateSnapshot {
	if snap, ok := s.current(); ok {
		return snap
	}

	ch := s.group.DoChan(RatesKey, func() (any, error) {
		if snap, ok := s.current(); ok {
			return snap, nil
		}
		s.loading.Store(true)
		defer s.loading.Store(false)
		return s.load(context.WithoutCancel(ctx)), nil
	})

	select {
	case <-ctx.Done():
		// answer with whatever is known rather than nothing
		return s.stale()
	case res := <-ch:
		return res.Val.(models.ExchangeRateSnapshot)
	}
}

// Convert returns amount in the target currency. Non-positive amounts and
// unsupported currencies convert to 0.
func (s *CurrencyService) Convert(ctx context.Context, amount float64, from models.Currency) float64 {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	if from == s.target {
		return amount
	}
	rate, ok := s.Rates(ctx).Rates[from]
	if !ok || rate <= 0 {
		return 0
	}
	return amount * rate
}

func (s *CurrencyService) current() (models.ExchangeRateSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return models.ExchangeRateSnapshot{}, false
	}
	age := s.now().Sub(s.snapshot.FetchedAt)
	if (s.snapshot.Live && age < RatesTTL) || (!s.snapshot.Live && age < FallbackRetryIn) {
		return s.snapshot.Clone(), true
	}
	return models.ExchangeRateSnapshot{}, false
}

func (s *CurrencyService) stale() models.ExchangeRateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot != nil {
		return s.snapshot.Clone()
	}
	return s.fallbackSnapshot()
}

func (s *CurrencyService) fallbackSnapshot() models.ExchangeRateSnapshot {
	rates := make(map[models.Currency]float64, len(FallbackRates))
	for cur, rate := range FallbackRates {
		rates[cur] = rate
	}
	return models.ExchangeRateSnapshot{Target: s.target, Rates: rates, FetchedAt: s.now()}
}

func (s *CurrencyService) load(ctx context.Context) models.ExchangeRateSnapshot {
	if snap, ok := s.readStored(ctx); ok {
		s.set(snap)
		return snap.Clone()
	}

	currencies := []models.Currency{models.USD, models.EUR}
	quotes := make([]float64, len(currencies))
	var g errgroup.Group
	for i, cur := range currencies {
		g.Go(func() error {
			rate, err := s.fetcher.FetchExchangeRate(ctx, cur, s.target)
			if err != nil {
				log.Printf("⚠️ rate %s->%s failed, using fallback: %v", cur, s.target, err)
				return nil
			}
			quotes[i] = rate.Rate
			return nil
		})
	}
	_ = g.Wait()

	snap := models.ExchangeRateSnapshot{
		Target:    s.target,
		Rates:     make(map[models.Currency]float64, len(currencies)),
		FetchedAt: s.now(),
		Live:      true,
	}
	for i, cur := range currencies {
		if quotes[i] > 0 {
			snap.Rates[cur] = quotes[i]
			continue
		}
		snap.Rates[cur] = FallbackRates[cur]
		snap.Live = false
	}

	if snap.Live {
		s.persist(ctx, snap)
	}
	s.set(snap)
	return snap.Clone()
}

func (s *CurrencyService) set(snap models.ExchangeRateSnapshot) {
	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()
}

func (s *CurrencyService) readStored(ctx context.Context) (models.ExchangeRateSnapshot, bool) {
	data, err := s.store.Get(ctx, RatesKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("⚠️ stored rates unreadable: %v", err)
		}
		return models.ExchangeRateSnapshot{}, false
	}
	var stored storedRates
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("⚠️ stored rates malformed, dropping: %v", err)
		if err := s.store.Delete(ctx, RatesKey); err != nil {
			log.Printf("drop stored rates: %v", err)
		}
		return models.ExchangeRateSnapshot{}, false
	}
	fetchedAt := time.UnixMilli(stored.Timestamp)
	if s.now().Sub(fetchedAt) >= RatesTTL {
		return models.ExchangeRateSnapshot{}, false
	}
	for cur := range FallbackRates {
		if stored.Rates[cur] <= 0 {
			return models.ExchangeRateSnapshot{}, false
		}
	}
	return models.ExchangeRateSnapshot{Target: s.target, Rates: stored.Rates, FetchedAt: fetchedAt, Live: true}, true
}

func (s *CurrencyService) persist(ctx context.Context, snap models.ExchangeRateSnapshot) {
	data, err := json.Marshal(storedRates{Rates: snap.Rates, Timestamp: snap.FetchedAt.UnixMilli()})
	if err != nil {
		log.Printf("encode rates: %v", err)
		return
	}
	if err := s.store.Set(ctx, RatesKey, data, RatesTTL); err != nil {
		log.Printf("⚠️ failed to persist rates: %v", err)
		return
	}
	log.Printf("💱 rates cached: %v", snap.Rates)
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders amount the Brazilian way, e.g. "R$ 1.234,56".
func FormatBRL(amount float64) string {
	if amount < 0 {
		return "-R$ " + brl.Sprintf("%.2f", -amount)
	}
	return "R$ " + brl.Sprintf("%.2f", amount)
}
