package query

import (
	"time"

	"tcg-tracker/internal/api"
)

const (
	DefaultStaleTime  = 5 * time.Minute
	DefaultGCTime     = 10 * time.Minute
	DefaultRetryCount = 2

	baseRetryDelay = time.Second
	maxRetryDelay  = 30 * time.Second
)

// Options is the per-request cache and retry policy.
type Options struct {
	// StaleTime is how long a stored result is served without refetching.
	// Zero means every read refetches (concurrent reads still share one fetch).
	StaleTime time.Duration
	// GCTime is how long a stored result is kept at all.
	GCTime     time.Duration
	RetryCount int
	RetryDelay func(attempt int) time.Duration
	RetryIf    func(error) bool
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		StaleTime:  DefaultStaleTime,
		GCTime:     DefaultGCTime,
		RetryCount: DefaultRetryCount,
		RetryDelay: BackoffDelay,
		RetryIf:    api.IsRetryable,
	}
}

func WithStaleTime(d time.Duration) Option {
	return func(o *Options) { o.StaleTime = d }
}

func WithGCTime(d time.Duration) Option {
	return func(o *Options) { o.GCTime = d }
}

func WithRetry(count int) Option {
	return func(o *Options) { o.RetryCount = count }
}

func WithRetryDelay(delay func(attempt int) time.Duration) Option {
	return func(o *Options) { o.RetryDelay = delay }
}

func WithRetryIf(retryIf func(error) bool) Option {
	return func(o *Options) { o.RetryIf = retryIf }
}

// BackoffDelay returns min(1s * 2^attempt, 30s); attempt 0 is the first retry.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		return baseRetryDelay
	}
	// 2^5 s already exceeds the cap
	if attempt >= 5 {
		return maxRetryDelay
	}
	d := baseRetryDelay * time.Duration(1<<attempt)
	if d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}
