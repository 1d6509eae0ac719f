package query

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/avast/retry-go/v4"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"
)

const DefaultCacheSize = 1024

type entry struct {
	key        Key
	data       any
	fetchedAt  time.Time
	staleAfter time.Duration
	gcAfter    time.Duration
}

func (e *entry) fresh(now time.Time) bool {
	return now.Sub(e.fetchedAt) < e.staleAfter
}

func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.fetchedAt) > e.gcAfter
}

// Client is a keyed request cache. Fetches for the same key never overlap.
type Client struct {
	cache    *lru.Cache
	group    singleflight.Group
	defaults Options
	now      func() time.Time
}

func NewClient(size int, defaults ...Option) (*Client, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	opts := DefaultOptions()
	for _, o := range defaults {
		o(&opts)
	}
	return &Client{cache: cache, defaults: opts, now: time.Now}, nil
}

// Fetch returns the cached value for key while it is fresh. Otherwise it runs
// fn with retries and stores the result. Concurrent callers for one key share
// a single run of fn.
//
// The shared run is detached from ctx: a caller whose ctx ends gets ctx.Err()
// right away, and the run still completes and fills the cache.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error), opts ...Option) (T, error) {
	var zero T
	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}
	k := key.String()

	if e, ok := c.lookup(k); ok && e.fresh(c.now()) {
		return cast[T](k, e.data)
	}

	ch := c.group.DoChan(k, func() (any, error) {
		if e, ok := c.lookup(k); ok && e.fresh(c.now()) {
			return e.data, nil
		}
		var out T
		err := c.run(context.WithoutCancel(ctx), o, func(runCtx context.Context) error {
			v, err := fn(runCtx)
			if err != nil {
				return err
			}
			out = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.cache.Add(k, &entry{
			key:        key,
			data:       out,
			fetchedAt:  c.now(),
			staleAfter: o.StaleTime,
			gcAfter:    o.GCTime,
		})
		return out, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return cast[T](k, res.Val)
	}
}

func cast[T any](key string, v any) (T, error) {
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query: key %s holds %T, not %T", key, v, zero)
	}
	return out, nil
}

func (c *Client) run(ctx context.Context, o Options, attempt func(context.Context) error) error {
	retries := 0
	return retry.Do(
		func() error { return attempt(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(o.RetryCount)+1),
		retry.DelayType(func(_ uint, err error, _ *retry.Config) time.Duration {
			d := o.RetryDelay(retries)
			retries++
			log.Printf("query: retry %d in %s: %v", retries, d, err)
			return d
		}),
		retry.RetryIf(func(err error) bool {
			return o.RetryIf == nil || o.RetryIf(err)
		}),
		retry.LastErrorOnly(true),
	)
}

// lookup returns the live entry for k, dropping it when past its gc time.
func (c *Client) lookup(k string) (*entry, bool) {
	v, ok := c.cache.Get(k)
	if !ok {
		return nil, false
	}
	e := v.(*entry)
	if e.expired(c.now()) {
		c.cache.Remove(k)
		return nil, false
	}
	return e, true
}

// Invalidate drops every entry whose key starts with prefix.
func (c *Client) Invalidate(prefix Key) int {
	removed := 0
	for _, raw := range c.cache.Keys() {
		v, ok := c.cache.Peek(raw)
		if !ok {
			continue
		}
		if v.(*entry).key.HasPrefix(prefix) {
			c.cache.Remove(raw)
			removed++
		}
	}
	return removed
}

// Sweep drops entries past their gc time.
func (c *Client) Sweep() int {
	now := c.now()
	removed := 0
	for _, raw := range c.cache.Keys() {
		v, ok := c.cache.Peek(raw)
		if !ok {
			continue
		}
		if v.(*entry).expired(now) {
			c.cache.Remove(raw)
			removed++
		}
	}
	return removed
}

func (c *Client) size() int {
	return c.cache.Len()
}

// StartSweeper runs Sweep every interval until ctx ends.
func (c *Client) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				log.Printf("query: swept %d expired entries", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
