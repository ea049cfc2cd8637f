package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spotly/pkg/cache"
)

// Config holds rate limiting configuration
type Config struct {
	Enabled        bool          `json:"enabled"`
	WindowDuration time.Duration `json:"window_duration"`
	MaxRequests    int           `json:"max_requests"`
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// Store counts requests per caller inside a fixed window. Incr returns the
// caller's position in the current window, first request counting as 1.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// memoryStore is the in-process fixed window counter. It is always active
// when the limiter is enabled; the shared store only layers on top of it.
// Expired windows are swept opportunistically on Incr so the map stays
// bounded by the number of callers active within one window, not by every
// key ever seen.
type memoryStore struct {
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

type window struct {
	start time.Time
	count int64
}

// NewMemoryStore creates an in-process fixed window store.
func NewMemoryStore() Store {
	return &memoryStore{windows: make(map[string]*window), lastSweep: time.Now()}
}

func (s *memoryStore) Incr(_ context.Context, key string, windowDur time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.sweep(now, windowDur)

	w, ok := s.windows[key]
	if !ok || now.Sub(w.start) >= windowDur {
		w = &window{start: now}
		s.windows[key] = w
	}
	w.count++
	return w.count, nil
}

// sweep drops windows that have already expired, at most once per window
// duration so the scan cost amortizes across requests.
func (s *memoryStore) sweep(now time.Time, windowDur time.Duration) {
	if now.Sub(s.lastSweep) < windowDur {
		return
	}
	for key, w := range s.windows {
		if now.Sub(w.start) >= windowDur {
			delete(s.windows, key)
		}
	}
	s.lastSweep = now
}

// redisStore shares one window across instances. Window boundaries are
// aligned to the TTL set on first increment, which is close enough to the
// fixed window for a shared backstop.
type redisStore struct {
	cache cache.Service
}

// NewRedisStore creates a Redis-backed fixed window store.
func NewRedisStore(svc cache.Service) Store {
	return &redisStore{cache: svc}
}

func (s *redisStore) Incr(ctx context.Context, key string, windowDur time.Duration) (int64, error) {
	return s.cache.IncrWithTTL(ctx, "spotly:ratelimit:"+key, windowDur)
}

// RateLimiter enforces a fixed request window per caller. The local store
// is mandatory; the shared store is optional and consulted second, so a
// Redis outage can only make limiting looser across instances, never
// disable the local window.
type RateLimiter struct {
	local  Store
	shared Store
	config *Config
}

func NewRateLimiter(local Store, config *Config) *RateLimiter {
	return &RateLimiter{local: local, config: config}
}

// WithSharedStore layers a cross-instance store on top of the local one.
func (r *RateLimiter) WithSharedStore(shared Store) *RateLimiter {
	r.shared = shared
	return r
}

// IsAllowed checks whether the caller may proceed. Exactly MaxRequests
// requests pass per window; the request after that is rejected.
func (r *RateLimiter) IsAllowed(ctx context.Context, caller string) (*Result, error) {
	limit := r.config.MaxRequests
	resetTime := time.Now().Add(r.config.WindowDuration).Unix()

	if !r.config.Enabled {
		return &Result{Allowed: true, Limit: limit, Remaining: limit, ResetTime: resetTime}, nil
	}

	count, err := r.local.Incr(ctx, caller, r.config.WindowDuration)
	if err != nil {
		return nil, fmt.Errorf("rate limit count failed: %w", err)
	}

	if r.shared != nil {
		sharedCount, err := r.shared.Incr(ctx, caller, r.config.WindowDuration)
		if err == nil && sharedCount > count {
			count = sharedCount
		}
		// Shared store errors are ignored; the local window already counted.
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}, nil
}
