package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(max int, window time.Duration) *RateLimiter {
	return NewRateLimiter(NewMemoryStore(), &Config{
		Enabled:        true,
		WindowDuration: window,
		MaxRequests:    max,
	})
}

func TestIsAllowedExactWindow(t *testing.T) {
	limiter := newTestLimiter(5, time.Minute)
	ctx := context.Background()

	// Exactly max requests pass.
	for i := 1; i <= 5; i++ {
		result, err := limiter.IsAllowed(ctx, "caller-1")
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i)
		assert.Equal(t, 5-i, result.Remaining)
	}

	// Request max+1 is rejected.
	result, err := limiter.IsAllowed(ctx, "caller-1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 5, result.Limit)
}

func TestIsAllowedIndependentCallers(t *testing.T) {
	limiter := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.IsAllowed(ctx, "caller-1")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	blocked, err := limiter.IsAllowed(ctx, "caller-1")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	// A different caller still has a full window.
	other, err := limiter.IsAllowed(ctx, "caller-2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
	assert.Equal(t, 1, other.Remaining)
}

func TestIsAllowedWindowReset(t *testing.T) {
	limiter := newTestLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	first, err := limiter.IsAllowed(ctx, "caller-1")
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	second, err := limiter.IsAllowed(ctx, "caller-1")
	require.NoError(t, err)
	assert.False(t, second.Allowed)

	time.Sleep(30 * time.Millisecond)

	third, err := limiter.IsAllowed(ctx, "caller-1")
	require.NoError(t, err)
	assert.True(t, third.Allowed, "window should have reset")
}

func TestIsAllowedDisabled(t *testing.T) {
	limiter := NewRateLimiter(NewMemoryStore(), &Config{
		Enabled:        false,
		WindowDuration: time.Minute,
		MaxRequests:    1,
	})

	for i := 0; i < 10; i++ {
		result, err := limiter.IsAllowed(context.Background(), "caller-1")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

// stubStore lets the shared-layer tests control the cross-instance count.
type stubStore struct {
	count int64
	err   error
}

func (s *stubStore) Incr(context.Context, string, time.Duration) (int64, error) {
	return s.count, s.err
}

func TestSharedStoreTightensLimit(t *testing.T) {
	limiter := newTestLimiter(5, time.Minute)
	limiter.WithSharedStore(&stubStore{count: 6})

	// Locally this is request 1, but the fleet-wide count is already over.
	result, err := limiter.IsAllowed(context.Background(), "caller-1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestSharedStoreFailureFallsBackToLocal(t *testing.T) {
	limiter := newTestLimiter(2, time.Minute)
	limiter.WithSharedStore(&stubStore{err: assert.AnError})

	// The local window still enforces the limit on its own.
	for i := 0; i < 2; i++ {
		result, err := limiter.IsAllowed(context.Background(), "caller-1")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
	result, err := limiter.IsAllowed(context.Background(), "caller-1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
}

func TestMemoryStoreCounts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := store.Incr(ctx, "other", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestMemoryStoreEvictsExpiredWindows(t *testing.T) {
	store := NewMemoryStore()
	mem := store.(*memoryStore)
	ctx := context.Background()
	window := 10 * time.Millisecond

	// One-off callers, like unauthenticated IPs, each leave a window behind.
	for _, key := range []string{"ip:10.0.0.1", "ip:10.0.0.2", "ip:10.0.0.3"} {
		_, err := store.Incr(ctx, key, window)
		require.NoError(t, err)
	}
	assert.Len(t, mem.windows, 3)

	time.Sleep(2 * window)

	// The next increment sweeps the expired windows instead of letting the
	// map grow with every caller ever seen.
	_, err := store.Incr(ctx, "caller-1", window)
	require.NoError(t, err)

	mem.mu.Lock()
	defer mem.mu.Unlock()
	assert.Len(t, mem.windows, 1)
	assert.Contains(t, mem.windows, "caller-1")
}
