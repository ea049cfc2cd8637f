package idempotency

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"spotly/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCache is an in-memory cache.Service; TTLs are recorded but not enforced.
type fakeCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = raw
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) Exists(_ context.Context, key string) bool {
	_, ok := f.data[key]
	return ok
}

func (f *fakeCache) IncrWithTTL(context.Context, string, time.Duration) (int64, error) {
	return 0, nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }

type testResult struct {
	ID     string `json:"id"`
	Ticket int64  `json:"ticket"`
}

func TestStoreSaveAndCheck(t *testing.T) {
	fc := newFakeCache()
	store := NewStore(fc, time.Hour)
	ctx := context.Background()

	var miss testResult
	hit, err := store.Check(ctx, "tenant-1", "key-1", &miss)
	require.NoError(t, err)
	assert.False(t, hit)

	saved := testResult{ID: "b-1", Ticket: 1007}
	require.NoError(t, store.Save(ctx, "tenant-1", "key-1", saved))

	var replayed testResult
	hit, err = store.Check(ctx, "tenant-1", "key-1", &replayed)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, saved, replayed)
}

func TestStoreKeysAreTenantScoped(t *testing.T) {
	fc := newFakeCache()
	store := NewStore(fc, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tenant-1", "key-1", testResult{ID: "b-1"}))

	var other testResult
	hit, err := store.Check(ctx, "tenant-2", "key-1", &other)
	require.NoError(t, err)
	assert.False(t, hit, "the same key under a different tenant must miss")
}

func TestStoreEmptyKeyIsNoop(t *testing.T) {
	fc := newFakeCache()
	store := NewStore(fc, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "tenant-1", "", testResult{ID: "b-1"}))
	assert.Empty(t, fc.data)

	var dest testResult
	hit, err := store.Check(ctx, "tenant-1", "", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestStoreAppliesConfiguredTTL(t *testing.T) {
	fc := newFakeCache()
	store := NewStore(fc, 6*time.Hour)

	require.NoError(t, store.Save(context.Background(), "tenant-1", "key-1", testResult{}))
	for _, ttl := range fc.ttls {
		assert.Equal(t, 6*time.Hour, ttl)
	}

	// A non-positive TTL falls back to the 24h default.
	fc2 := newFakeCache()
	store2 := NewStore(fc2, 0)
	require.NoError(t, store2.Save(context.Background(), "tenant-1", "key-1", testResult{}))
	for _, ttl := range fc2.ttls {
		assert.Equal(t, 24*time.Hour, ttl)
	}
}
