package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spotly/pkg/cache"
)

// Store deduplicates retried creation requests. A caller-supplied key maps to
// the serialized result the first successful call produced; within the TTL a
// resubmission gets that result back instead of re-executing.
type Store interface {
	// Check returns true and fills dest when an unexpired record exists.
	// An empty key is always a miss.
	Check(ctx context.Context, tenantID, key string, dest interface{}) (bool, error)
	// Save records the result for the key. Empty keys are a no-op.
	// Writes are unconditional: a legitimate duplicate reproduces the same
	// result, so last-write-wins is acceptable.
	Save(ctx context.Context, tenantID, key string, result interface{}) error
}

type store struct {
	cache cache.Service
	ttl   time.Duration
}

// NewStore builds a Redis-backed store. The TTL doubles as the honor window
// and the reclamation mechanism - expired records simply vanish.
func NewStore(cacheService cache.Service, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &store{cache: cacheService, ttl: ttl}
}

func redisKey(tenantID, key string) string {
	return fmt.Sprintf("spotly:idem:%s:%s", tenantID, key)
}

func (s *store) Check(ctx context.Context, tenantID, key string, dest interface{}) (bool, error) {
	if key == "" {
		return false, nil
	}
	err := s.cache.Get(ctx, redisKey(tenantID, key), dest)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *store) Save(ctx context.Context, tenantID, key string, result interface{}) error {
	if key == "" {
		return nil
	}
	return s.cache.Set(ctx, redisKey(tenantID, key), result, s.ttl)
}
