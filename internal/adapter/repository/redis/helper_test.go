package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
)

// newTestRedisClient starts an in-process redis. Callers own both handles.
func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr:        mr.Addr(),
		DialTimeout: time.Second,
	})

	return client, mr
}

// mustClaim claims an idempotency key and fails if it was already taken.
func mustClaim(t *testing.T, store *IdempotencyStore, key string, ttl time.Duration) {
	t.Helper()

	exists, _, err := store.CheckAndSet(context.Background(), key, nil, ttl)
	if err != nil {
		t.Fatalf("claim %q failed: %v", key, err)
	}
	if exists {
		t.Fatalf("key %q already claimed", key)
	}
}
