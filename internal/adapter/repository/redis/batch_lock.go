package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// BatchLock implements usecase.BatchLock with SET NX and an owner token.
type BatchLock struct {
	client redis.UniversalClient
	prefix string
}

// NewBatchLock creates a new BatchLock.
func NewBatchLock(client redis.UniversalClient) *BatchLock {
	return &BatchLock{
		client: client,
		prefix: "lock:",
	}
}

// TryLock takes the lock for ttl. It returns acquired=false without error when someone else holds it.
func (l *BatchLock) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, err := newToken()
	if err != nil {
		return "", false, err
	}

	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}

	return token, true, nil
}

// Unlock releases the lock if token still owns it. A lock that expired and was
// taken by another holder is left alone.
func (l *BatchLock) Unlock(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Err()
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
