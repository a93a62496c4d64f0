package lock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a lease-based lock shared by every instance pointing at the same
// Redis. The lease expires after ttl if the holder dies.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	logger *slog.Logger
}

func NewRedis(client *redis.Client, ttl, retry time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		retry:  retry,
		logger: slog.Default(),
	}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
		}

		if ok {
			return r.releaser(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquiring lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *Redis) releaser(key, token string) func() {
	return func() {
		// The caller's context may already be cancelled; the release must still go out.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
			r.logger.Warn("failed to release lock", "key", key, "error", err)
		}
	}
}
