package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes a lock key only when the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0`)

// RedisTicketLocker serializes transitions per ticket id across all service
// instances using a SET-NX lease.
type RedisTicketLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisTicketLocker builds a locker over the given client.
func NewRedisTicketLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisTicketLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisTicketLocker{client: client, ttl: ttl, logger: logger}
}

// Acquire blocks until the per-ticket lock is held or ctx is done. The
// returned function releases the lock; release after lease expiry is a no-op.
func (l *RedisTicketLocker) Acquire(ctx context.Context, ticketID string) (func(), error) {
	key := "ticket_lock:" + ticketID
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("ticket lock release failed",
				zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}
	return release, nil
}
