package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultLockTTL = 10 * time.Second

// Locker serializes purchases per event across processes with a SetNX lock.
// The database transaction remains the correctness guarantee; this keeps
// concurrent buyers of a hot event from piling up on the row lock.
type Locker struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLocker(client *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{Client: client, TTL: ttl}
}

func lockKey(eventID string) string {
	return "purchase_lock:event:" + eventID
}

// LockEvent tries to take the purchase lock for an event. token identifies
// the holder so an expired lock can't be released by a later holder.
func (l *Locker) LockEvent(ctx context.Context, eventID, token string) (bool, error) {
	return l.Client.SetNX(ctx, lockKey(eventID), token, l.TTL).Result()
}

// UnlockEvent releases the lock if this holder still owns it.
func (l *Locker) UnlockEvent(ctx context.Context, eventID, token string) error {
	key := lockKey(eventID)
	val, err := l.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err = l.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
