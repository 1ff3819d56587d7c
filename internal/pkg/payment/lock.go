package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LockManager serializes webhook processing per transaction. At most one
// holder per order ref at any instant; locks expire on their own so a
// crashed handler cannot block a transaction forever.
type LockManager interface {
	Acquire(ctx context.Context, orderRef string) (LockResult, error)
	Release(ctx context.Context, orderRef, lockID string)
}

// releaseScript deletes the lock only when it still carries our lock id.
// A plain GET+DEL would race with lock expiry and steal a successor's lock.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// RedisLockManager implements LockManager with an atomic SET NX PX against
// the shared cache.
type RedisLockManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLockManager creates a lock manager with the given lock lifetime.
// The lifetime is intentionally independent from the transaction expiry.
func NewRedisLockManager(client *redis.Client, ttl time.Duration) *RedisLockManager {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLockManager{client: client, ttl: ttl}
}

// Acquire attempts to take the per-transaction lock. A lock already held by
// someone else is reported as Acquired=false, not as an error.
func (m *RedisLockManager) Acquire(ctx context.Context, orderRef string) (LockResult, error) {
	lockID := uuid.New().String()
	ok, err := m.client.SetNX(ctx, lockKey(orderRef), lockID, m.ttl).Result()
	if err != nil {
		return LockResult{}, err
	}
	if !ok {
		return LockResult{Acquired: false}, nil
	}
	return LockResult{Acquired: true, LockID: lockID}, nil
}

// Release is idempotent: releasing a lock that already expired or was
// already released is a no-op worth logging, never a failure.
func (m *RedisLockManager) Release(ctx context.Context, orderRef, lockID string) {
	res, err := m.client.Eval(ctx, releaseScript, []string{lockKey(orderRef)}, lockID).Result()
	if err != nil {
		log.Warnf("[Payment] lock release for %s failed: %v", orderRef, err)
		return
	}
	if n, ok := res.(int64); ok && n == 0 {
		log.Infof("[Payment] lock for %s was no longer held (expired or already released)", orderRef)
	}
}

func lockKey(orderRef string) string {
	return fmt.Sprintf("paylock:tx:%s", orderRef)
}
