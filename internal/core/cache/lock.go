package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acp-checkout/internal/core/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLockTimeout is returned when a lock could not be acquired in time.
var ErrLockTimeout = errors.New("lock wait timed out")

const lockRetryInterval = 25 * time.Millisecond

// Locker is a distributed mutex keyed by string, built on SetNX with a random
// owner token. Locks expire after ttl so a crashed holder cannot block forever.
type Locker struct {
	cache Cache
	ttl   time.Duration
	wait  time.Duration
}

// NewLocker creates a Locker. ttl bounds how long a lock may be held and wait
// bounds how long Acquire blocks.
func NewLocker(c Cache, ttl, wait time.Duration) *Locker {
	return &Locker{
		cache: c,
		ttl:   ttl,
		wait:  wait,
	}
}

// Acquire blocks until the lock for key is held, wait elapses or ctx ends.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	token := []byte(uuid.NewString())

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.cache.SetNX(ctx, lockKey, token, l.ttl)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return nil, err
		}
		if ok {
			return l.releaser(lockKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}

func (l *Locker) releaser(lockKey string, token []byte) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		released, err := l.cache.DeleteIfEquals(ctx, lockKey, token)
		if err != nil {
			logger.Get().Warn("Failed to release lock", zap.String("key", lockKey), zap.Error(err))
			return
		}
		if !released {
			logger.Get().Warn("Lock expired before release", zap.String("key", lockKey))
		}
	}
}
