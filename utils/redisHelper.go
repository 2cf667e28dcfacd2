package utils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/ucond/ucond_backend/config"
)

var (
	ErrLockNotObtained = errors.New("could not obtain lock")
	ErrLockLost        = errors.New("lock expired before the work finished")
)

// WithLock runs fn while holding the redis lock key. The lock is refreshed every half
// ttl for as long as fn runs; when a refresh fails fn's context is cancelled and the
// result is ErrLockLost. Without a redis connection fn runs unguarded.
func WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	locker := config.GetRedisLock()
	if locker == nil {
		return fn(ctx)
	}
	return withLocker(ctx, locker, key, ttl, fn)
}

func withLocker(ctx context.Context, locker *redislock.Client, key string, ttl time.Duration, fn func(context.Context) error) error {
	logger := config.GetLogger()
	lock, err := locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(logger, "RedisHelper", "WithLock", "Could not obtain lock", key, err)
		return ErrLockNotObtained
	} else if err != nil {
		config.LogError(logger, "RedisHelper", "WithLock", "Error obtaining lock", key, err)
		return err
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		keepLock(runCtx, lock, key, ttl, cancel)
	}()

	err = fn(runCtx)
	lost := errors.Is(context.Cause(runCtx), ErrLockLost)
	cancel(nil)
	wg.Wait()

	if !lost {
		_ = lock.Release(context.WithoutCancel(ctx))
	}
	if lost && err != nil {
		return errors.Join(ErrLockLost, err)
	}
	return err
}

func keepLock(ctx context.Context, lock *redislock.Lock, key string, ttl time.Duration, cancel context.CancelCauseFunc) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := lock.Refresh(ctx, ttl, nil); err != nil {
				if ctx.Err() != nil {
					return
				}
				config.LogError(config.GetLogger(), "RedisHelper", "WithLock", "Error refreshing lock", key, err)
				cancel(ErrLockLost)
				return
			}
		}
	}
}
