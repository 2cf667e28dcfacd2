package utils_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/utils"
)

const lockKey = "lock:test"

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedis(client)
	t.Cleanup(func() {
		config.SetRedis(nil)
		_ = client.Close()
	})
	return mr
}

func TestWithLockWithoutRedisRunsUnguarded(t *testing.T) {
	config.SetRedis(nil)
	ran := false
	err := utils.WithLock(context.Background(), lockKey, time.Second, func(context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithLockIsExclusive(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	err := utils.WithLock(ctx, lockKey, time.Minute, func(ctx context.Context) error {
		assert.True(t, mr.Exists(lockKey))
		inner := utils.WithLock(ctx, lockKey, time.Minute, func(context.Context) error {
			t.Error("second holder must not run")
			return nil
		})
		assert.ErrorIs(t, inner, utils.ErrLockNotObtained)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(lockKey))
}

func TestWithLockRefreshesWhileRunning(t *testing.T) {
	mr := useMiniredis(t)
	ttl := 200 * time.Millisecond

	err := utils.WithLock(context.Background(), lockKey, ttl, func(ctx context.Context) error {
		mr.FastForward(150 * time.Millisecond)
		require.True(t, mr.Exists(lockKey))
		assert.Eventually(t, func() bool {
			return mr.TTL(lockKey) > 100*time.Millisecond
		}, 2*time.Second, 10*time.Millisecond)
		assert.NoError(t, ctx.Err())
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(lockKey))
}

func TestWithLockCancelsWorkWhenLockIsLost(t *testing.T) {
	mr := useMiniredis(t)

	err := utils.WithLock(context.Background(), lockKey, 100*time.Millisecond, func(ctx context.Context) error {
		mr.Del(lockKey)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			return nil
		}
	})
	assert.ErrorIs(t, err, utils.ErrLockLost)
}
