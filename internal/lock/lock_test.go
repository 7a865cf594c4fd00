package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client), mr
}

func TestTryLockAndRelease(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)

	_, ok, err = locker.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, locker.Release(ctx, "k", "someone-else"))
	assert.True(t, mr.Exists("k"))

	require.NoError(t, locker.Release(ctx, "k", token))
	assert.False(t, mr.Exists("k"))
}

func TestTryLockValidation(t *testing.T) {
	locker, _ := newTestLocker(t)

	_, _, err := locker.TryLock(context.Background(), "", time.Second)
	assert.Error(t, err)
	_, _, err = locker.TryLock(context.Background(), "k", 0)
	assert.Error(t, err)

	var nilLocker *Locker
	_, _, err = nilLocker.TryLock(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, nilLocker.Release(context.Background(), "k", "t"))
}

func TestSaveGuardExcludesSecondHolder(t *testing.T) {
	locker, mr := newTestLocker(t)
	guard := NewSaveGuard(locker, time.Minute, zap.NewNop())
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "42")
	require.NoError(t, err)
	assert.True(t, mr.Exists("dealdesk:proposal:save:42"))

	_, err = guard.Acquire(ctx, "42")
	assert.ErrorIs(t, err, ErrLocked)

	release(ctx)
	assert.False(t, mr.Exists("dealdesk:proposal:save:42"))

	release, err = guard.Acquire(ctx, "42")
	require.NoError(t, err)
	release(ctx)
}

func TestSaveGuardLockExpires(t *testing.T) {
	locker, mr := newTestLocker(t)
	guard := NewSaveGuard(locker, 5*time.Second, zap.NewNop())
	ctx := context.Background()

	_, err := guard.Acquire(ctx, "7")
	require.NoError(t, err)

	mr.FastForward(6 * time.Second)

	release, err := guard.Acquire(ctx, "7")
	require.NoError(t, err)
	release(ctx)
}

func TestNewSaveGuardWithoutLocker(t *testing.T) {
	assert.Nil(t, NewSaveGuard(nil, time.Second, zap.NewNop()))
	assert.Nil(t, NewLocker(nil))
}
