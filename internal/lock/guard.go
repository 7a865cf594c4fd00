package lock

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const saveKeyPrefix = "dealdesk:proposal:save:"

// SaveGuard serialises proposal saves across replicas.
type SaveGuard struct {
	locker *Locker
	ttl    time.Duration
	log    *zap.Logger
}

func NewSaveGuard(locker *Locker, ttl time.Duration, log *zap.Logger) *SaveGuard {
	if locker == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SaveGuard{locker: locker, ttl: ttl, log: log.Named("lock.save_guard")}
}

func SaveKey(key string) string {
	return saveKeyPrefix + key
}

// Acquire takes the save lock for key. It returns ErrLocked when another
// holder has it. The returned release func never fails the caller.
func (g *SaveGuard) Acquire(ctx context.Context, key string) (func(context.Context), error) {
	redisKey := SaveKey(key)
	token, ok, err := g.locker.TryLock(ctx, redisKey, g.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", redisKey, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) {
		if err := g.locker.Release(context.WithoutCancel(ctx), redisKey, token); err != nil {
			g.log.Warn("failed to release save lock", zap.String("key", redisKey), zap.Error(err))
		}
	}, nil
}
