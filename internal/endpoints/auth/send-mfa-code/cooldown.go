package sendmfacode

import (
	"context"
	"fmt"
	"time"

	"partner-dashboard/internal/common/database"
	"partner-dashboard/internal/common/errors"
)

// Cooldown limits how often a user can request a new code.
type Cooldown interface {
	// Acquire starts a cooldown window for userID. It returns false and the
	// remaining wait when a window is already open.
	Acquire(ctx context.Context, userID string, window time.Duration) (bool, time.Duration, error)
	// Release closes the window early, used when issuing failed.
	Release(ctx context.Context, userID string) error
}

const cooldownKeyPrefix = "mfa:cooldown:"

type RedisCooldown struct {
	redis *database.RedisClient
}

func NewRedisCooldown(r *database.RedisClient) *RedisCooldown {
	return &RedisCooldown{redis: r}
}

func cooldownKey(userID string) string {
	return cooldownKeyPrefix + userID
}

func (c *RedisCooldown) Acquire(ctx context.Context, userID string, window time.Duration) (bool, time.Duration, error) {
	if window <= 0 {
		return true, 0, nil
	}

	ok, err := c.redis.SetNX(ctx, cooldownKey(userID), time.Now().UTC().Unix(), window)
	if err != nil {
		return false, 0, errors.NewCacheFailedError(fmt.Errorf("acquire cooldown: %w", err))
	}
	if ok {
		return true, 0, nil
	}

	ttl, err := c.redis.TTL(ctx, cooldownKey(userID))
	if err != nil || ttl < 0 {
		// key vanished or has no expiry; report the full window
		return false, window, nil
	}
	return false, ttl, nil
}

func (c *RedisCooldown) Release(ctx context.Context, userID string) error {
	if err := c.redis.Del(ctx, cooldownKey(userID)); err != nil {
		return errors.NewCacheFailedError(fmt.Errorf("release cooldown: %w", err))
	}
	return nil
}
