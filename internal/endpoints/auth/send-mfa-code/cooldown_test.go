package sendmfacode

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partner-dashboard/internal/common/database"
	"partner-dashboard/internal/common/errors"
)

func newMiniredisCooldown(t *testing.T) (*RedisCooldown, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCooldown(database.NewRedisFromClient(client)), mr
}

func TestRedisCooldown_AcquireThenBlocked(t *testing.T) {
	cd, mr := newMiniredisCooldown(t)
	ctx := context.Background()

	ok, _, err := cd.Acquire(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("mfa:cooldown:user-1"))

	mr.FastForward(20 * time.Second)

	ok, wait, err := cd.Acquire(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)

	mr.FastForward(41 * time.Second)

	ok, _, err = cd.Acquire(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCooldown_Release(t *testing.T) {
	cd, mr := newMiniredisCooldown(t)
	ctx := context.Background()

	_, _, err := cd.Acquire(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, cd.Release(ctx, "user-1"))
	assert.False(t, mr.Exists("mfa:cooldown:user-1"))
}

func TestRedisCooldown_ZeroWindowDisabled(t *testing.T) {
	cd, mr := newMiniredisCooldown(t)

	ok, _, err := cd.Acquire(context.Background(), "user-1", 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mr.Exists("mfa:cooldown:user-1"))
}

func TestRedisCooldown_SetNXError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cd := NewRedisCooldown(database.NewRedisFromClient(client))

	mock.Regexp().ExpectSetNX("mfa:cooldown:user-1", `.*`, time.Minute).SetErr(fmt.Errorf("READONLY"))

	_, _, err := cd.Acquire(context.Background(), "user-1", time.Minute)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCacheFailed))
	assert.Contains(t, errors.AsStandard(err).Details, "acquire cooldown")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCooldown_ReleaseError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cd := NewRedisCooldown(database.NewRedisFromClient(client))

	mock.ExpectDel("mfa:cooldown:user-1").SetErr(fmt.Errorf("READONLY"))

	err := cd.Release(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCacheFailed))
	assert.Contains(t, errors.AsStandard(err).Details, "release cooldown")
}
