package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	l := NewLocalLocker()
	l.now = func() time.Time { return now }

	release, ok, err := l.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "sweep", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "lease is held")

	_, ok, _ = l.TryLock(ctx, "other", time.Minute)
	assert.True(t, ok, "keys are independent")

	release()
	release()

	_, ok, _ = l.TryLock(ctx, "sweep", time.Minute)
	assert.True(t, ok, "released lease can be taken")
}

func TestLocalLocker_ExpiredLease(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	l := NewLocalLocker()
	l.now = func() time.Time { return now }

	staleRelease, ok, _ := l.TryLock(ctx, "sweep", time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = l.TryLock(ctx, "sweep", time.Minute)
	require.True(t, ok, "expired lease is taken over")

	staleRelease()
	_, ok, _ = l.TryLock(ctx, "sweep", time.Minute)
	assert.False(t, ok, "a stale holder cannot release the new lease")
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := NewRedisClient("not a url")
	assert.Error(t, err)
}
