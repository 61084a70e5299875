package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/infrastructure/config"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxSize int) (*Manager, *time.Time) {
	t.Helper()
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: time.Minute})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	t.Cleanup(func() { _ = m.Close() })
	return m, &now
}

func TestManager_SetGet(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 10)
	ctx := context.Background()

	_, err := m.Get(ctx, "model", "acne")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	require.NoError(t, m.Set(ctx, "model", "acne", "Salicylic Acid: Exfoliates"))

	got, err := m.Get(ctx, "model", "  ACNE ")
	require.NoError(t, err)
	assert.Equal(t, "Salicylic Acid: Exfoliates", got)

	_, err = m.Get(ctx, "other-model", "acne")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	stats := m.Stats()
	assert.EqualValues(t, 1, stats["hits"])
	assert.EqualValues(t, 2, stats["misses"])
}

func TestManager_Expiry(t *testing.T) {
	t.Parallel()
	m, now := newTestManager(t, 10)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "model", "dryness", "Hyaluronic Acid"))
	*now = now.Add(2 * time.Minute)

	_, err := m.Get(ctx, "model", "dryness")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	assert.EqualValues(t, 0, m.Stats()["size"])
}

func TestManager_EvictsLeastUsedWhenFull(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, 2)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "model", "a", "1"))
	require.NoError(t, m.Set(ctx, "model", "b", "2"))
	_, err := m.Get(ctx, "model", "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "model", "c", "3"))

	_, err = m.Get(ctx, "model", "b")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	got, err := m.Get(ctx, "model", "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}
