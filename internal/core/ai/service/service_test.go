package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/cache"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/infrastructure/config"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) GetModel() string { return "fake" }

func newMemoryCache(t *testing.T) cache.Cache {
	t.Helper()
	c := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGenerate_UsesCache(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: "Retinol, Vitamin C"}
	svc := NewService(gen, newMemoryCache(t), Options{EnableCache: true, MaxConcurrent: 2})

	first, err := svc.Generate(context.Background(), "  suggest for   wrinkles \n\n")
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), "suggest for wrinkles")
	require.NoError(t, err)

	assert.Equal(t, "Retinol, Vitamin C", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []string{"suggest for wrinkles"}, gen.prompts)
	assert.NotNil(t, svc.CacheStats())
}

func TestGenerate_CacheDisabled(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{reply: "x"}
	svc := NewService(gen, newMemoryCache(t), Options{EnableCache: false})

	_, err := svc.Generate(context.Background(), "p")
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), "p")
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
	assert.Nil(t, svc.CacheStats())
}

func TestGenerate_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: common.NewTransportError("generate", errors.New("connection reset"))}
	svc := NewService(gen, newMemoryCache(t), Options{EnableCache: true})

	_, err := svc.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, common.IsTransportError(err))

	gen.err = nil
	gen.reply = "ok"
	got, err := svc.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestGenerate_Disabled(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, nil, Options{})
	assert.False(t, svc.Enabled())
	_, err := svc.Generate(context.Background(), "p")
	assert.True(t, errors.Is(err, common.ErrAIServiceDisabled))
}
