package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/cache"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/provider"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Options tune the service
type Options struct {
	EnableCache   bool
	MaxConcurrent int
}

// Service fronts a Generator with a response cache and a concurrency gate.
// It satisfies provider.Generator itself.
type Service struct {
	generator provider.Generator
	cache     cache.Cache
	opts      Options
	sem       *semaphore.Weighted
}

// NewService wraps generator; c may be nil
func NewService(generator provider.Generator, c cache.Cache, opts Options) *Service {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	return &Service{
		generator: generator,
		cache:     c,
		opts:      opts,
		sem:       semaphore.NewWeighted(int64(opts.MaxConcurrent)),
	}
}

// GetModel returns the wrapped generator's model
func (s *Service) GetModel() string {
	if s.generator == nil {
		return ""
	}
	return s.generator.GetModel()
}

// Enabled reports whether a generator is configured
func (s *Service) Enabled() bool {
	return s.generator != nil
}

// Generate answers from cache when possible, otherwise calls the generator
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	if s.generator == nil {
		return "", common.ErrAIServiceDisabled
	}

	prompt = normalizePrompt(prompt)
	model := s.generator.GetModel()

	if s.cacheEnabled() {
		val, err := s.cache.Get(ctx, model, prompt)
		if err == nil && val != "" {
			return val, nil
		}
		if err != nil && !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("cache lookup failed", zap.Error(err))
		}
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", common.NewTransportError("generate", err)
	}
	start := time.Now()
	content, err := s.generator.Generate(ctx, prompt)
	s.sem.Release(1)
	if err != nil {
		return "", err
	}
	common.LogDebug("generation finished", zap.Duration("duration", time.Since(start)))

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, model, prompt, content); err != nil {
			common.LogWarn("cache store failed", zap.Error(err))
		}
	}

	return content, nil
}

// CacheStats returns cache counters, nil when caching is off
func (s *Service) CacheStats() map[string]interface{} {
	if !s.cacheEnabled() {
		return nil
	}
	return s.cache.Stats()
}

func (s *Service) cacheEnabled() bool {
	return s.opts.EnableCache && s.cache != nil
}

// normalizePrompt trims each line and drops blank ones so equal prompts share a cache key
func normalizePrompt(prompt string) string {
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
