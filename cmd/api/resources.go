package main

import (
	"context"
	"fmt"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/cache"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/gemini"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/openrouter"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/provider"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/importer"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/store"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/infrastructure/config"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// resources owns every long-lived client built from config
type resources struct {
	redis     *redis.Client
	store     store.Store
	cache     cache.Cache
	generator provider.Generator
	source    importer.Source
	closers   []func() error
}

func newResources(ctx context.Context, cfg *config.Config) (*resources, error) {
	r := &resources{}

	if cfg.Store.Backend == "redis" || (cfg.Cache.Enabled && cfg.Cache.Backend == "redis") {
		r.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := r.redis.Ping(ctx).Err(); err != nil {
			_ = r.redis.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		r.closers = append(r.closers, r.redis.Close)
	}

	var err error
	if r.store, err = r.openStore(ctx, cfg); err != nil {
		r.Close()
		return nil, err
	}
	r.closers = append(r.closers, r.store.Close)

	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case "redis":
			r.cache = cache.NewRedisCache(r.redis, cfg.Cache.TTL)
		default:
			r.cache = cache.NewManager(cfg.Cache)
		}
		r.closers = append(r.closers, r.cache.Close)
	}

	// a disabled generator stays a nil interface so the service reports it
	if gen := cfg.Generation(); gen.Enabled {
		pc := provider.Config{
			APIKey:      gen.APIKey,
			Model:       gen.Model,
			BaseURL:     gen.BaseURL,
			MaxTokens:   gen.MaxTokens,
			Temperature: gen.Temperature,
			Timeout:     gen.Timeout,
		}
		switch cfg.AI.Provider {
		case "openrouter":
			client := openrouter.NewClient(pc)
			r.generator = client
			r.closers = append(r.closers, client.Close)
		default:
			client := gemini.NewClient(pc)
			r.generator = client
			r.closers = append(r.closers, client.Close)
		}
	} else {
		common.LogWarn("text generation disabled, free text recommendations will fail",
			zap.String("provider", cfg.AI.Provider))
	}

	switch cfg.Importer.Source {
	case "shopify":
		r.source = importer.NewShopifySource(cfg.Importer.APIVersion, cfg.Importer.Timeout)
	default:
		r.source = importer.NewSimulatedSource()
	}

	return r, nil
}

func (r *resources) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "redis":
		return store.NewRedisStore(ctx, r.redis, "advisor:")
	case "sql":
		db, err := store.OpenSQL(cfg.Store.SQL.Driver, cfg.Store.SQL.DSN)
		if err != nil {
			return nil, err
		}
		s, err := store.NewSQLStore(db)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// Close releases resources in reverse order of creation
func (r *resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			common.LogWarn("failed to close resource", zap.Error(err))
		}
	}
	r.closers = nil
}
