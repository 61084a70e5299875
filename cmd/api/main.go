package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/middleware"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/advisor"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/service"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/catalog"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/importer"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/infrastructure/config"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := common.InitLogger(common.LoggerOptions{
		Level:   cfg.LogLevel,
		Service: cfg.App.Name,
		Dir:     cfg.App.LogDir,
		Mode:    cfg.App.LogMode,
	}); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("configuration loaded",
		zap.String("app_id", cfg.App.ID),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Bool("ai_enabled", cfg.Generation().Enabled),
		zap.String("ai_model", cfg.Generation().Model),
		zap.String("ai_key", config.MaskAPIKey(cfg.Generation().APIKey)),
		zap.String("import_source", cfg.Importer.Source),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	res, err := newResources(ctx, cfg)
	if err != nil {
		common.LogFatal("failed to initialize resources", zap.Error(err))
	}
	defer res.Close()

	cat := catalog.New(res.store, cfg.App.ID)
	live := catalog.NewLive(cat)
	if err := live.Start(ctx); err != nil {
		common.LogFatal("failed to start live catalog", zap.Error(err))
	}
	defer live.Stop()

	ai := service.NewService(res.generator, res.cache, service.Options{
		EnableCache:   cfg.AI.EnableCache,
		MaxConcurrent: cfg.AI.MaxConcurrent,
	})
	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	defer dedup.Close()

	router, err := api.SetupRouter(cfg, api.Dependencies{
		Catalog:  cat,
		Live:     live,
		AI:       ai,
		Advisor:  advisor.New(ai, cat.Ingredients, cat.Mappings),
		Tracker:  advisor.NewTracker(time.Hour),
		Importer: importer.NewService(res.source, cat.Products),
		Dedup:    dedup,
	})
	if err != nil {
		common.LogFatal("failed to setup router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("starting service",
			zap.Int("port", cfg.Server.Port),
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		common.LogError("server failed", zap.Error(err))
	}

	common.LogInfo("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("server forced to shutdown", zap.Error(err))
	}
	common.LogInfo("server exited")
}
