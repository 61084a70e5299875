package api

import (
	"errors"
	"net/http"
	"time"

	adminHandler "github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/handlers/admin"
	advisorHandler "github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/handlers/advisor"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/handlers/health"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/middleware"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/response"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/advisor"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/ai/service"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/catalog"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/importer"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/infrastructure/config"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errRouteNotFound = common.NewError(common.ErrCodeNotFound, "route not found", http.StatusNotFound, nil)

// Dependencies the router wires into handlers
type Dependencies struct {
	Catalog  *catalog.Catalog
	Live     *catalog.Live
	AI       *service.Service
	Advisor  *advisor.Advisor
	Tracker  *advisor.Tracker
	Importer *importer.Service
	Dedup    *middleware.Deduplicator // optional, guards record-creating admin routes
}

func (d Dependencies) validate() error {
	switch {
	case d.Catalog == nil:
		return errors.New("catalog is required")
	case d.Live == nil:
		return errors.New("live catalog is required")
	case d.Advisor == nil:
		return errors.New("advisor is required")
	case d.Tracker == nil:
		return errors.New("tracker is required")
	case d.Importer == nil:
		return errors.New("importer is required")
	}
	return nil
}

// SetupRouter builds the gin engine with middleware and every route
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	common.LogInfo("setting up router",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, errRouteNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		response.Error(c, common.ErrMethodNotAllowed)
	})
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", middleware.AdminTokenHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !allowsAll(origins),
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(
			middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
			cfg.RateLimit.Window,
		))
	}
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	var aiStatus health.AIStatus
	if deps.AI != nil {
		aiStatus = deps.AI
	}
	probes := health.NewHandler(cfg.App.Version, deps.Catalog.Store(), aiStatus)
	router.GET("/health", probes.HealthCheck)
	router.GET("/ready", probes.ReadinessCheck)
	router.GET("/live", probes.LivenessCheck)

	// dedup covers the record-creating admin routes only
	var guard []gin.HandlerFunc
	if deps.Dedup != nil {
		guard = append(guard, deps.Dedup.Middleware())
	}

	api := router.Group("/api/v1")
	{
		recommend := advisorHandler.NewHandler(deps.Advisor, deps.Live, deps.Tracker)
		api.GET("/concerns", recommend.ListConcerns)
		api.POST("/recommendations", recommend.Recommend)
		api.POST("/recommendations/ai", recommend.RecommendFromText)
		api.GET("/recommendations/ai/:session", recommend.GetOutcome)

		admin := api.Group("/admin", middleware.AdminToken(cfg.Admin.Token))
		adminHandler.NewHandler(deps.Catalog, deps.Advisor, deps.Importer).Register(admin, guard...)
	}

	common.LogInfo("router setup completed",
		zap.Bool("ai_enabled", deps.AI != nil && deps.AI.Enabled()),
		zap.Bool("admin_protected", cfg.Admin.Token != ""),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)
	return router, nil
}

// allowsAll reports a wildcard origin list, which cannot be combined with credentials
func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
