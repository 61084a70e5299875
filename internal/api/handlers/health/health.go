package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/response"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency readiness can probe
type Pinger interface {
	Ping(ctx context.Context) error
}

// AIStatus reports the suggestion service state
type AIStatus interface {
	Enabled() bool
	GetModel() string
	CacheStats() map[string]interface{}
}

// HealthResponse health check body
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	AI        *AIState               `json:"ai,omitempty"`
}

// AIState suggestion service section of HealthResponse
type AIState struct {
	Enabled bool                   `json:"enabled"`
	Model   string                 `json:"model,omitempty"`
	Cache   map[string]interface{} `json:"cache,omitempty"`
}

// Handler serves the probe endpoints
type Handler struct {
	version string
	store   Pinger
	ai      AIStatus
}

// NewHandler creates the probe handler; ai may be nil
func NewHandler(version string, store Pinger, ai AIStatus) *Handler {
	return &Handler{version: version, store: store, ai: ai}
}

// HealthCheck reports version, runtime and suggestion service state
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.ai != nil {
		resp.AI = &AIState{
			Enabled: h.ai.Enabled(),
			Model:   h.ai.GetModel(),
			Cache:   h.ai.CacheStats(),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ReadinessCheck succeeds once the document store answers a ping
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			common.LogWarn("readiness check failed", zap.Error(err))
			response.Error(c, common.ErrStoreUnavailable.Wrap(err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck always succeeds while the process serves requests
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
