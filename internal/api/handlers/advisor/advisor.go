package advisor

import (
	"net/http"
	"strings"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/response"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/advisor"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/catalog"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SnapshotSource yields the current catalog view
type SnapshotSource interface {
	Snapshot() catalog.Snapshot
}

// RecommendRequest selected concerns from the picker
type RecommendRequest struct {
	SelectedConcerns []string `json:"selected_concerns"`
}

// FreeTextRequest a typed concern, optionally tracked under a session
type FreeTextRequest struct {
	ConcernText      string   `json:"concern_text"`
	SelectedConcerns []string `json:"selected_concerns"`
	SessionID        string   `json:"session_id"`
}

// Handler serves the customer-facing recommendation routes
type Handler struct {
	advisor *advisor.Advisor
	catalog SnapshotSource
	tracker *advisor.Tracker
}

// NewHandler creates the recommendation handler
func NewHandler(adv *advisor.Advisor, snapshots SnapshotSource, tracker *advisor.Tracker) *Handler {
	return &Handler{
		advisor: adv,
		catalog: snapshots,
		tracker: tracker,
	}
}

// ListConcerns returns every curated concern
func (h *Handler) ListConcerns(c *gin.Context) {
	concerns := h.catalog.Snapshot().Concerns
	if concerns == nil {
		concerns = []common.Concern{}
	}
	c.JSON(http.StatusOK, gin.H{"concerns": concerns})
}

// Recommend resolves the selected concerns against the curated mappings
func (h *Handler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, common.NewValidationError("invalid request body: "+err.Error()))
		return
	}

	rec := advisor.ResolveFromSelectedConcerns(req.SelectedConcerns, h.catalog.Snapshot())
	c.JSON(http.StatusOK, rec)
}

// RecommendFromText resolves a typed concern through the generation service.
// The body is always an Outcome except for invalid input.
func (h *Handler) RecommendFromText(c *gin.Context) {
	var req FreeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, common.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	session := strings.TrimSpace(req.SessionID)

	h.tracker.Begin(session)
	outcome, err := h.advisor.ResolveFromFreeText(c.Request.Context(), req.ConcernText, req.SelectedConcerns, h.catalog.Snapshot())
	outcome = h.tracker.Set(session, outcome)

	if err != nil {
		if common.IsValidationError(err) {
			response.Error(c, err)
			return
		}
		common.LogWarn("free text recommendation failed",
			zap.String("request_id", requestid.Get(c)),
			zap.String("session", session),
			zap.Error(err),
		)
		status, _ := common.StatusFor(err)
		_ = c.Error(err)
		c.JSON(status, outcome)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetOutcome returns the latest tracked outcome of a session
func (h *Handler) GetOutcome(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Get(c.Param("session")))
}
