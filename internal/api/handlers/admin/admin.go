package admin

import (
	"net/http"

	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/api/response"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/advisor"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/catalog"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/core/importer"
	"github.com/iamnaturalstore/product-recommender-app-sub000/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BatchDeleteRequest ids to delete
type BatchDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// SuggestRequest concern to ask suggestions for
type SuggestRequest struct {
	Concern string `json:"concern"`
}

// AddToMappingRequest ingredient name to append to a mapping
type AddToMappingRequest struct {
	Name string `json:"name"`
}

// ImportRequest store to import products from
type ImportRequest struct {
	StoreDomain string `json:"store_domain"`
	AccessToken string `json:"access_token"`
}

// Handler serves the admin routes
type Handler struct {
	collections map[string]collection
	advisor     *advisor.Advisor
	importer    *importer.Service
}

// NewHandler creates the admin handler
func NewHandler(cat *catalog.Catalog, adv *advisor.Advisor, imp *importer.Service) *Handler {
	return &Handler{
		collections: map[string]collection{
			catalog.CollectionConcerns:    newCollection(cat.Concerns),
			catalog.CollectionIngredients: newCollection(cat.Ingredients),
			catalog.CollectionProducts:    newCollection(cat.Products),
			catalog.CollectionMappings:    newCollection(cat.Mappings),
		},
		advisor:  adv,
		importer: imp,
	}
}

// Register mounts the admin routes on group. guard runs in front of the routes
// that add records (create, promote, import) and is typically the duplicate
// submission filter.
func (h *Handler) Register(group *gin.RouterGroup, guard ...gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(guard)+1)
		chain = append(chain, guard...)
		return append(chain, handler)
	}

	for _, name := range catalog.Collections() {
		col := h.collections[name]
		g := group.Group("/" + name)
		g.GET("", h.list(name, col))
		g.POST("", guarded(h.create(name, col))...)
		g.PUT("/:id", h.update(name, col))
		g.DELETE("/:id", h.remove(name, col))
		g.POST("/batch-delete", h.batchDelete(name, col))
	}

	group.POST("/suggestions", h.Suggest)
	group.POST("/suggestions/promote", guarded(h.Promote)...)
	group.POST("/mappings/:id/ingredients", h.AddToMapping)
	group.POST("/products/import", guarded(h.Import)...)
}

func (h *Handler) list(name string, col collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := col.list(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{name: items})
	}
}

func (h *Handler) create(name string, col collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := col.create(c)
		if err != nil {
			response.Error(c, err)
			return
		}
		common.LogInfo("record created", zap.String("collection", name), zap.String("id", id))
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func (h *Handler) update(name string, col collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := col.update(c, id); err != nil {
			response.Error(c, err)
			return
		}
		common.LogInfo("record updated", zap.String("collection", name), zap.String("id", id))
		c.JSON(http.StatusOK, gin.H{"id": id})
	}
}

func (h *Handler) remove(name string, col collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := col.remove(c.Request.Context(), id); err != nil {
			response.Error(c, err)
			return
		}
		common.LogInfo("record deleted", zap.String("collection", name), zap.String("id", id))
		c.Status(http.StatusNoContent)
	}
}

func (h *Handler) batchDelete(name string, col collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BatchDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, common.NewValidationError("invalid request body: "+err.Error()))
			return
		}
		results := col.batchDelete(c.Request.Context(), req.IDs)

		failed := 0
		for _, r := range results {
			if r.Error != "" {
				failed++
			}
		}
		common.LogInfo("batch delete finished",
			zap.String("collection", name),
			zap.Int("requested", len(req.IDs)),
			zap.Int("failed", failed),
		)
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

// Suggest asks the generation service for ingredients addressing a concern; nothing is persisted
func (h *Handler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, common.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	suggestions, err := h.advisor.SuggestIngredients(c.Request.Context(), req.Concern)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// Promote stores a suggestion as an ingredient unless the name already exists
func (h *Handler) Promote(c *gin.Context) {
	var req common.SuggestedIngredient
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, common.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	id, created, err := h.advisor.PromoteSuggestion(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": id, "created": created})
}

// AddToMapping appends a suggestion name to a mapping's ingredient list
func (h *Handler) AddToMapping(c *gin.Context) {
	var req AddToMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, common.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	mapping, changed, err := h.advisor.AddSuggestionToMapping(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mapping": mapping, "changed": changed})
}

// Import pulls products from an external store into the product collection
func (h *Handler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, common.NewValidationError("invalid request body: "+err.Error()))
		return
	}
	result, err := h.importer.Import(c.Request.Context(), req.StoreDomain, req.AccessToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
