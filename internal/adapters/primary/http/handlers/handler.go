package handlers

import (
	"github.com/VibeCoder01/GPU-Recommender/internal/core/services"

	"github.com/gin-gonic/gin"
)

// LivePricingDefaults is the server-side half of live price configuration.
// Requests may only opt in; the lookup base URL never comes from a client.
type LivePricingDefaults struct {
	Enabled bool
	Base    string
}

type Handler struct {
	recommendSvc *services.RecommendationService
	catalogSvc   *services.CatalogService
	live         LivePricingDefaults
}

func New(
	recommendSvc *services.RecommendationService,
	catalogSvc *services.CatalogService,
	live LivePricingDefaults,
) *Handler {
	return &Handler{
		recommendSvc: recommendSvc,
		catalogSvc:   catalogSvc,
		live:         live,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Recommendations
	r.POST("/recommendations", h.Recommend)
	r.GET("/recommendations", h.RecommendQuery)

	// Catalog
	r.GET("/gpus", h.ListGPUs)
	r.GET("/gpus/:model", h.GetGPU)
	r.GET("/presets", h.ListPresets)
	r.GET("/sources", h.ListSources)
}
