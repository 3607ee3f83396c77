package handlers

import (
	"net/http"

	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/primary/http/dto"
	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/primary/http/middleware"
	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Recommend ranks the catalog against a JSON constraint body.
func (h *Handler) Recommend(c *gin.Context) {
	var req dto.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.recommend(c, &req)
}

// RecommendQuery ranks the catalog against query-string constraints.
func (h *Handler) RecommendQuery(c *gin.Context) {
	var req dto.RecommendationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.recommend(c, &req)
}

func (h *Handler) recommend(c *gin.Context, req *dto.RecommendationRequest) {
	raw, err := h.catalogSvc.ApplyPreset(req.Preset, req.ToRawConstraints())
	if err != nil {
		mapDomainError(c, err)
		return
	}

	live := domain.LivePricing{
		Enabled: h.live.Enabled && req.LivePrices,
		Base:    h.live.Base,
	}

	ranked, err := h.recommendSvc.Recommend(c.Request.Context(), raw, live)
	if err != nil {
		log.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Info("recommendation rejected")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRecommendationResponse(
		middleware.GetRequestID(c),
		ranked,
		live.Active(),
		h.catalogSvc.LastChecked(),
	))
}
