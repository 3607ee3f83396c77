package handlers

import (
	"net/http"

	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
)

// ListGPUs lists catalog records, optionally filtered by ?brand=.
func (h *Handler) ListGPUs(c *gin.Context) {
	gpus := h.catalogSvc.List(c.Query("brand"))

	items := make([]dto.GPUResponse, 0, len(gpus))
	for i := range gpus {
		items = append(items, dto.ToGPUResponse(&gpus[i]))
	}

	c.JSON(http.StatusOK, dto.ListGPUsResponse{
		Items:       items,
		Total:       len(items),
		LastChecked: h.catalogSvc.LastChecked(),
	})
}

// GetGPU returns a single catalog record by model name.
func (h *Handler) GetGPU(c *gin.Context) {
	gpu, err := h.catalogSvc.Get(c.Param("model"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGPUResponse(&gpu))
}

// ListPresets returns the named constraint shortcuts.
func (h *Handler) ListPresets(c *gin.Context) {
	presets := h.catalogSvc.Presets()
	c.JSON(http.StatusOK, gin.H{"items": presets, "total": len(presets)})
}

// ListSources returns the catalog's citations.
func (h *Handler) ListSources(c *gin.Context) {
	sources := h.catalogSvc.Sources()
	c.JSON(http.StatusOK, gin.H{
		"items":        sources,
		"total":        len(sources),
		"last_checked": h.catalogSvc.LastChecked(),
	})
}
