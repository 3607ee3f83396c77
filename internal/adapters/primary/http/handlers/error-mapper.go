package handlers

import (
	"errors"
	"net/http"

	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/primary/http/dto"
	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	var verr *domain.ValidationError

	switch {
	// Validation errors
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{
			Error:  verr.Error(),
			Errors: verr.Messages,
		})

	// Not found errors
	case errors.Is(err, domain.ErrGPUNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Bad request errors
	case errors.Is(err, domain.ErrPresetNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
