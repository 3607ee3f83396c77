package ports

import (
	"context"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
)

// CatalogSource loads the GPU catalog once at process start.
type CatalogSource interface {
	Load(ctx context.Context) (*domain.Catalog, error)
	// Name identifies the source in logs and health output.
	Name() string
}
