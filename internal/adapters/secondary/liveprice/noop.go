package liveprice

import (
	"context"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
	ports "github.com/VibeCoder01/GPU-Recommender/internal/core/ports/output"
)

type noopResolver struct{}

// NewNoopResolver returns a resolver that never finds a price. It stands in
// when no lookup service is configured.
func NewNoopResolver() ports.PriceResolver {
	return noopResolver{}
}

func (noopResolver) Resolve(_ context.Context, _ []string, _ domain.LivePricing) (*domain.LivePrice, error) {
	return nil, nil
}
