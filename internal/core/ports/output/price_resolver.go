package ports

import (
	"context"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
)

// PriceResolver looks up a current retail price for one GPU given its
// retailer URLs. A nil LivePrice with a nil error means no price was found.
// Implementations make a single attempt; callers treat every error as
// "no live price".
type PriceResolver interface {
	Resolve(ctx context.Context, retailerURLs []string, cfg domain.LivePricing) (*domain.LivePrice, error)
}
