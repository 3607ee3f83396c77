package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
	ports "github.com/VibeCoder01/GPU-Recommender/internal/core/ports/output"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// RecommendationOptions tunes the live price overlay.
type RecommendationOptions struct {
	// MaxConcurrency bounds in-flight price lookups. Zero means one per entry.
	MaxConcurrency int
	// ResolveTimeout bounds each lookup. Zero means no per-lookup deadline.
	ResolveTimeout time.Duration
}

// RecommendationService ranks catalog entries against a constraint set.
// It holds no per-request state and is safe for concurrent use.
type RecommendationService struct {
	catalog   *domain.Catalog
	validator *ConstraintValidator
	resolver  ports.PriceResolver
	observer  ports.RecommendationObserver
	opts      RecommendationOptions
}

// NewRecommendationService creates a new recommendation service. resolver
// and observer may be nil.
func NewRecommendationService(
	catalog *domain.Catalog,
	validator *ConstraintValidator,
	resolver ports.PriceResolver,
	observer ports.RecommendationObserver,
	opts RecommendationOptions,
) *RecommendationService {
	return &RecommendationService{
		catalog:   catalog,
		validator: validator,
		resolver:  resolver,
		observer:  observer,
		opts:      opts,
	}
}

// Recommend validates raw, prices and scores every catalog entry, drops
// infeasible ones and returns the rest best-first. An empty slice is a valid
// result. The only error is *domain.ValidationError.
func (s *RecommendationService) Recommend(ctx context.Context, raw domain.RawConstraints, live domain.LivePricing) ([]domain.ScoredGPU, error) {
	start := time.Now()

	constraints, err := s.validator.Validate(raw)
	if err != nil {
		if s.observer != nil {
			s.observer.ObserveValidationFailure()
		}
		return nil, err
	}

	gpus := cloneRecords(s.catalog.GPUs)
	prices := s.overlayLivePrices(ctx, gpus, live)
	ranked := Rank(gpus, prices, constraints)

	if s.observer != nil {
		s.observer.ObserveRecommendation(string(constraints.UseCase), len(ranked), time.Since(start))
	}

	log.WithFields(log.Fields{
		"use_case": constraints.UseCase,
		"budget":   constraints.Budget,
		"brand":    constraints.Brand,
		"matches":  len(ranked),
		"live":     live.Active(),
	}).Debug("recommendation complete")

	return ranked, nil
}

// Rank scores gpus, filters infeasible entries and sorts by score
// descending, then effective price ascending. Equal entries keep catalog
// order. prices[i] holds the live price for gpus[i], or nil.
func Rank(gpus []domain.GPURecord, prices []*domain.LivePrice, c domain.Constraints) []domain.ScoredGPU {
	ranked := make([]domain.ScoredGPU, 0, len(gpus))
	for i := range gpus {
		scored := domain.ScoredGPU{
			GPU:            gpus[i],
			EffectivePrice: gpus[i].PriceFrom,
			PriceSource:    domain.PriceSourceBaseline,
		}
		if i < len(prices) && prices[i] != nil {
			scored.EffectivePrice = prices[i].Price
			scored.PriceSource = domain.PriceSourceLive
			scored.LiveSource = prices[i].Source
		}

		scored.Score, scored.Explanation = Score(&scored.GPU, scored.EffectivePrice, c)
		if !scored.Feasible() {
			continue
		}
		ranked = append(ranked, scored)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].EffectivePrice < ranked[j].EffectivePrice
	})

	return ranked
}

// overlayLivePrices resolves one price per entry and waits for every
// attempt to settle. Failures leave a nil slot, meaning baseline price.
func (s *RecommendationService) overlayLivePrices(ctx context.Context, gpus []domain.GPURecord, live domain.LivePricing) []*domain.LivePrice {
	prices := make([]*domain.LivePrice, len(gpus))
	if s.resolver == nil || !live.Active() {
		s.observePrice(ports.PriceOutcomeDisabled)
		return prices
	}

	// Plain Group: one failed lookup must not cancel its siblings.
	var g errgroup.Group
	if s.opts.MaxConcurrency > 0 {
		g.SetLimit(s.opts.MaxConcurrency)
	}

	for i := range gpus {
		urls := gpus[i].RetailerURLs()
		if len(urls) == 0 {
			s.observePrice(ports.PriceOutcomeMissing)
			continue
		}
		i := i
		g.Go(func() error {
			prices[i] = s.resolveOne(ctx, gpus[i].Model, urls, live)
			return nil
		})
	}
	_ = g.Wait()

	return prices
}

func (s *RecommendationService) resolveOne(ctx context.Context, model string, urls []string, live domain.LivePricing) *domain.LivePrice {
	if s.opts.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ResolveTimeout)
		defer cancel()
	}

	lp, err := s.resolver.Resolve(ctx, urls, live)
	switch {
	case err != nil:
		log.WithError(err).WithField("model", model).Debug("live price lookup failed")
		s.observePrice(ports.PriceOutcomeFailed)
		return nil
	case lp == nil:
		s.observePrice(ports.PriceOutcomeMissing)
		return nil
	case math.IsNaN(lp.Price) || math.IsInf(lp.Price, 0) || lp.Price <= 0:
		log.WithField("model", model).WithError(domain.ErrInvalidLivePrice).Debug("discarding live price")
		s.observePrice(ports.PriceOutcomeInvalid)
		return nil
	}

	s.observePrice(ports.PriceOutcomeLive)
	return &domain.LivePrice{Price: lp.Price, Source: lp.Source}
}

func (s *RecommendationService) observePrice(outcome string) {
	if s.observer != nil {
		s.observer.ObservePriceResolution(outcome)
	}
}

func cloneRecords(src []domain.GPURecord) []domain.GPURecord {
	out := make([]domain.GPURecord, len(src))
	for i := range src {
		out[i] = src[i].Clone()
	}
	return out
}
