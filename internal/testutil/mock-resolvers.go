package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

// MockPriceResolver is a mock of PriceResolver.
type MockPriceResolver struct {
	mock.Mock
}

func (m *MockPriceResolver) Resolve(ctx context.Context, retailerURLs []string, cfg domain.LivePricing) (*domain.LivePrice, error) {
	args := m.Called(ctx, retailerURLs, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LivePrice), args.Error(1)
}

// MockCatalogSource is a mock of CatalogSource.
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) Load(ctx context.Context) (*domain.Catalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Catalog), args.Error(1)
}

func (m *MockCatalogSource) Name() string {
	args := m.Called()
	return args.String(0)
}

// RecordingObserver is a RecommendationObserver that keeps what it saw.
type RecordingObserver struct {
	mu                 sync.Mutex
	Recommendations    int
	LastMatches        int
	ValidationFailures int
	PriceOutcomes      map[string]int
}

func (o *RecordingObserver) ObserveRecommendation(_ string, matches int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Recommendations++
	o.LastMatches = matches
}

func (o *RecordingObserver) ObserveValidationFailure() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ValidationFailures++
}

func (o *RecordingObserver) ObservePriceResolution(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.PriceOutcomes == nil {
		o.PriceOutcomes = make(map[string]int)
	}
	o.PriceOutcomes[outcome]++
}

// PriceOutcome returns the count recorded for outcome.
func (o *RecordingObserver) PriceOutcome(outcome string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.PriceOutcomes[outcome]
}
