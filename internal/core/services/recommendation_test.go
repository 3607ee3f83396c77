package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/secondary/yamlcatalog"
	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
	ports "github.com/VibeCoder01/GPU-Recommender/internal/core/ports/output"
	"github.com/VibeCoder01/GPU-Recommender/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var liveOn = domain.LivePricing{Enabled: true, Base: "http://prices.local"}

func loadShippedCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	catalog, err := yamlcatalog.NewEmbeddedSource().Load(context.Background())
	require.NoError(t, err)
	return catalog
}

func newTestService(catalog *domain.Catalog, resolver ports.PriceResolver, observer ports.RecommendationObserver) *RecommendationService {
	return NewRecommendationService(catalog, NewConstraintValidator(0), resolver, observer, RecommendationOptions{
		MaxConcurrency: 4,
		ResolveTimeout: time.Second,
	})
}

func models(ranked []domain.ScoredGPU) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.GPU.Model)
	}
	return out
}

func indexOf(ranked []domain.ScoredGPU, model string) int {
	for i, r := range ranked {
		if r.GPU.Model == model {
			return i
		}
	}
	return -1
}

// ============================================================================
// Service Creation Tests
// ============================================================================

func TestNewRecommendationService(t *testing.T) {
	catalog := testutil.FixtureCatalog()
	resolver := new(testutil.MockPriceResolver)
	svc := newTestService(catalog, resolver, nil)

	assert.NotNil(t, svc)
	assert.Equal(t, catalog, svc.catalog)
	assert.Equal(t, resolver, svc.resolver)
}

// ============================================================================
// Validation Tests
// ============================================================================

func TestRecommend_ValidationErrorAbortsBeforeScoring(t *testing.T) {
	resolver := new(testutil.MockPriceResolver)
	observer := &testutil.RecordingObserver{}
	svc := newTestService(testutil.FixtureCatalog(), resolver, observer)

	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "gaming", Budget: "-1"}, liveOn)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, ranked)
	assert.Equal(t, 1, observer.ValidationFailures)
	assert.Equal(t, 0, observer.Recommendations)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

// ============================================================================
// Catalog Properties
// ============================================================================

func TestRecommend_EveryEntrySatisfiesConstraints(t *testing.T) {
	svc := newTestService(loadShippedCatalog(t), nil, nil)

	inputs := []domain.RawConstraints{
		{UseCase: "gaming", Resolution: "1080", Budget: "350"},
		{UseCase: "gaming", Resolution: "1440", Budget: "650", Brand: "AMD"},
		{UseCase: "creator", Budget: "800", VRAM: "16"},
		{UseCase: "ai", Budget: "1200", VRAM: "16", Brand: "NVIDIA"},
		{UseCase: "ai", Resolution: "2160", Budget: "5000", VRAM: "24"},
	}

	for _, raw := range inputs {
		ranked, err := svc.Recommend(context.Background(), raw, domain.LivePricing{})
		require.NoError(t, err)

		c, err := NewConstraintValidator(0).Validate(raw)
		require.NoError(t, err)

		for i, r := range ranked {
			assert.LessOrEqual(t, r.EffectivePrice, c.Budget, r.GPU.Model)
			assert.GreaterOrEqual(t, r.GPU.VRAMGB, c.VRAM, r.GPU.Model)
			if c.Brand != domain.BrandAny {
				assert.Equal(t, c.Brand, r.GPU.Brand, r.GPU.Model)
			}
			assert.GreaterOrEqual(t, r.Score, 0)
			assert.NotEmpty(t, r.Explanation)

			if i > 0 {
				prev := ranked[i-1]
				assert.GreaterOrEqual(t, prev.Score, r.Score)
				if prev.Score == r.Score {
					assert.LessOrEqual(t, prev.EffectivePrice, r.EffectivePrice)
				}
			}
		}
	}
}

func TestRecommend_BudgetBelowCheapestIsEmpty(t *testing.T) {
	svc := newTestService(loadShippedCatalog(t), nil, nil)

	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{
		UseCase: "gaming", Budget: "100", VRAM: "0", Brand: "any",
	}, domain.LivePricing{})

	require.NoError(t, err)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRecommend_AIVRAMBonusRanks4090Above4070TiSuper(t *testing.T) {
	svc := newTestService(loadShippedCatalog(t), nil, nil)

	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{
		UseCase: "ai", Brand: "NVIDIA", VRAM: "16", Budget: "2000",
	}, domain.LivePricing{})
	require.NoError(t, err)

	top := indexOf(ranked, "GeForce RTX 4090")
	next := indexOf(ranked, "GeForce RTX 4070 Ti SUPER")
	require.NotEqual(t, -1, top)
	require.NotEqual(t, -1, next)
	assert.Less(t, top, next)
	assert.Equal(t, 44, ranked[top].Score)
	assert.Equal(t, 39, ranked[next].Score)

	assert.Equal(t, []string{
		"GeForce RTX 4090",
		"GeForce RTX 4070 Ti SUPER",
		"GeForce RTX 4060 Ti 16GB",
		"GeForce RTX 4080 SUPER",
	}, models(ranked))
}

func TestRecommend_4KGamingTierBonusAndPenalty(t *testing.T) {
	svc := newTestService(loadShippedCatalog(t), nil, nil)

	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{
		UseCase: "gaming", Resolution: "2160", Budget: "2000", VRAM: "0", Brand: "any",
	}, domain.LivePricing{})
	require.NoError(t, err)
	require.Len(t, ranked, 11)

	lowestTier3 := math.MaxInt
	highestBelow := math.MinInt
	for _, r := range ranked {
		if CapabilityTier(&r.GPU) >= 3 {
			assert.Contains(t, r.Explanation, "suits 2160p", r.GPU.Model)
			lowestTier3 = min(lowestTier3, r.Score)
		} else {
			assert.Contains(t, r.Explanation, "stretched at 2160p", r.GPU.Model)
			highestBelow = max(highestBelow, r.Score)
		}
	}
	assert.Greater(t, lowestTier3, highestBelow)
	assert.Equal(t, "Radeon RX 7900 XTX", ranked[0].GPU.Model)
}

func TestRecommend_TiesBreakOnPriceThenCatalogOrder(t *testing.T) {
	catalog := &domain.Catalog{GPUs: []domain.GPURecord{
		testutil.FixtureGPU(domain.BrandNVIDIA, "pricier", 12, 192, 200, 600),
		testutil.FixtureGPU(domain.BrandNVIDIA, "twin-a", 12, 192, 200, 540),
		testutil.FixtureGPU(domain.BrandNVIDIA, "cheaper", 12, 192, 200, 530),
		testutil.FixtureGPU(domain.BrandNVIDIA, "twin-b", 12, 192, 200, 540),
	}}
	svc := newTestService(catalog, nil, nil)

	// All four round to the same score; only price separates them.
	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{
		UseCase: "creator", Budget: "1000",
	}, domain.LivePricing{})
	require.NoError(t, err)

	for _, r := range ranked {
		assert.Equal(t, ranked[0].Score, r.Score)
	}
	assert.Equal(t, []string{"cheaper", "twin-a", "twin-b", "pricier"}, models(ranked))
}

func TestRecommend_Idempotent(t *testing.T) {
	svc := newTestService(loadShippedCatalog(t), nil, nil)
	raw := domain.RawConstraints{UseCase: "gaming", Resolution: "1440", Budget: "1000"}

	first, err := svc.Recommend(context.Background(), raw, domain.LivePricing{})
	require.NoError(t, err)
	second, err := svc.Recommend(context.Background(), raw, domain.LivePricing{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecommend_DoesNotMutateCatalog(t *testing.T) {
	catalog := loadShippedCatalog(t)
	before := cloneRecords(catalog.GPUs)

	resolver := new(testutil.MockPriceResolver)
	resolver.On("Resolve", mock.Anything, mock.Anything, liveOn).Return(&domain.LivePrice{Price: 1, Source: "x"}, nil)
	svc := newTestService(catalog, resolver, nil)

	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "ai", Budget: "5000"}, liveOn)
	require.NoError(t, err)
	require.NotEmpty(t, ranked)

	ranked[0].GPU.Retailers[0].Name = "mutated"
	ranked[0].GPU.MarketedFor[0] = "mutated"

	assert.Equal(t, before, catalog.GPUs)
}

// ============================================================================
// Live Price Overlay Tests
// ============================================================================

func TestRecommend_LivePricingDisabledIsBaseline(t *testing.T) {
	resolver := new(testutil.MockPriceResolver)
	observer := &testutil.RecordingObserver{}
	svc := newTestService(loadShippedCatalog(t), resolver, observer)

	for _, live := range []domain.LivePricing{
		{},
		{Enabled: false, Base: "http://prices.local"},
		{Enabled: true, Base: ""},
	} {
		ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "gaming", Budget: "2000"}, live)
		require.NoError(t, err)
		require.NotEmpty(t, ranked)
		for _, r := range ranked {
			assert.Equal(t, domain.PriceSourceBaseline, r.PriceSource)
			assert.Equal(t, r.GPU.PriceFrom, r.EffectivePrice)
			assert.Empty(t, r.LiveSource)
		}
	}

	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 3, observer.PriceOutcome(ports.PriceOutcomeDisabled))
}

func TestRecommend_FailingResolverMatchesDisabled(t *testing.T) {
	catalog := loadShippedCatalog(t)
	raw := domain.RawConstraints{UseCase: "gaming", Resolution: "1440", Budget: "900"}

	resolver := new(testutil.MockPriceResolver)
	resolver.On("Resolve", mock.Anything, mock.Anything, liveOn).Return(nil, errors.New("connection refused"))
	observer := &testutil.RecordingObserver{}

	disabled, err := newTestService(catalog, nil, nil).Recommend(context.Background(), raw, domain.LivePricing{})
	require.NoError(t, err)

	failing, err := newTestService(catalog, resolver, observer).Recommend(context.Background(), raw, liveOn)
	require.NoError(t, err)

	assert.Equal(t, disabled, failing)
	resolver.AssertNumberOfCalls(t, "Resolve", len(catalog.GPUs))
	assert.Equal(t, len(catalog.GPUs), observer.PriceOutcome(ports.PriceOutcomeFailed))
}

func TestRecommend_LivePriceOverridesBaseline(t *testing.T) {
	catalog := testutil.FixtureCatalog()
	halo := catalog.GPUs[3]

	resolver := new(testutil.MockPriceResolver)
	resolver.On("Resolve", mock.Anything, halo.RetailerURLs(), liveOn).
		Return(&domain.LivePrice{Price: 999.5, Source: "https://deal.example/halo"}, nil)
	resolver.On("Resolve", mock.Anything, mock.Anything, liveOn).Return(nil, nil)

	svc := newTestService(catalog, resolver, nil)

	// Baseline 1949.99 would fail a 1000 budget; the live price passes it.
	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "ai", Budget: "1000", VRAM: "24"}, liveOn)
	require.NoError(t, err)

	i := indexOf(ranked, halo.Model)
	require.NotEqual(t, -1, i)
	assert.Equal(t, domain.PriceSourceLive, ranked[i].PriceSource)
	assert.Equal(t, 999.5, ranked[i].EffectivePrice)
	assert.Equal(t, "https://deal.example/halo", ranked[i].LiveSource)

	for _, r := range ranked {
		if r.GPU.Model != halo.Model {
			assert.Equal(t, domain.PriceSourceBaseline, r.PriceSource)
		}
	}
}

func TestRecommend_InvalidLivePricesDiscarded(t *testing.T) {
	tests := []struct {
		name  string
		price float64
	}{
		{name: "zero", price: 0},
		{name: "negative", price: -10},
		{name: "NaN", price: math.NaN()},
		{name: "infinite", price: math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(testutil.MockPriceResolver)
			resolver.On("Resolve", mock.Anything, mock.Anything, liveOn).
				Return(&domain.LivePrice{Price: tt.price, Source: "bogus"}, nil)
			observer := &testutil.RecordingObserver{}
			svc := newTestService(testutil.FixtureCatalog(), resolver, observer)

			ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "gaming", Budget: "5000"}, liveOn)
			require.NoError(t, err)
			require.NotEmpty(t, ranked)
			for _, r := range ranked {
				assert.Equal(t, domain.PriceSourceBaseline, r.PriceSource)
				assert.Equal(t, r.GPU.PriceFrom, r.EffectivePrice)
			}
			assert.Equal(t, 6, observer.PriceOutcome(ports.PriceOutcomeInvalid))
		})
	}
}

func TestRecommend_EntriesWithoutRetailersAreNotResolved(t *testing.T) {
	g := testutil.FixtureGPU(domain.BrandAMD, "no-shops", 16, 256, 263, 429.98)
	g.Retailers = nil
	catalog := &domain.Catalog{GPUs: []domain.GPURecord{g}}

	resolver := new(testutil.MockPriceResolver)
	svc := newTestService(catalog, resolver, nil)

	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "gaming", Budget: "500"}, liveOn)
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, domain.PriceSourceBaseline, ranked[0].PriceSource)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything)
}

// slowResolver blocks until its context ends, then fails.
type slowResolver struct{}

func (slowResolver) Resolve(ctx context.Context, _ []string, _ domain.LivePricing) (*domain.LivePrice, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRecommend_ResolveTimeoutFallsBack(t *testing.T) {
	svc := NewRecommendationService(testutil.FixtureCatalog(), NewConstraintValidator(0), slowResolver{}, nil, RecommendationOptions{
		ResolveTimeout: 20 * time.Millisecond,
	})

	start := time.Now()
	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "gaming", Budget: "5000"}, liveOn)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	for _, r := range ranked {
		assert.Equal(t, domain.PriceSourceBaseline, r.PriceSource)
	}
}

func TestRecommend_ConcurrentCallsAreIndependent(t *testing.T) {
	catalog := loadShippedCatalog(t)
	svc := newTestService(catalog, nil, nil)
	raw := domain.RawConstraints{UseCase: "creator", Budget: "1500"}

	want, err := svc.Recommend(context.Background(), raw, domain.LivePricing{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]domain.ScoredGPU, 16)
	for i := range results {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			results[i], _ = svc.Recommend(context.Background(), raw, domain.LivePricing{})
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestRecommend_ObserverSeesMatchCount(t *testing.T) {
	observer := &testutil.RecordingObserver{}
	svc := newTestService(loadShippedCatalog(t), nil, observer)

	ranked, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "gaming", Budget: "650"}, domain.LivePricing{})
	require.NoError(t, err)

	assert.Equal(t, 1, observer.Recommendations)
	assert.Equal(t, len(ranked), observer.LastMatches)
}

// ============================================================================
// Rank Tests
// ============================================================================

func TestRank_DropsInfeasibleAndNegativeScores(t *testing.T) {
	gpus := []domain.GPURecord{
		// AMD for AI at 4K: 4 + 4 - 5 - 6 + 0 (price 1800) = -3
		testutil.FixtureGPU(domain.BrandAMD, "negative", 8, 128, 150, 1800),
		testutil.FixtureGPU(domain.BrandNVIDIA, "over-budget", 24, 384, 450, 2500),
		testutil.FixtureGPU(domain.BrandNVIDIA, "fits", 16, 256, 285, 779.99),
	}
	c := domain.Constraints{UseCase: domain.UseCaseAI, Resolution: domain.Resolution2160, Budget: 2000, Brand: domain.BrandAny}

	ranked := Rank(gpus, nil, c)

	assert.Equal(t, []string{"fits"}, models(ranked))
}

// ============================================================================
// Fan-out Tests
// ============================================================================

// gatedResolver holds every lookup open until release is closed and records
// how many were in flight at once.
type gatedResolver struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	release  chan struct{}
}

func (r *gatedResolver) Resolve(ctx context.Context, _ []string, _ domain.LivePricing) (*domain.LivePrice, error) {
	r.mu.Lock()
	r.inFlight++
	r.peak = max(r.peak, r.inFlight)
	r.mu.Unlock()

	select {
	case <-r.release:
	case <-ctx.Done():
	}

	r.mu.Lock()
	r.inFlight--
	r.mu.Unlock()
	return nil, nil
}

func (r *gatedResolver) Peak() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

func TestRecommend_LookupConcurrency(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "unbounded runs every lookup at once", limit: 0, expected: 6},
		{name: "limit caps lookups in flight", limit: 2, expected: 2},
		{name: "limit of one serialises lookups", limit: 1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &gatedResolver{release: make(chan struct{})}
			observer := &testutil.RecordingObserver{}
			svc := NewRecommendationService(testutil.FixtureCatalog(), NewConstraintValidator(0), resolver, observer, RecommendationOptions{
				MaxConcurrency: tt.limit,
			})

			done := make(chan error, 1)
			go func() {
				_, err := svc.Recommend(context.Background(), domain.RawConstraints{UseCase: "gaming", Budget: "5000"}, liveOn)
				done <- err
			}()

			require.Eventually(t, func() bool { return resolver.Peak() == tt.expected }, 2*time.Second, 5*time.Millisecond)
			// Give lookups beyond the limit a chance to start before releasing.
			time.Sleep(20 * time.Millisecond)
			close(resolver.release)

			require.NoError(t, <-done)
			assert.Equal(t, tt.expected, resolver.Peak())
			assert.Equal(t, 6, observer.PriceOutcome(ports.PriceOutcomeMissing))
		})
	}
}
