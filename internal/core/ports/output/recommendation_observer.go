package ports

import "time"

// Price resolution outcomes reported to a RecommendationObserver.
const (
	PriceOutcomeLive     = "live"
	PriceOutcomeMissing  = "missing"
	PriceOutcomeInvalid  = "invalid"
	PriceOutcomeFailed   = "failed"
	PriceOutcomeDisabled = "disabled"
)

// RecommendationObserver receives engine measurements. It is optional.
type RecommendationObserver interface {
	ObserveRecommendation(useCase string, matches int, elapsed time.Duration)
	ObserveValidationFailure()
	ObservePriceResolution(outcome string)
}
