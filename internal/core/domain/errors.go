package domain

import (
	"errors"
	"strings"
)

// ============================================================================
// Catalog Errors
// ============================================================================

var (
	ErrGPUNotFound      = errors.New("gpu not found in catalog")
	ErrPresetNotFound   = errors.New("preset not found")
	ErrCatalogEmpty     = errors.New("catalog has no gpu records")
	ErrDuplicateModel   = errors.New("duplicate gpu model in catalog")
	ErrInvalidGPURecord = errors.New("invalid gpu record")
)

// ============================================================================
// Live Pricing Errors
// ============================================================================

// Resolution failures never reach the caller; the engine falls back to the
// baseline price and only reports it through PriceSource.
var (
	ErrLivePricingDisabled = errors.New("live pricing disabled")
	ErrPriceUnavailable    = errors.New("live price unavailable")
	ErrInvalidLivePrice    = errors.New("live price must be finite and positive")
)

// ============================================================================
// Validation Errors
// ============================================================================

// ValidationError rejects a whole constraint set. It carries one message per
// violated rule.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "invalid input"
	}
	return "invalid input: " + strings.Join(e.Messages, " ")
}

// Add records a message for a violated rule.
func (e *ValidationError) Add(msg string) {
	e.Messages = append(e.Messages, msg)
}

// OrNil returns nil when no rule was violated.
func (e *ValidationError) OrNil() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}
