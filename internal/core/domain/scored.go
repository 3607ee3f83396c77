package domain

// InfeasibleScore marks an entry that failed the feasibility gate.
const InfeasibleScore = -1

// PriceSource tells the caller where EffectivePrice came from.
type PriceSource string

const (
	PriceSourceLive     PriceSource = "live"
	PriceSourceBaseline PriceSource = "baseline"
)

// LivePrice is a resolved retail price.
type LivePrice struct {
	Price  float64 `json:"price"`
	Source string  `json:"source"`
}

// LivePricing is the per-call live price configuration. It is owned by the
// caller; the engine keeps no preference state of its own.
type LivePricing struct {
	Enabled bool   `json:"enabled"`
	Base    string `json:"base,omitempty"`
}

// Active reports whether a resolver should be consulted at all.
func (l LivePricing) Active() bool {
	return l.Enabled && l.Base != ""
}

// ScoredGPU is a catalog record with the fields derived by one
// recommendation call. GPU is a private copy of the catalog record.
type ScoredGPU struct {
	GPU            GPURecord
	EffectivePrice float64
	PriceSource    PriceSource
	LiveSource     string
	Score          int
	Explanation    string
}

// Feasible reports whether the entry passed the feasibility gate.
func (s *ScoredGPU) Feasible() bool {
	return s.Score >= 0
}
