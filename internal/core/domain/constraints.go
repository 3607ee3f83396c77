package domain

// UseCase selects the use-case scoring component.
type UseCase string

const (
	UseCaseGaming  UseCase = "gaming"
	UseCaseCreator UseCase = "creator"
	UseCaseAI      UseCase = "ai"
)

// BrandAny disables the brand filter.
const BrandAny Brand = "any"

// Resolution is the target display height. Zero means no resolution target.
type Resolution int

const (
	ResolutionNone Resolution = 0
	Resolution1080 Resolution = 1080
	Resolution1440 Resolution = 1440
	Resolution2160 Resolution = 2160
)

// RequiredTier maps a resolution to the capability tier needed to drive it.
func (r Resolution) RequiredTier() int {
	switch r {
	case Resolution1080:
		return 1
	case Resolution1440:
		return 2
	case Resolution2160:
		return 3
	}
	return 0
}

// AllowedVRAMFloors is the closed set of accepted minimum-VRAM values.
var AllowedVRAMFloors = []int{0, 8, 12, 16, 24}

// RawConstraints is caller input before coercion. Every field is a string
// because form posts and query strings carry no types.
type RawConstraints struct {
	UseCase    string `json:"use_case" yaml:"use_case,omitempty"`
	Resolution string `json:"resolution" yaml:"resolution,omitempty"`
	Budget     string `json:"budget" yaml:"budget,omitempty"`
	VRAM       string `json:"vram" yaml:"vram,omitempty"`
	Brand      string `json:"brand" yaml:"brand,omitempty"`
}

// Merge returns r with empty fields filled from base.
func (r RawConstraints) Merge(base RawConstraints) RawConstraints {
	if r.UseCase == "" {
		r.UseCase = base.UseCase
	}
	if r.Resolution == "" {
		r.Resolution = base.Resolution
	}
	if r.Budget == "" {
		r.Budget = base.Budget
	}
	if r.VRAM == "" {
		r.VRAM = base.VRAM
	}
	if r.Brand == "" {
		r.Brand = base.Brand
	}
	return r
}

// Constraints is a validated constraint set.
type Constraints struct {
	UseCase    UseCase    `json:"use_case"`
	Resolution Resolution `json:"resolution,omitempty"`
	Budget     float64    `json:"budget"`
	VRAM       int        `json:"vram"`
	Brand      Brand      `json:"brand"`
}

// HasResolution reports whether a resolution target was supplied.
func (c Constraints) HasResolution() bool {
	return c.Resolution != ResolutionNone
}

// Preset is a named shortcut that pre-fills part of a constraint set.
type Preset struct {
	Name        string         `json:"name" yaml:"name"`
	Constraints RawConstraints `json:"constraints" yaml:"constraints"`
}
