package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
)

// Scoring weights. Caps keep any single hardware dimension from dominating.
const (
	vramDivisor       = 2.0
	vramCap           = 15.0
	busDivisor        = 32.0
	busCap            = 12.0
	tierMatchBonus    = 10.0
	tierMissPenalty   = -5.0
	gamingPowerBase   = 6.0
	gamingPowerScale  = 75.0
	creatorVRAMBonus  = 10.0
	creatorBusBonus   = 4.0
	aiNVIDIABonus     = 12.0
	aiOtherPenalty    = -6.0
	aiVRAM24Bonus     = 8.0
	aiVRAM16Bonus     = 4.0
	priceValueBase    = 12.0
	priceValueDivisor = 150.0
	wideBusBits       = 256
)

// CapabilityTier buckets a card by VRAM and bus width. 12GB and 16GB cards
// share base tier 2; only a 256-bit or wider bus lifts them to tier 3.
func CapabilityTier(g *domain.GPURecord) int {
	tier := 1
	switch {
	case g.VRAMGB >= 24:
		tier = 3
	case g.VRAMGB >= 16:
		tier = 2
	case g.VRAMGB >= 12:
		tier = 2
	}
	if g.BusBit >= wideBusBits {
		tier++
	}
	return tier
}

// Feasible applies the hard brand, VRAM and budget filters.
func Feasible(g *domain.GPURecord, price float64, c domain.Constraints) bool {
	if c.Brand != domain.BrandAny && g.Brand != c.Brand {
		return false
	}
	if g.VRAMGB < c.VRAM {
		return false
	}
	return price <= c.Budget
}

// Score computes the fit score and explanation for one catalog entry at the
// given effective price. Infeasible entries score domain.InfeasibleScore
// with an empty explanation.
func Score(g *domain.GPURecord, price float64, c domain.Constraints) (int, string) {
	if !Feasible(g, price, c) {
		return domain.InfeasibleScore, ""
	}

	var s float64
	why := []string{fmt.Sprintf("%dGB VRAM", g.VRAMGB)}

	s += math.Min(float64(g.VRAMGB)/vramDivisor, vramCap)
	s += math.Min(float64(g.BusBit)/busDivisor, busCap)
	if g.BusBit >= wideBusBits {
		why = append(why, fmt.Sprintf("%d-bit bus", g.BusBit))
	}

	if c.HasResolution() {
		if CapabilityTier(g) >= c.Resolution.RequiredTier() {
			s += tierMatchBonus
			why = append(why, fmt.Sprintf("suits %dp", c.Resolution))
		} else {
			s += tierMissPenalty
			why = append(why, fmt.Sprintf("stretched at %dp", c.Resolution))
		}
	}

	switch c.UseCase {
	case domain.UseCaseGaming:
		s += math.Max(0, gamingPowerBase-float64(g.TGPOrDefault())/gamingPowerScale)
		why = append(why, fmt.Sprintf("%dW board power", g.TGPOrDefault()))
	case domain.UseCaseCreator:
		if g.VRAMGB >= 16 {
			s += creatorVRAMBonus
			why = append(why, "16GB+ for creative work")
		}
		if g.BusBit >= wideBusBits {
			s += creatorBusBonus
		}
	case domain.UseCaseAI:
		if g.Brand == domain.BrandNVIDIA {
			s += aiNVIDIABonus
			why = append(why, "CUDA support")
		} else {
			s += aiOtherPenalty
		}
		switch {
		case g.VRAMGB >= 24:
			s += aiVRAM24Bonus
			why = append(why, "24GB+ for large models")
		case g.VRAMGB >= 16:
			s += aiVRAM16Bonus
		}
	}

	s += math.Max(0, priceValueBase-price/priceValueDivisor)

	return roundScore(s), strings.Join(why, ", ")
}

// roundScore rounds halves toward +Inf so a total of x.5 always goes up.
func roundScore(s float64) int {
	return int(math.Floor(s + 0.5))
}
