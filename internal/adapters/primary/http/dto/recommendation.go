package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
)

// ============================================================================
// Request DTOs
// ============================================================================

// FlexString accepts a JSON string, number or null. Numbers keep their
// literal text so coercion happens in one place.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// RecommendationRequest is the JSON body of POST /recommendations. The
// same fields are accepted as query parameters on GET.
type RecommendationRequest struct {
	Preset     string     `json:"preset" form:"preset"`
	UseCase    FlexString `json:"use_case" form:"use_case"`
	Resolution FlexString `json:"resolution" form:"resolution"`
	Budget     FlexString `json:"budget" form:"budget"`
	VRAM       FlexString `json:"vram" form:"vram"`
	Brand      FlexString `json:"brand" form:"brand"`
	LivePrices bool       `json:"live_prices" form:"live_prices"`
}

// ToRawConstraints converts the request to engine input.
func (r *RecommendationRequest) ToRawConstraints() domain.RawConstraints {
	return domain.RawConstraints{
		UseCase:    string(r.UseCase),
		Resolution: string(r.Resolution),
		Budget:     string(r.Budget),
		VRAM:       string(r.VRAM),
		Brand:      string(r.Brand),
	}
}

// ============================================================================
// Response DTOs
// ============================================================================

// RetailerResponse is a purchase link.
type RetailerResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GPUResponse is a catalog record in API responses.
type GPUResponse struct {
	Brand       string             `json:"brand"`
	Model       string             `json:"model"`
	VRAMGB      int                `json:"vram_gb"`
	BusBit      int                `json:"bus_bit"`
	MemType     string             `json:"mem_type"`
	TGPW        *int               `json:"tgp_w"`
	PriceFrom   float64            `json:"price_from"`
	Notes       string             `json:"notes"`
	MarketedFor []string           `json:"marketed_for"`
	Retailers   []RetailerResponse `json:"retailers"`
}

// ScoredGPUResponse is one ranked entry.
type ScoredGPUResponse struct {
	Brand          string             `json:"brand"`
	Model          string             `json:"model"`
	VRAMGB         int                `json:"vram_gb"`
	BusBit         int                `json:"bus_bit"`
	TGPW           *int               `json:"tgp_w"`
	MemType        string             `json:"mem_type"`
	EffectivePrice float64            `json:"effective_price"`
	PriceSource    string             `json:"price_source"`
	LiveSource     string             `json:"live_source,omitempty"`
	Score          int                `json:"score"`
	Explanation    string             `json:"explanation"`
	Notes          string             `json:"notes"`
	MarketedFor    []string           `json:"marketed_for"`
	Retailers      []RetailerResponse `json:"retailers"`
}

// RecommendationResponse is the ranked result list.
type RecommendationResponse struct {
	RequestID   string              `json:"request_id"`
	Items       []ScoredGPUResponse `json:"items"`
	Total       int                 `json:"total"`
	LivePricing bool                `json:"live_pricing"`
	LastChecked string              `json:"last_checked,omitempty"`
}

// ListGPUsResponse represents the list response
type ListGPUsResponse struct {
	Items       []GPUResponse `json:"items"`
	Total       int           `json:"total"`
	LastChecked string        `json:"last_checked,omitempty"`
}

// ValidationErrorResponse lists every violated constraint rule.
type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

// ============================================================================
// Converters
// ============================================================================

func toRetailers(in []domain.Retailer) []RetailerResponse {
	out := make([]RetailerResponse, 0, len(in))
	for _, r := range in {
		out = append(out, RetailerResponse{Name: r.Name, URL: r.URL})
	}
	return out
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// ToGPUResponse converts a catalog record.
func ToGPUResponse(g *domain.GPURecord) GPUResponse {
	return GPUResponse{
		Brand:       string(g.Brand),
		Model:       g.Model,
		VRAMGB:      g.VRAMGB,
		BusBit:      g.BusBit,
		MemType:     g.MemType,
		TGPW:        g.TGPW,
		PriceFrom:   g.PriceFrom,
		Notes:       g.Notes,
		MarketedFor: nonNilStrings(g.MarketedFor),
		Retailers:   toRetailers(g.Retailers),
	}
}

// ToScoredGPUResponse converts a ranked entry.
func ToScoredGPUResponse(s *domain.ScoredGPU) ScoredGPUResponse {
	return ScoredGPUResponse{
		Brand:          string(s.GPU.Brand),
		Model:          s.GPU.Model,
		VRAMGB:         s.GPU.VRAMGB,
		BusBit:         s.GPU.BusBit,
		TGPW:           s.GPU.TGPW,
		MemType:        s.GPU.MemType,
		EffectivePrice: s.EffectivePrice,
		PriceSource:    string(s.PriceSource),
		LiveSource:     s.LiveSource,
		Score:          s.Score,
		Explanation:    s.Explanation,
		Notes:          s.GPU.Notes,
		MarketedFor:    nonNilStrings(s.GPU.MarketedFor),
		Retailers:      toRetailers(s.GPU.Retailers),
	}
}

// ToRecommendationResponse converts a ranked list. Items is never null.
func ToRecommendationResponse(requestID string, ranked []domain.ScoredGPU, live bool, lastChecked string) RecommendationResponse {
	items := make([]ScoredGPUResponse, 0, len(ranked))
	for i := range ranked {
		items = append(items, ToScoredGPUResponse(&ranked[i]))
	}
	return RecommendationResponse{
		RequestID:   requestID,
		Items:       items,
		Total:       len(items),
		LivePricing: live,
		LastChecked: lastChecked,
	}
}
