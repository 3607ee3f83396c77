package testutil

import "github.com/VibeCoder01/GPU-Recommender/internal/core/domain"

func intPtr(v int) *int { return &v }

// FixtureGPU builds a catalog record with one retailer.
func FixtureGPU(brand domain.Brand, model string, vram, bus, tgp int, price float64) domain.GPURecord {
	g := domain.GPURecord{
		Brand:     brand,
		Model:     model,
		VRAMGB:    vram,
		BusBit:    bus,
		MemType:   "GDDR6",
		PriceFrom: price,
		Retailers: []domain.Retailer{
			{Name: "Shop", URL: "https://shop.example/" + model},
		},
		Notes:       "fixture",
		MarketedFor: []string{"testing"},
	}
	if tgp > 0 {
		g.TGPW = intPtr(tgp)
	}
	return g
}

// FixtureCatalog is a small catalog covering both brands and every tier.
func FixtureCatalog() *domain.Catalog {
	return &domain.Catalog{
		LastChecked: "01 Jan 2025",
		GPUs: []domain.GPURecord{
			FixtureGPU(domain.BrandNVIDIA, "Budget 8G", 8, 128, 115, 259.99),
			FixtureGPU(domain.BrandNVIDIA, "Mid 12G", 12, 192, 200, 599.99),
			FixtureGPU(domain.BrandNVIDIA, "High 16G", 16, 256, 285, 779.99),
			FixtureGPU(domain.BrandNVIDIA, "Halo 24G", 24, 384, 450, 1949.99),
			FixtureGPU(domain.BrandAMD, "Value 16G", 16, 128, 190, 299.99),
			FixtureGPU(domain.BrandAMD, "Flagship 24G", 24, 384, 355, 799.99),
		},
		Presets: []domain.Preset{
			{Name: "4K ultra", Constraints: domain.RawConstraints{UseCase: "gaming", Resolution: "2160", Budget: "1100"}},
		},
		Sources: []domain.Source{{Title: "Shop", URL: "https://shop.example/"}},
	}
}
