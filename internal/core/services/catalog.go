package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
	ports "github.com/VibeCoder01/GPU-Recommender/internal/core/ports/output"

	log "github.com/sirupsen/logrus"
)

// CatalogService exposes read-only views of the loaded catalog.
type CatalogService struct {
	catalog *domain.Catalog
	source  string
}

// LoadCatalog reads the catalog once from src. The result is shared
// read-only by every service built on it.
func LoadCatalog(ctx context.Context, src ports.CatalogSource) (*domain.Catalog, error) {
	catalog, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}

	log.WithFields(log.Fields{
		"source":       src.Name(),
		"records":      len(catalog.GPUs),
		"last_checked": catalog.LastChecked,
	}).Info("catalog loaded")

	return catalog, nil
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalog *domain.Catalog, source string) *CatalogService {
	return &CatalogService{catalog: catalog, source: source}
}

// List returns copies of every record, optionally restricted to one brand.
// Brand matching ignores case; "any" and "" match everything.
func (s *CatalogService) List(brand string) []domain.GPURecord {
	out := make([]domain.GPURecord, 0, len(s.catalog.GPUs))
	for i := range s.catalog.GPUs {
		g := &s.catalog.GPUs[i]
		if brand != "" && !strings.EqualFold(brand, string(domain.BrandAny)) &&
			!strings.EqualFold(brand, string(g.Brand)) {
			continue
		}
		out = append(out, g.Clone())
	}
	return out
}

// Get returns the record for a model name.
func (s *CatalogService) Get(model string) (domain.GPURecord, error) {
	return s.catalog.Find(model)
}

// Sources returns the catalog's citations.
func (s *CatalogService) Sources() []domain.Source {
	return append([]domain.Source{}, s.catalog.Sources...)
}

// Presets returns the named constraint shortcuts.
func (s *CatalogService) Presets() []domain.Preset {
	return append([]domain.Preset{}, s.catalog.Presets...)
}

// ApplyPreset fills empty fields of raw from the named preset. An empty
// name returns raw unchanged.
func (s *CatalogService) ApplyPreset(name string, raw domain.RawConstraints) (domain.RawConstraints, error) {
	if name == "" {
		return raw, nil
	}
	p, err := s.catalog.Preset(name)
	if err != nil {
		return raw, err
	}
	return raw.Merge(p.Constraints), nil
}

// LastChecked is the date the catalog prices were last verified.
func (s *CatalogService) LastChecked() string {
	return s.catalog.LastChecked
}

// SourceName identifies where the catalog was loaded from.
func (s *CatalogService) SourceName() string {
	return s.source
}

// Size returns the number of records.
func (s *CatalogService) Size() int {
	return len(s.catalog.GPUs)
}
