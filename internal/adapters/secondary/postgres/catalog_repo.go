package postgres

import (
	"context"
	"fmt"

	"github.com/VibeCoder01/GPU-Recommender/internal/core/domain"
	ports "github.com/VibeCoder01/GPU-Recommender/internal/core/ports/output"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Expected schema (read-only access):
//
//	gpu(position INT, brand TEXT, model TEXT PRIMARY KEY, vram_gb INT, bus_bit INT,
//	    mem_type TEXT, tgp_w INT NULL, price_from NUMERIC, notes TEXT,
//	    marketed_for TEXT[], checked_at DATE)
//	gpu_retailer(model TEXT REFERENCES gpu, position INT, name TEXT, url TEXT)
//	gpu_preset(position INT, name TEXT, use_case TEXT, resolution TEXT,
//	    budget TEXT, vram TEXT, brand TEXT)
type catalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a catalog source backed by PostgreSQL.
func NewCatalogRepository(pool *pgxpool.Pool) ports.CatalogSource {
	return &catalogRepo{pool: pool}
}

func (r *catalogRepo) Name() string {
	return "postgres"
}

func (r *catalogRepo) Load(ctx context.Context) (*domain.Catalog, error) {
	gpus, err := r.listGPUs(ctx)
	if err != nil {
		return nil, err
	}

	retailers, err := r.listRetailers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range gpus {
		gpus[i].Retailers = retailers[gpus[i].Model]
	}

	presets, err := r.listPresets(ctx)
	if err != nil {
		return nil, err
	}

	var lastChecked string
	err = r.pool.QueryRow(ctx, `SELECT COALESCE(to_char(MAX(checked_at), 'DD Mon YYYY'), '') FROM gpu`).Scan(&lastChecked)
	if err != nil {
		return nil, fmt.Errorf("query catalog last_checked: %w", err)
	}

	catalog := &domain.Catalog{
		LastChecked: lastChecked,
		GPUs:        gpus,
		Presets:     presets,
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	catalog.DeriveSources()

	return catalog, nil
}

func (r *catalogRepo) listGPUs(ctx context.Context) ([]domain.GPURecord, error) {
	query := `
		SELECT brand, model, vram_gb, bus_bit, COALESCE(mem_type, ''), tgp_w, price_from::float8,
		       COALESCE(notes, ''), COALESCE(marketed_for, '{}')
		FROM gpu
		ORDER BY position, model
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query gpu: %w", err)
	}
	defer rows.Close()

	var gpus []domain.GPURecord
	for rows.Next() {
		var (
			g     domain.GPURecord
			brand string
		)
		if err := rows.Scan(&brand, &g.Model, &g.VRAMGB, &g.BusBit, &g.MemType, &g.TGPW, &g.PriceFrom, &g.Notes, &g.MarketedFor); err != nil {
			return nil, fmt.Errorf("scan gpu: %w", err)
		}
		g.Brand = domain.Brand(brand)
		gpus = append(gpus, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gpu: %w", err)
	}
	return gpus, nil
}

func (r *catalogRepo) listRetailers(ctx context.Context) (map[string][]domain.Retailer, error) {
	query := `
		SELECT model, name, url
		FROM gpu_retailer
		ORDER BY model, position
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query gpu_retailer: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Retailer)
	var model string
	var ret domain.Retailer
	_, err = pgx.ForEachRow(rows, []any{&model, &ret.Name, &ret.URL}, func() error {
		out[model] = append(out[model], ret)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan gpu_retailer: %w", err)
	}
	return out, nil
}

func (r *catalogRepo) listPresets(ctx context.Context) ([]domain.Preset, error) {
	query := `
		SELECT name, COALESCE(use_case, ''), COALESCE(resolution, ''), COALESCE(budget, ''),
		       COALESCE(vram, ''), COALESCE(brand, '')
		FROM gpu_preset
		ORDER BY position, name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query gpu_preset: %w", err)
	}

	presets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Preset, error) {
		var p domain.Preset
		err := row.Scan(&p.Name, &p.Constraints.UseCase, &p.Constraints.Resolution,
			&p.Constraints.Budget, &p.Constraints.VRAM, &p.Constraints.Brand)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan gpu_preset: %w", err)
	}
	return presets, nil
}
