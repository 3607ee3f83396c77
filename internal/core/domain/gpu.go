package domain

import "fmt"

// Brand is the GPU vendor. The set is open: catalogs may carry vendors
// beyond the ones the constraint filter knows about.
type Brand string

const (
	BrandNVIDIA Brand = "NVIDIA"
	BrandAMD    Brand = "AMD"
)

// DefaultTGPWatts is assumed when a record carries no power figure.
const DefaultTGPWatts = 200

// Retailer is a display-only purchase link.
type Retailer struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// GPURecord is one catalog entry. Records are shared between requests
// and must be treated as read-only.
type GPURecord struct {
	Brand       Brand      `json:"brand" yaml:"brand"`
	Model       string     `json:"model" yaml:"model"`
	VRAMGB      int        `json:"vram_gb" yaml:"vram_gb"`
	BusBit      int        `json:"bus_bit" yaml:"bus_bit"`
	MemType     string     `json:"mem_type" yaml:"mem_type"`
	TGPW        *int       `json:"tgp_w,omitempty" yaml:"tgp_w,omitempty"`
	PriceFrom   float64    `json:"price_from" yaml:"price_from"`
	Retailers   []Retailer `json:"retailers" yaml:"retailers"`
	Notes       string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	MarketedFor []string   `json:"marketed_for,omitempty" yaml:"marketed_for,omitempty"`
}

// TGPOrDefault returns the board power, falling back to DefaultTGPWatts.
func (g *GPURecord) TGPOrDefault() int {
	if g.TGPW == nil || *g.TGPW <= 0 {
		return DefaultTGPWatts
	}
	return *g.TGPW
}

// RetailerURLs returns the non-empty retailer URLs in catalog order.
func (g *GPURecord) RetailerURLs() []string {
	urls := make([]string, 0, len(g.Retailers))
	for _, r := range g.Retailers {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

// Clone returns a deep copy so callers can never alias catalog slices.
func (g *GPURecord) Clone() GPURecord {
	c := *g
	if g.TGPW != nil {
		tgp := *g.TGPW
		c.TGPW = &tgp
	}
	if g.Retailers != nil {
		c.Retailers = append([]Retailer(nil), g.Retailers...)
	}
	if g.MarketedFor != nil {
		c.MarketedFor = append([]string(nil), g.MarketedFor...)
	}
	return c
}

// Validate checks the structural rules a catalog record must satisfy.
func (g *GPURecord) Validate() error {
	switch {
	case g.Model == "":
		return fmt.Errorf("%w: model is required", ErrInvalidGPURecord)
	case g.Brand == "":
		return fmt.Errorf("%w: %s: brand is required", ErrInvalidGPURecord, g.Model)
	case g.VRAMGB <= 0:
		return fmt.Errorf("%w: %s: vram_gb must be positive", ErrInvalidGPURecord, g.Model)
	case g.BusBit <= 0:
		return fmt.Errorf("%w: %s: bus_bit must be positive", ErrInvalidGPURecord, g.Model)
	case g.TGPW != nil && *g.TGPW <= 0:
		return fmt.Errorf("%w: %s: tgp_w must be positive when set", ErrInvalidGPURecord, g.Model)
	case g.PriceFrom < 0:
		return fmt.Errorf("%w: %s: price_from must not be negative", ErrInvalidGPURecord, g.Model)
	}
	return nil
}

// Source is a citation for the catalog's spec and price data.
type Source struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// Catalog is the immutable set of records loaded at process start.
type Catalog struct {
	LastChecked string      `json:"last_checked" yaml:"last_checked"`
	GPUs        []GPURecord `json:"gpus" yaml:"gpus"`
	Sources     []Source    `json:"sources,omitempty" yaml:"sources,omitempty"`
	Presets     []Preset    `json:"presets,omitempty" yaml:"presets,omitempty"`
}

// Validate rejects empty catalogs, invalid records and duplicate models.
func (c *Catalog) Validate() error {
	if len(c.GPUs) == 0 {
		return ErrCatalogEmpty
	}
	seen := make(map[string]struct{}, len(c.GPUs))
	for i := range c.GPUs {
		if err := c.GPUs[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[c.GPUs[i].Model]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateModel, c.GPUs[i].Model)
		}
		seen[c.GPUs[i].Model] = struct{}{}
	}
	return nil
}

// Find returns a copy of the record with the given model name.
func (c *Catalog) Find(model string) (GPURecord, error) {
	for i := range c.GPUs {
		if c.GPUs[i].Model == model {
			return c.GPUs[i].Clone(), nil
		}
	}
	return GPURecord{}, ErrGPUNotFound
}

// Preset returns the preset with the given name.
func (c *Catalog) Preset(name string) (Preset, error) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, ErrPresetNotFound
}

// DeriveSources cites each record's first retailer when the catalog carries
// no citations of its own.
func (c *Catalog) DeriveSources() {
	if len(c.Sources) > 0 {
		return
	}
	c.Sources = make([]Source, 0, len(c.GPUs))
	for i := range c.GPUs {
		g := &c.GPUs[i]
		if len(g.Retailers) == 0 || g.Retailers[0].URL == "" {
			continue
		}
		c.Sources = append(c.Sources, Source{
			Title: fmt.Sprintf("%s (%s)", g.Model, g.Retailers[0].Name),
			URL:   g.Retailers[0].URL,
		})
	}
}
