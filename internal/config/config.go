package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Catalog source kinds.
const (
	CatalogSourceEmbedded = "embedded"
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Catalog    CatalogConfig
	Database   DatabaseConfig
	LivePrice  LivePriceConfig
	Validation ValidationConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type CatalogConfig struct {
	Source string
	Path   string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds a postgres connection URL.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}

// LivePriceConfig configures the live price lookup. Enabled only makes
// lookups available; each request still opts in.
type LivePriceConfig struct {
	Enabled         bool
	BaseURL         string
	Timeout         time.Duration
	MaxConcurrency  int
	RatePerSecond   float64
	Burst           int
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type ValidationConfig struct {
	MinBudget float64
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, from that file. Environment values win.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("CATALOG_SOURCE", CatalogSourceEmbedded)
	v.SetDefault("CATALOG_PATH", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "gpu_catalog")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("LIVE_PRICE_ENABLED", false)
	v.SetDefault("LIVE_PRICE_BASE_URL", "")
	v.SetDefault("LIVE_PRICE_TIMEOUT", "3s")
	v.SetDefault("LIVE_PRICE_MAX_CONCURRENCY", 8)
	v.SetDefault("LIVE_PRICE_RATE_PER_SECOND", 20)
	v.SetDefault("LIVE_PRICE_BURST", 8)
	v.SetDefault("LIVE_PRICE_BREAKER_FAILURES", 5)
	v.SetDefault("LIVE_PRICE_BREAKER_TIMEOUT", "30s")
	v.SetDefault("VALIDATION_MIN_BUDGET", 0)

	// Env
	v.AutomaticEnv()

	// Optional file
	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Catalog: CatalogConfig{
			Source: v.GetString("CATALOG_SOURCE"),
			Path:   v.GetString("CATALOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), 30*time.Minute),
		},
		LivePrice: LivePriceConfig{
			Enabled:         v.GetBool("LIVE_PRICE_ENABLED"),
			BaseURL:         v.GetString("LIVE_PRICE_BASE_URL"),
			Timeout:         parseDuration(v.GetString("LIVE_PRICE_TIMEOUT"), 3*time.Second),
			MaxConcurrency:  v.GetInt("LIVE_PRICE_MAX_CONCURRENCY"),
			RatePerSecond:   v.GetFloat64("LIVE_PRICE_RATE_PER_SECOND"),
			Burst:           v.GetInt("LIVE_PRICE_BURST"),
			BreakerFailures: v.GetUint32("LIVE_PRICE_BREAKER_FAILURES"),
			BreakerTimeout:  parseDuration(v.GetString("LIVE_PRICE_BREAKER_TIMEOUT"), 30*time.Second),
		},
		Validation: ValidationConfig{
			MinBudget: v.GetFloat64("VALIDATION_MIN_BUDGET"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field rules.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Catalog.Source {
	case CatalogSourceEmbedded, CatalogSourcePostgres:
	case CatalogSourceFile:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required when CATALOG_SOURCE=%s", CatalogSourceFile)
		}
	default:
		return fmt.Errorf("CATALOG_SOURCE must be one of %s, %s, %s, got %q",
			CatalogSourceEmbedded, CatalogSourceFile, CatalogSourcePostgres, c.Catalog.Source)
	}

	if c.LivePrice.Enabled {
		if c.LivePrice.BaseURL == "" {
			return fmt.Errorf("LIVE_PRICE_BASE_URL is required when LIVE_PRICE_ENABLED=true")
		}
		if _, err := url.ParseRequestURI(c.LivePrice.BaseURL); err != nil {
			return fmt.Errorf("LIVE_PRICE_BASE_URL: %w", err)
		}
	}
	if c.LivePrice.MaxConcurrency < 0 {
		return fmt.Errorf("LIVE_PRICE_MAX_CONCURRENCY must not be negative")
	}

	if c.Validation.MinBudget < 0 {
		return fmt.Errorf("VALIDATION_MIN_BUDGET must not be negative")
	}

	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
