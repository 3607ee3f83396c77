package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/primary/http/handlers"
	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/primary/http/middleware"
	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/secondary/liveprice"
	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/secondary/postgres"
	"github.com/VibeCoder01/GPU-Recommender/internal/adapters/secondary/yamlcatalog"
	"github.com/VibeCoder01/GPU-Recommender/internal/config"
	output "github.com/VibeCoder01/GPU-Recommender/internal/core/ports/output"
	"github.com/VibeCoder01/GPU-Recommender/internal/core/services"
	"github.com/VibeCoder01/GPU-Recommender/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	// Catalog source (embedded YAML unless configured otherwise)
	var (
		source output.CatalogSource
		pool   *pgxpool.Pool
	)
	switch cfg.Catalog.Source {
	case config.CatalogSourcePostgres:
		pool, err = newPool(cfg)
		if err != nil {
			log.Fatalf("create db pool: %v", err)
		}
		defer pool.Close()
		log.Info("database connection established")
		source = postgres.NewCatalogRepository(pool)
	case config.CatalogSourceFile:
		source = yamlcatalog.NewFileSource(cfg.Catalog.Path)
	default:
		source = yamlcatalog.NewEmbeddedSource()
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, err := services.LoadCatalog(loadCtx, source)
	cancelLoad()
	if err != nil {
		log.Fatalf("%v", err)
	}

	metrics := observability.NewMetrics()
	metrics.CatalogRecords.Set(float64(len(catalog.GPUs)))

	// Live price resolver (Optional - based on config)
	var resolver output.PriceResolver
	if cfg.LivePrice.Enabled {
		resolver = liveprice.NewPriceClient(&cfg.LivePrice)
		log.WithField("base_url", cfg.LivePrice.BaseURL).Info("live price client initialized")
	} else {
		resolver = liveprice.NewNoopResolver()
		log.Info("live pricing disabled")
	}

	// Core Services (Application Layer)
	validator := services.NewConstraintValidator(cfg.Validation.MinBudget)
	recommendSvc := services.NewRecommendationService(catalog, validator, resolver, metrics, services.RecommendationOptions{
		MaxConcurrency: cfg.LivePrice.MaxConcurrency,
		ResolveTimeout: cfg.LivePrice.Timeout,
	})
	catalogSvc := services.NewCatalogService(catalog, source.Name())

	// Primary Adapter (HTTP Handlers)
	h := handlers.New(recommendSvc, catalogSvc, handlers.LivePricingDefaults{
		Enabled: cfg.LivePrice.Enabled,
		Base:    cfg.LivePrice.BaseURL,
	})

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), middleware.Metrics(metrics), gin.Recovery())

	api := router.Group("/api/v1/gpu-recommender")
	h.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	router.GET("/healthz", func(c *gin.Context) {
		if pool != nil {
			if err := pool.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"catalog_source":  catalogSvc.SourceName(),
			"catalog_records": catalogSvc.Size(),
		})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func newPool(cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
