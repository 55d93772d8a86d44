package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/alima/supply/internal/app"
	"github.com/alima/supply/internal/observability"
	"github.com/alima/supply/internal/platform/cache"
	"github.com/alima/supply/internal/platform/db"
	"github.com/alima/supply/internal/pricelists"
	"github.com/alima/supply/internal/products"
	"github.com/alima/supply/internal/refcatalog"
	"github.com/alima/supply/internal/suppliers"
	"github.com/alima/supply/internal/taxcodes"
	"github.com/alima/supply/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		// The tax code store falls back to Postgres without a cache.
		logger.Warn("redis unavailable, tax codes served uncached", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()

	taxStore := taxcodes.NewStore(taxcodes.NewRepository(dbpool), redisClient, cfg.TaxCodesTTL)
	catalogRepo := refcatalog.NewRepository(dbpool)
	supplierService := suppliers.NewService(suppliers.NewRepository(dbpool))

	productService := products.NewService(products.NewRepository(dbpool), catalogRepo, taxStore, cfg.SKUPrefix, logger).
		WithMetrics(metrics)
	priceListService := pricelists.NewService(pricelists.NewRepository(dbpool), productService, supplierService, jobClient, cfg.DefaultCurrency, logger).
		WithMetrics(metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Pool:             dbpool,
		ProductsHandler:  products.NewHandler(logger, productService, cfg.MaxUploadBytes),
		PriceListHandler: pricelists.NewHandler(logger, priceListService, cfg.MaxUploadBytes),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
