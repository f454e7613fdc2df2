package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fwselect/firewall-selector/app"
	"github.com/fwselect/firewall-selector/app/health"
	"github.com/fwselect/firewall-selector/config"
	"github.com/fwselect/firewall-selector/db"
	"github.com/fwselect/firewall-selector/loader"
	"github.com/fwselect/firewall-selector/logger"
	"github.com/fwselect/firewall-selector/models"
	"github.com/fwselect/firewall-selector/pricing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := app.Dependencies{
		Discounts: pricing.NewDiscounts(
			decimal.NewFromFloat(cfg.Discounts.Hardware),
			decimal.NewFromFloat(cfg.Discounts.Software),
			decimal.NewFromFloat(cfg.Discounts.Support),
		),
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         log,
	}

	var (
		source loader.Loader
		gdb    *gorm.DB
	)
	switch cfg.Catalog.Source {
	case config.SourceDatabase:
		gdb, err = db.Open(ctx, cfg.Database)
		if err != nil {
			log.Error("Database unavailable", zap.Error(err))
			deps.Catalogs = loader.NewSnapshot(nil, fmt.Errorf("%w: %w", loader.ErrCatalogUnavailable, err))
			deps.Database = health.Unreachable(err)
			break
		}
		defer func() {
			if err := db.Close(gdb); err != nil {
				log.Warn("Failed to close database", zap.Error(err))
			}
		}()
		repo := models.NewProductsRepository(gdb)
		deps.Database = repo
		source = loader.DBLoader{Repo: repo, Terms: cfg.Catalog.Terms}
	default:
		source = loader.FileLoader{Path: cfg.Catalog.Path}
	}

	if source != nil {
		cat, err := loader.LoadWithRetry(ctx, source, loader.RetryPolicy{
			Attempts: cfg.Catalog.LoadAttempts,
			Timeout:  cfg.Catalog.LoadTimeout,
			Delay:    cfg.Catalog.RetryDelay,
		}, log)
		if errors.Is(err, models.ErrMalformedCatalog) {
			return err
		}
		if err != nil {
			log.Error("Serving without catalog", zap.Error(err))
		}
		deps.Catalogs = loader.NewSnapshot(cat, err)
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort("", cfg.App.Port),
		Handler:      app.SetupRoutes(deps),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("catalog_source", cfg.Catalog.Source),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
