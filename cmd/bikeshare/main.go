// Command bikeshare serves the Citi Bike strategy dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"bikeshare/internal/backend"
	"bikeshare/internal/cache"
	"bikeshare/internal/cli"
	"bikeshare/internal/config"
	"bikeshare/internal/content"
	"bikeshare/internal/dataset"
	apphttp "bikeshare/internal/http"
	applog "bikeshare/internal/log"
	"bikeshare/internal/services"
	"bikeshare/internal/source"
)

const cacheSweepInterval = time.Minute

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(nil, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		cli.Fatal(logger, "Dashboard stopped with error", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *applog.Logger) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	svc := services.NewUsageService(res.Reader, services.Options{
		TopN:      cfg.TopStations,
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Logger:    logger.WithComponent(applog.ComponentPipeline),
	})

	contentFS, err := content.Embedded()
	if err != nil {
		return fmt.Errorf("open embedded content: %w", err)
	}
	site, err := content.Load(contentFS)
	if err != nil {
		return fmt.Errorf("load page content: %w", err)
	}

	mapHTML, err := loadData(ctx, svc, dataset.NewMapFile(cfg.MapHTMLPath), logger)
	if err != nil {
		return err
	}

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.CORSOrigins,
		TrustedProxies:     cfg.TrustedProxies,
		ChartCacheSize:     cfg.CacheSize,
		ChartCacheTTL:      cfg.CacheTTL,
	}, svc, site, mapHTML, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	caches := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	caches.Register(svc.Rankings())
	for _, c := range srv.Caches() {
		caches.Register(c)
	}
	caches.StartCleanup(cacheSweepInterval)
	defer caches.Stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("Starting bikeshare dashboard",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"map_available", mapHTML != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received", applog.FieldOperation, applog.OpShutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// loadData reads the usage table and the trip map concurrently. A missing map is
// logged and reported as an empty document.
func loadData(ctx context.Context, svc *services.UsageService, maps source.MapReader, logger *applog.Logger) (string, error) {
	var mapHTML string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Load(gctx)
	})
	g.Go(func() error {
		html, err := maps.ReadMap(gctx)
		if errors.Is(err, dataset.ErrMapNotFound) {
			logger.WithComponent(applog.ComponentDataset).Warn("Map file not found, geography page will show fallback",
				applog.FieldError, err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load map: %w", err)
		}
		mapHTML = html
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", err
	}
	return mapHTML, nil
}
