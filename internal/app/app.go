// Package app wires configuration, storage and services into a running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skinlens/backend/config"
	httpDelivery "github.com/skinlens/backend/internal/delivery/http"
	"github.com/skinlens/backend/internal/domain"
	"github.com/skinlens/backend/internal/infrastructure/analyzer"
	"github.com/skinlens/backend/internal/infrastructure/cache"
	"github.com/skinlens/backend/internal/infrastructure/catalog"
	"github.com/skinlens/backend/internal/infrastructure/kvstore"
	"github.com/skinlens/backend/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// App holds every long-lived component of the service
type App struct {
	Config          *config.Config
	Logger          *zap.Logger
	Store           kvstore.Store
	Catalog         *catalog.Store
	Recommendations *usecase.RecommendationService
	Scans           *usecase.ScanService
	ScanStore       *usecase.ScanStore
	Routine         *usecase.RoutineStore
	Products        *usecase.ProductsStore

	closers []func() error
}

// New opens the state store, restores persisted state and builds the services
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	cat, err := catalog.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a.Catalog = cat
	logger.Info("catalog loaded", zap.Int("products", cat.Len()))

	store, err := kvstore.Open(ctx, kvstore.Options{
		Type:       cfg.Store.Type,
		RedisURL:   cfg.Store.RedisURL,
		SQLitePath: cfg.Store.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)
	logger.Info("state store ready", zap.String("type", cfg.Store.Type))

	recCache := a.recommendationCache(store)

	stateOpts := usecase.StateOptions{
		Store:     store,
		KeyPrefix: cfg.Store.KeyPrefix,
		Logger:    logger,
	}
	a.Routine = usecase.NewRoutineStore(stateOpts)
	a.Products = usecase.NewProductsStore(stateOpts)
	a.ScanStore = usecase.NewScanStore(stateOpts)

	for name, hydrate := range map[string]func(context.Context) error{
		"routine":  a.Routine.Hydrate,
		"products": a.Products.Hydrate,
		"scans":    a.ScanStore.Hydrate,
	} {
		if err := hydrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("hydrate %s state: %w", name, err)
		}
	}
	a.ScanStore.Subscribe(func(s usecase.ScanState) {
		logger.Debug("scan history changed", zap.Int("scans", len(s.History)))
	})

	a.Recommendations = usecase.NewRecommendationService(cat, recCache, usecase.RecommendationServiceConfig{
		CacheTTL:     cfg.Cache.TTL,
		DefaultLimit: cfg.Recommend.DefaultLimit,
		Debug:        cfg.Server.Environment == "development",
	}, logger)

	var skinAnalyzer domain.SkinAnalyzer
	if cfg.Analyzer.Enabled() {
		client := analyzer.NewClient(analyzer.Config{
			BaseURL:           cfg.Analyzer.BaseURL,
			APIKey:            cfg.Analyzer.APIKey,
			Timeout:           cfg.Analyzer.Timeout,
			RequestsPerSecond: cfg.Analyzer.RequestsPerSecond,
		}, logger)
		client.SetDebug(cfg.Server.Environment == "development")
		skinAnalyzer = client
		logger.Info("skin analyzer configured", zap.String("base_url", cfg.Analyzer.BaseURL))
	} else {
		logger.Warn("skin analyzer not configured, POST /scans/analyze will return 503")
	}
	a.Scans = usecase.NewScanService(a.ScanStore, skinAnalyzer, logger)

	return a, nil
}

// recommendationCache shares the redis connection when state lives in redis
func (a *App) recommendationCache(store kvstore.Store) domain.CacheRepository {
	if rs, ok := store.(*kvstore.RedisStore); ok {
		a.Logger.Info("recommendation cache: redis")
		return cache.NewRedisCache(rs.Client(), a.Config.Store.KeyPrefix+":cache")
	}
	mem := cache.NewMemoryCache(0)
	a.closers = append(a.closers, mem.Close)
	a.Logger.Info("recommendation cache: memory", zap.Duration("ttl", a.Config.Cache.TTL))
	return mem
}

// Router builds the HTTP router over the app's services
func (a *App) Router() *gin.Engine {
	handler := httpDelivery.NewHandler(httpDelivery.Dependencies{
		Catalog:         a.Catalog,
		Recommendations: a.Recommendations,
		Scans:           a.Scans,
		ScanStore:       a.ScanStore,
		Routine:         a.Routine,
		Products:        a.Products,
		Logger:          a.Logger,
	})
	return httpDelivery.SetupRouter(a.Config, handler, a.Logger)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", a.Config.Server.Environment),
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

	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.Logger.Info("server exited")
	return nil
}

// Close releases the cache and state store
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
