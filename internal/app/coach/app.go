// Package coach собирает основное HTTP-приложение: хранилище, миграции,
// кеш, сервисы движка резолюции и маршруты.
package coach

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/coach-hub/internal/cache"
	"github.com/magabrotheeeer/coach-hub/internal/config"
	"github.com/magabrotheeeer/coach-hub/internal/lib/clock"
	libjwt "github.com/magabrotheeeer/coach-hub/internal/lib/jwt"
	"github.com/magabrotheeeer/coach-hub/internal/migrations"
	accessservice "github.com/magabrotheeeer/coach-hub/internal/services/access"
	assignmentservice "github.com/magabrotheeeer/coach-hub/internal/services/assignment"
	authservice "github.com/magabrotheeeer/coach-hub/internal/services/auth"
	dashboardservice "github.com/magabrotheeeer/coach-hub/internal/services/dashboard"
	entitlementservice "github.com/magabrotheeeer/coach-hub/internal/services/entitlement"
	purchaseservice "github.com/magabrotheeeer/coach-hub/internal/services/purchase"
	"github.com/magabrotheeeer/coach-hub/internal/storage"
	"github.com/magabrotheeeer/coach-hub/internal/storage/repository"
)

// App основное HTTP-приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
}

// New создает приложение: подключает хранилище и кеш, применяет миграции,
// собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	repo := repository.New(db)
	clk := clock.System{}
	jwtMaker := libjwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authSvc := authservice.NewService(repo, jwtMaker)
	entitlementSvc := entitlementservice.NewResolver(repo, repo, cacheRedis, clk, logger)
	gate := accessservice.NewGate(entitlementSvc, logger)
	assignmentSvc := assignmentservice.NewResolver(repo, logger)
	dashboardSvc := dashboardservice.NewService(repo, cacheRedis, clk, logger)
	purchaseSvc := purchaseservice.NewService(repo, repo, entitlementSvc, clk, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:        authSvc,
		Gate:        gate,
		Assignment:  assignmentSvc,
		Dashboard:   dashboardSvc,
		Purchase:    purchaseSvc,
		Users:       repo,
		Catalog:     repo,
		WebhookAuth: cfg.JWTSecretKey,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
