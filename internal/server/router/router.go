// Package router собирает HTTP маршруты облачного сервиса.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/marketsync/internal/server/handlers"
	"github.com/iudanet/marketsync/internal/server/middleware"
	"github.com/iudanet/marketsync/internal/server/token"
)

// Config параметры маршрутизации и защитных middleware
type Config struct {
	TokenConfig token.Config
	RateLimit   int
	RateWindow  time.Duration
}

// New создает chi-роутер со всеми маршрутами сервиса.
// /health открыт и не логируется, /sync/* требует токен агента
// и ограничен по частоте запросов
func New(logger *slog.Logger, cfg Config, syncHandler *handlers.SyncHandler, healthHandler *handlers.HealthHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(middleware.LoggingWithSkip(logger, []string{"/health"}))

	r.Get("/health", healthHandler.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(logger, cfg.TokenConfig))
		r.Use(middleware.RateLimitMiddleware(cfg.RateLimit, cfg.RateWindow, logger))

		r.Get("/sync/pull", syncHandler.HandlePull)
		r.Post("/sync/push", syncHandler.HandlePush)
	})

	return r
}
