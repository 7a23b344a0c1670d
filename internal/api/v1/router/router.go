package router

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"artemius/internal/api/v1/handler"
	"artemius/internal/config"
	"artemius/internal/middleware"
	"artemius/internal/service"
)

// New builds the ops HTTP API. Health and metrics are public; user routes
// live under /v1 and need a Bearer token.
func New(cfg *config.Config, entitlements service.EntitlementService, subs service.SubscriptionService, logger zerolog.Logger) http.Handler {
	logger.Info().Str("environment", cfg.Env).Msg("Ops router initialized")

	validate := validator.New(validator.WithRequiredStructEnabled())

	userHandler := handler.NewUserHandler(entitlements, subs, validate, logger)
	healthHandler := handler.NewHealthHandler(time.Now())

	authMiddleware := middleware.AuthMiddleware(cfg.OpsJWTSecret, logger)

	mux := http.NewServeMux()

	apiV1Mux := http.NewServeMux()
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))

	healthHandler.RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return middleware.LoggerMiddleware(logger)(c.Handler(mux))
}
