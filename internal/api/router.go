// Package api wires the HTTP surface: health probes, Prometheus metrics,
// the backtest endpoint, and the signal state read endpoint.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ryanlattanzi/algo-trading/internal/api/handlers"
	"github.com/ryanlattanzi/algo-trading/internal/api/middleware"
	"github.com/ryanlattanzi/algo-trading/internal/domain/signal"
	backtestsvc "github.com/ryanlattanzi/algo-trading/internal/service/backtest"
)

// Config holds router dependencies. DB may be nil when no database backend
// is configured.
type Config struct {
	Runner  *backtestsvc.Runner
	States  signal.KeyValueRepository
	DB      handlers.Pinger
	Version string
}

// NewRouter creates the HTTP router.
func NewRouter(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.Logging(
		log.With().Str("component", "api").Logger(),
		"/health", "/health/ready", "/metrics",
	))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	backtestHandler := handlers.NewBacktestHandler(cfg.Runner)
	signalsHandler := handlers.NewSignalsHandler(cfg.States)

	r.Get("/health", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/backtest", backtestHandler.Run)
		r.Get("/signals/{ticker}", signalsHandler.Get)
	})

	return r
}
