package main

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Daemonaise/studio/internal/catalog"
	"github.com/Daemonaise/studio/internal/config"
	"github.com/Daemonaise/studio/internal/db"
	"github.com/Daemonaise/studio/internal/estimate"
	"github.com/Daemonaise/studio/internal/logger"
	"github.com/Daemonaise/studio/internal/migrations"
	"github.com/Daemonaise/studio/internal/quote"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database, cfg.MigrationsDir); err != nil {
		log.Fatalf("failed to run database migrations: %v", err)
	}

	stats, err := catalog.Seed(database)
	if err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}
	if stats.Inserts > 0 {
		slog.Info("seeded catalog defaults", "inserts", stats.Inserts)
	}

	pricing, err := catalog.Load(database)
	if err != nil {
		log.Fatalf("failed to load pricing catalog: %v", err)
	}

	var estimator estimate.Estimator = estimate.Heuristic{}
	if cfg.EstimatorURL != "" {
		estimator = estimate.NewHTTPClient(cfg.EstimatorURL)
		slog.Info("using external estimator", "url", cfg.EstimatorURL)
	}

	srv := &server{
		engine:    quote.New(pricing),
		pricing:   pricing,
		estimator: estimator,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", srv.handleHealthz)
	r.Post("/api/analyze", srv.handleAnalyze)
	r.Post("/api/quote", srv.handleQuote)
	r.Get("/api/catalog", srv.handleCatalog)

	addr := ":" + cfg.Port
	slog.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
