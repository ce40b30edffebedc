package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := NewAPIConfig(os.Stdout)
	if err != nil {
		newLogger(os.Stdout, false).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg.logger.Info("configuration loaded", "dev_mode", cfg.devMode, "provider_backend", cfg.defaultProviderBackend)

	if err := cfg.ConnectDB(); err != nil {
		os.Exit(1)
	}
	if err := cfg.ConnectCache(); err != nil {
		os.Exit(1)
	}
	cfg.wireServices()

	scheduler := NewScheduler(cfg, cfg.backfillInterval)
	cfg.logger.Info("starting scheduler", "backfill", cfg.backfillInterval.String(), "batch_size", cfg.backfillBatchSize)
	scheduler.Start()
	defer scheduler.Stop()

	mux := http.NewServeMux()
	registerRoutes(mux, cfg, scheduler)

	server := &http.Server{
		Addr:    ":" + cfg.port,
		Handler: metricsMiddleware(corsMiddleware(mux)),
	}

	cfg.logger.Info("starting server", "port", cfg.port)
	if err := server.ListenAndServe(); err != nil {
		cfg.logger.Error("server startup failed", "error", err)
		os.Exit(1)
	}
}

func registerRoutes(mux *http.ServeMux, cfg *apiConfig, scheduler *Scheduler) {
	mux.HandleFunc("GET /api/search", cfg.handlerSearch)
	mux.HandleFunc("GET /api/search/live", cfg.handlerLiveSearch)
	mux.HandleFunc("GET /api/categories", cfg.handlerCategories)
	mux.HandleFunc("GET /api/profile", cfg.handlerGetProfile)
	mux.HandleFunc("PUT /api/profile", cfg.handlerUpdateProfile)
	mux.HandleFunc("GET /api/providers/{id}", cfg.handlerGetProvider)
	mux.HandleFunc("POST /api/providers/{id}/contact", cfg.handlerContactProvider)
	mux.HandleFunc("GET /api/providers/{id}/website", cfg.handlerProviderWebsite)
	mux.HandleFunc("GET /api/config", cfg.handlerConfig)
	mux.Handle("GET /metrics", promhttp.Handler())

	if cfg.adminToken != "" {
		mux.HandleFunc("GET /api/admin/provider-settings", cfg.adminAuthMiddleware(cfg.handlerGetProviderSettings))
		mux.HandleFunc("PUT /api/admin/provider-settings", cfg.adminAuthMiddleware(cfg.handlerUpdateProviderSettings))
		mux.HandleFunc("GET /api/admin/reports", cfg.adminAuthMiddleware(cfg.handlerReports))
	} else {
		cfg.logger.Info("ADMIN_TOKEN not set, admin endpoints disabled")
	}

	if cfg.devMode {
		cfg.logger.Debug("development mode enabled, registering /dev endpoints")
		mux.HandleFunc("POST /dev/flush-cache", cfg.handlerFlushCache)
		mux.HandleFunc("POST /dev/run-scheduler-jobs", scheduler.handlerRunSchedulerJobs)
	}
}
