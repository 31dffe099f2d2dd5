package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/monkeyapp/internal/api"
	"github.com/vytor/monkeyapp/internal/config"
	"github.com/vytor/monkeyapp/internal/db"
	"github.com/vytor/monkeyapp/internal/logger"
	"github.com/vytor/monkeyapp/internal/metrics"
	"github.com/vytor/monkeyapp/internal/repository/sqlite"
	"github.com/vytor/monkeyapp/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("Monkey App Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("metrics_enabled=%t", cfg.MetricsEnabled)
	log.Debug("shutdown_timeout=%s", cfg.ShutdownTimeout)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load templates
	log.Debug("loading templates")
	tmpl, err := api.LoadTemplates()
	if err != nil {
		log.Error("failed to load templates: %v", err)
		os.Exit(1)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector("monkeyapp")
	}

	profileRepo := sqlite.NewProfileRepository(database.DB)
	friendshipRepo := sqlite.NewFriendshipRepository(database.DB)

	srv := &api.Server{
		ProfileService: services.NewProfileService(profileRepo, collector),
		GraphService:   services.NewGraphService(friendshipRepo, profileRepo, collector),
		Templates:      tmpl,
		Metrics:        collector,
		DB:             database,
		FlashCookie:    cfg.FlashCookie,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serverErr:
		log.Error("HTTP server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("Monkey App Server Stopped")
	log.Info("===========================================")
}
