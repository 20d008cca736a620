package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"golang.org/x/crypto/acme/autocert"

	"picks-dashboard/config"
	"picks-dashboard/database"
	"picks-dashboard/handlers"
	"picks-dashboard/logging"
	"picks-dashboard/metrics"
	"picks-dashboard/services"
	"picks-dashboard/stats"
	"picks-dashboard/templates"
)

// demoDays is how many days of sample picks the memory store is seeded with
const demoDays = 30

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Configuration error: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	cfg.LogConfiguration()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	clock := stats.SystemClock{}

	// Initialize the pick store, falling back to demo data when allowed
	backend := cfg.Store.Backend
	var store database.PickStore
	if backend != config.StoreBackendMemory {
		store, err = database.Open(ctx, cfg.ToOpenOptions())
		if err != nil {
			if !cfg.Store.FallbackToMemory {
				logging.Fatalf("Store connection failed (%s): %v", backend, err)
			}
			logging.Warnf("Store connection failed (%s): %v", backend, err)
			logging.Warn("Continuing with demo picks in memory...")
			store = nil
			backend = config.StoreBackendMemory
		}
	}
	if store == nil {
		store = database.NewMemoryPickStore(database.SampleRecords(stats.Today(loc, clock), demoDays))
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warnf("Error closing store: %v", err)
		}
	}()

	// Metrics wrap the store so every fetch is timed
	var manager *metrics.Manager
	if cfg.Metrics.Enabled {
		manager = metrics.NewManager(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRuntimeCollectors(),
		)
		store = database.Instrument(store, manager)
	}

	// Parse templates
	tmpl, err := templates.Load(loc)
	if err != nil {
		logging.Fatalf("Error parsing templates: %v", err)
	}

	// Create services
	dashboardConfig := cfg.ToDashboardConfig()
	dashboardService := services.NewDashboardService(store, clock, dashboardConfig)
	matchService := services.NewMatchService(store, dashboardConfig.HighConfidence)

	// Create handlers
	routes := handlers.Routes{
		Health:         handlers.NewHealthHandler(store, backend),
		StaticDir:      cfg.Server.StaticDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		BehindProxy:    cfg.Server.BehindProxy,
	}
	var renderErrors handlers.ErrorCounter
	if manager != nil {
		dashboardService.SetRecorder(manager)
		renderErrors = manager
		routes.Metrics = manager.Handler()
		routes.Observer = manager
	}
	routes.Dashboard = handlers.NewDashboardHandler(tmpl, dashboardService, renderErrors)
	routes.Match = handlers.NewMatchHandler(tmpl, matchService, renderErrors)

	server := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handlers.NewRouter(routes),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- serve(server, cfg)
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		logging.Info("Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Server shutdown error: %v", err)
	}
	logging.Info("Server stopped")
}

// serve starts the listener the configuration asks for: autocert, static
// certificate files, or plain HTTP (also used behind a TLS-terminating proxy)
func serve(server *http.Server, cfg *config.Config) error {
	switch {
	case cfg.Server.UseTLS && cfg.Server.AutocertDomain != "":
		certManager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.Server.AutocertDomain),
			Cache:      autocert.DirCache(cfg.Server.AutocertCache),
		}
		server.TLSConfig = &tls.Config{
			GetCertificate: certManager.GetCertificate,
			MinVersion:     tls.VersionTLS12,
		}

		// ACME HTTP-01 challenges and redirects
		go func() {
			if err := http.ListenAndServe(":80", certManager.HTTPHandler(nil)); err != nil {
				logging.Warnf("ACME challenge listener stopped: %v", err)
			}
		}()

		logging.Infof("Server starting on https://%s (autocert)", cfg.Server.AutocertDomain)
		return server.ListenAndServeTLS("", "")

	case cfg.Server.UseTLS && !cfg.Server.BehindProxy:
		logging.Infof("Server starting on https://%s", server.Addr)
		return server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)

	default:
		logging.Infof("Server starting on http://%s", server.Addr)
		return server.ListenAndServe()
	}
}
