package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"itunes-library/internal/database"
	"itunes-library/internal/filesystem"
	"itunes-library/internal/handlers"
	"itunes-library/internal/indexer"
	"itunes-library/internal/library"
	"itunes-library/internal/logging"
	"itunes-library/internal/memory"
	"itunes-library/internal/metrics"
	"itunes-library/internal/middleware"
	"itunes-library/internal/startup"

	"github.com/gorilla/mux"
)

const (
	metricsCollectInterval = time.Minute
	shutdownTimeout        = 30 * time.Second
)

func main() {
	startTime := time.Now()

	// Set GOMEMLIMIT before any library document is loaded.
	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()

	importer := library.NewImporter(nil)
	importer.Gate = memMonitor

	startup.LogIndexerInit(len(config.LibraryPaths), config.SyncInterval)
	idx := indexer.New(db, importer, config.LibraryPaths, config.SyncInterval)
	idx.SetOnSyncComplete(func(indexer.SyncResult) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := db.RefreshStats(ctx); err != nil {
			logging.Warn("Failed to refresh stats after sync: %v", err)
		}
	})
	idx.Start()
	startup.LogIndexerStarted()

	collector := metrics.NewCollector(db, metricsCollectInterval)
	collector.Start()

	h := handlers.New(db, idx, importer)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Uploaded library documents can be large.
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsSrv = newMetricsServer(config.MetricsPort, h)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	shutdownDone := make(chan struct{})
	go handleShutdown(srv, metricsSrv, idx, collector, memMonitor, shutdownDone)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
	<-shutdownDone
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/libraries", h.ListLibraries).Methods(http.MethodGet)
	api.HandleFunc("/libraries/{id:[0-9]+}", h.GetLibrary).Methods(http.MethodGet)
	api.HandleFunc("/libraries/{id:[0-9]+}/tracks", h.GetTracks).Methods(http.MethodGet)
	api.HandleFunc("/libraries/{id:[0-9]+}/tracks/{trackID:[0-9]+}", h.GetTrack).Methods(http.MethodGet)
	api.HandleFunc("/libraries/{id:[0-9]+}/playlists", h.ListPlaylists).Methods(http.MethodGet)
	api.HandleFunc("/libraries/{id:[0-9]+}/playlists/{playlistID:[0-9]+}", h.GetPlaylist).Methods(http.MethodGet)
	api.HandleFunc("/search", h.Search).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/sync", h.TriggerSync).Methods(http.MethodPost)
	api.Handle("/import", middleware.Decompression()(http.HandlerFunc(h.ImportLibrary))).Methods(http.MethodPost)

	return r
}

func newMetricsServer(port string, h *handlers.Handlers) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", h.MetricsHandler())
	metricsMux.HandleFunc("/health", h.LivenessCheck)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      metricsMux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
}

func handleShutdown(srv, metricsSrv *http.Server, idx *indexer.Indexer, collector *metrics.Collector, memMonitor *memory.Monitor, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Stopping indexer")
	memMonitor.Stop()
	idx.Stop()
	startup.LogShutdownStepComplete("Indexer stopped")

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
