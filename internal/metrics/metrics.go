package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itunes_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itunes_library_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itunes_library_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"outcome"}, // "commit", "rollback"
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Import metrics
var (
	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_imports_total",
			Help: "Total number of library imports by outcome",
		},
		[]string{"status"}, // "success", "source_unavailable", "schema_mismatch", "type_coercion", "error"
	)

	ImportStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itunes_library_import_stage_duration_seconds",
			Help:    "Duration of each import stage in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"}, // "load", "info", "tracks", "playlists"
	)

	RecordsDecodedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_records_decoded_total",
			Help: "Total number of dict records decoded by record type",
		},
		[]string{"record"}, // "info", "track", "playlist"
	)

	PlaylistReferencesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itunes_library_playlist_references_total",
			Help: "Total number of playlist track references read",
		},
	)
)

// Sync metrics
var (
	SyncRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itunes_library_sync_runs_total",
			Help: "Total number of library sync runs",
		},
	)

	SyncFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_sync_files_total",
			Help: "Library files handled by sync runs by outcome",
		},
		[]string{"outcome"}, // "imported", "unchanged", "failed"
	)

	SyncLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_sync_last_run_timestamp",
			Help: "Unix timestamp of the last sync run",
		},
	)

	SyncLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_sync_last_run_duration_seconds",
			Help: "Duration of the last sync run in seconds",
		},
	)

	SyncIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_sync_running",
			Help: "Whether a sync is currently running (1 = running, 0 = idle)",
		},
	)
)

// Library content metrics
var (
	LibrariesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_libraries_total",
			Help: "Number of libraries in the store",
		},
	)

	TracksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_tracks_total",
			Help: "Number of tracks in the store",
		},
	)

	PlaylistsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_playlists_total",
			Help: "Number of playlists in the store",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_filesystem_retry_attempts_total",
			Help: "Total number of filesystem retry attempts after stale file handle errors",
		},
		[]string{"operation", "label"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "label"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "label"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itunes_library_filesystem_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation", "label"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itunes_library_filesystem_retry_duration_seconds",
			Help:    "Total time spent in retried filesystem operations",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "label"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_memory_usage_ratio",
			Help: "Heap usage as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "itunes_library_memory_paused",
			Help: "Whether new imports are held for memory pressure (1 = held, 0 = running)",
		},
	)

	MemoryPauseEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "itunes_library_memory_pause_events_total",
			Help: "Number of times imports were held for memory pressure",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "itunes_library_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
