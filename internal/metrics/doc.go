// Package metrics provides Prometheus instrumentation for the library
// importer server.
//
// All metrics are prefixed with "itunes_library_" and registered with the
// default registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight
//
// ## Database Metrics
//   - DBQueryTotal, DBQueryDuration by operation
//   - DBTransactionDuration by outcome (commit/rollback)
//   - DBConnectionsOpen
//
// ## Import Metrics
//   - ImportsTotal by status; failures are labelled by error kind
//     (source_unavailable, schema_mismatch, type_coercion)
//   - ImportStageDuration for load, info, tracks and playlists
//   - RecordsDecodedTotal by record type, PlaylistReferencesTotal
//
// ## Sync Metrics
//   - SyncRunsTotal, SyncFilesTotal by outcome, SyncIsRunning,
//     SyncLastRunTimestamp, SyncLastRunDuration
//
// ## Library Metrics
//   - LibrariesTotal, TracksTotal, PlaylistsTotal, refreshed by Collector
//
// ## Filesystem Metrics
//   - Retry attempts, successes, failures, stale-handle errors and total
//     retry duration, recorded through NewFilesystemObserver
//
// Call InitializeMetrics once at startup so every labelled series exists
// from the first scrape.
package metrics
