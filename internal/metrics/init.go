package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "source_unavailable", "schema_mismatch", "type_coercion", "error"} {
		ImportsTotal.WithLabelValues(status)
	}

	for _, stage := range []string{"load", "info", "tracks", "playlists"} {
		ImportStageDuration.WithLabelValues(stage)
	}

	for _, record := range []string{"info", "track", "playlist"} {
		RecordsDecodedTotal.WithLabelValues(record)
	}

	for _, outcome := range []string{"imported", "unchanged", "failed"} {
		SyncFilesTotal.WithLabelValues(outcome)
	}

	for _, op := range []string{"stat", "open"} {
		for _, label := range []string{"library", "database", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, label)
			FilesystemRetrySuccess.WithLabelValues(op, label)
			FilesystemRetryFailures.WithLabelValues(op, label)
			FilesystemStaleErrors.WithLabelValues(op, label)
			FilesystemRetryDuration.WithLabelValues(op, label)
		}
	}

	for _, op := range []string{"initialize_schema", "save_library", "list_libraries", "get_library",
		"get_tracks", "get_track", "search_tracks", "get_playlists", "get_playlist_tracks",
		"get_fingerprint", "refresh_stats", "vacuum"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, outcome := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(outcome)
	}
}
