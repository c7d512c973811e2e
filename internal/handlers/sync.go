package handlers

import (
	"net/http"

	"itunes-library/internal/logging"
)

// GetStats returns the store totals from the last stats refresh.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.store.GetStats())
}

// TriggerSync starts a background sync of the configured library files.
func (h *Handlers) TriggerSync(w http.ResponseWriter, _ *http.Request) {
	if !h.indexer.TriggerSync() {
		writeJSONStatus(w, http.StatusConflict, "sync_in_progress")
		return
	}
	logging.Info("Manual sync triggered")
	writeJSONStatus(w, http.StatusAccepted, "sync_started")
}
