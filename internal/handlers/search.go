package handlers

import (
	"net/http"

	"itunes-library/internal/database"
)

const defaultSearchLimit = 50

// Search finds tracks across all libraries. Matching ignores case and
// diacritics.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit, ok := queryInt(r, "limit")
	if !ok || limit <= 0 {
		limit = defaultSearchLimit
	}

	if query == "" {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, []database.SearchHit{})
		return
	}

	hits, err := h.store.SearchTracks(r.Context(), query, limit)
	if err != nil {
		writeStoreError(w, err, "search results")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, hits)
}
