package handlers

import (
	"errors"
	"net/http"

	"itunes-library/internal/library"
	"itunes-library/internal/logging"
	"itunes-library/internal/metrics"
	"itunes-library/internal/plist"
)

// ImportLibrary decodes an uploaded library XML document and returns the
// result without storing it. offset and limit select a window of tracks;
// playlists are always returned in full.
func (h *Handlers) ImportLibrary(w http.ResponseWriter, r *http.Request) {
	if h.importer.Gate != nil {
		if err := h.importer.Gate.Wait(r.Context()); err != nil {
			writeJSONError(w, "server busy, retry later", http.StatusServiceUnavailable)
			return
		}
	}

	body := http.MaxBytesReader(w, r.Body, h.maxUpload)
	defer body.Close()

	doc, err := plist.Parse(body)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(library.Status(library.ErrSourceUnavailable)).Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, "library document too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	lib, err := h.importer.Decode(doc, uploadWindow(r))
	if err != nil {
		switch library.Status(err) {
		case "schema_mismatch", "type_coercion":
			writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			logging.Error("failed to decode uploaded library: %v", err)
			writeJSONError(w, "failed to decode library", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, lib)
}

// uploadWindow reads offset and limit. A missing or invalid offset is 0 and
// a missing or invalid limit is unbounded.
func uploadWindow(r *http.Request) library.Window {
	offset, hasOffset := queryInt(r, "offset")
	limit, hasLimit := queryInt(r, "limit")
	if !hasOffset && !hasLimit {
		return library.AllTracks
	}
	if !hasLimit {
		limit = -1
	}
	return library.Page(offset, limit)
}
