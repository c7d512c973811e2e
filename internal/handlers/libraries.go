package handlers

import (
	"net/http"
)

const defaultTrackPageSize = 100

// ListLibraries returns a summary of every stored library.
func (h *Handlers) ListLibraries(w http.ResponseWriter, r *http.Request) {
	libs, err := h.store.ListLibraries(r.Context())
	if err != nil {
		writeStoreError(w, err, "libraries")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, libs)
}

// GetLibrary returns one library with its info.
func (h *Handlers) GetLibrary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "invalid library id", http.StatusBadRequest)
		return
	}

	lib, err := h.store.GetLibrary(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "library")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, lib)
}

// GetTracks returns a page of a library's tracks in import order.
// limit=0 returns every track from offset on.
func (h *Handlers) GetTracks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "invalid library id", http.StatusBadRequest)
		return
	}

	offset, _ := queryInt(r, "offset")
	if offset < 0 {
		offset = 0
	}
	limit, ok := queryInt(r, "limit")
	if !ok || limit < 0 {
		limit = defaultTrackPageSize
	}

	page, err := h.store.GetTracks(r.Context(), id, offset, limit)
	if err != nil {
		writeStoreError(w, err, "library")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, page)
}

// GetTrack returns one track by its Track ID.
func (h *Handlers) GetTrack(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "invalid library id", http.StatusBadRequest)
		return
	}
	trackID, ok := pathID(r, "trackID")
	if !ok {
		writeJSONError(w, "invalid track id", http.StatusBadRequest)
		return
	}

	track, err := h.store.GetTrack(r.Context(), id, trackID)
	if err != nil {
		writeStoreError(w, err, "track")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, track)
}

// ListPlaylists returns a summary of every playlist in a library.
func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "invalid library id", http.StatusBadRequest)
		return
	}

	playlists, err := h.store.GetPlaylists(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "library")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, playlists)
}

// GetPlaylist returns a playlist with the stored tracks it references.
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSONError(w, "invalid library id", http.StatusBadRequest)
		return
	}
	playlistID, ok := pathID(r, "playlistID")
	if !ok {
		writeJSONError(w, "invalid playlist id", http.StatusBadRequest)
		return
	}

	detail, err := h.store.GetPlaylistTracks(r.Context(), id, playlistID)
	if err != nil {
		writeStoreError(w, err, "playlist")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, detail)
}
