package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"itunes-library/internal/database"
	"itunes-library/internal/logging"

	"github.com/gorilla/mux"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, statusCode int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, map[string]string{"status": status})
}

// writeStoreError maps a store error to 404 or 500.
func writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, database.ErrNotFound) {
		writeJSONError(w, what+" not found", http.StatusNotFound)
		return
	}
	logging.Error("failed to load %s: %v", what, err)
	writeJSONError(w, "failed to load "+what, http.StatusInternalServerError)
}

// pathID parses the route variable name as an integer id.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}

// queryInt returns the integer query parameter name. ok is false when the
// parameter is absent or not an integer.
func queryInt(r *http.Request, name string) (n int, ok bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
