package handlers

import (
	"net/http"
	"runtime"
	"time"

	"itunes-library/internal/indexer"
	"itunes-library/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status     string              `json:"status"`
	Ready      bool                `json:"ready"`
	Version    string              `json:"version"`
	Uptime     string              `json:"uptime"`
	Syncing    bool                `json:"syncing"`
	LastSynced string              `json:"lastSynced,omitempty"`
	LastError  string              `json:"lastError,omitempty"`
	LastResult *indexer.SyncResult `json:"lastResult,omitempty"`

	// Configured library files
	LibraryFiles int `json:"libraryFiles"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	// Memory gate, present when imports are gated on heap usage
	MemoryUsage *float64 `json:"memoryUsage,omitempty"`
	ImportsHeld bool     `json:"importsHeld,omitempty"`

	// Stats summary
	TotalLibraries int `json:"totalLibraries,omitempty"`
	TotalTracks    int `json:"totalTracks,omitempty"`
	TotalPlaylists int `json:"totalPlaylists,omitempty"`
}

// memoryGate is an import gate that also reports heap pressure.
type memoryGate interface {
	Usage() float64
	IsPaused() bool
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	healthStatus := h.indexer.GetHealthStatus()
	stats := h.store.GetStats()

	response := HealthResponse{
		Ready:        healthStatus.Ready,
		Version:      startup.Version,
		Uptime:       healthStatus.Uptime,
		Syncing:      healthStatus.Syncing,
		LastResult:   healthStatus.LastResult,
		LibraryFiles: healthStatus.Libraries,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if healthStatus.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if !healthStatus.LastSynced.IsZero() {
		response.LastSynced = healthStatus.LastSynced.Format(time.RFC3339)
	}

	// A failed file in the last sync degrades the service without making
	// it unready; stored libraries are still served.
	if healthStatus.LastError != "" {
		response.LastError = healthStatus.LastError
		response.Status = statusDegraded
	}

	if mem, ok := h.importer.Gate.(memoryGate); ok {
		usage := mem.Usage()
		response.MemoryUsage = &usage
		response.ImportsHeld = mem.IsPaused()
	}

	response.TotalLibraries = stats.Libraries
	response.TotalTracks = stats.Tracks
	response.TotalPlaylists = stats.Playlists

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only if not ready at all
	if !healthStatus.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the service is ready to accept traffic
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.IsReady() {
		writeJSONStatus(w, http.StatusOK, "ready")
	} else {
		writeJSONStatus(w, http.StatusServiceUnavailable, "not_ready")
	}
}
