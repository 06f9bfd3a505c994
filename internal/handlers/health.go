package handlers

import (
	"net/http"
	"runtime"

	"board-assets/internal/logging"
	"board-assets/internal/startup"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Workers      int    `json:"workers"`
	QueueDepth   int    `json:"queueDepth"`
	GoVersion    string `json:"goVersion"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports liveness and worker pool load.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, HealthResponse{
		Status:       "healthy",
		Version:      startup.Version,
		Workers:      h.pool.Size(),
		QueueDepth:   h.pool.Pending(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
	})
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, startup.GetBuildInfo())
}

// GetStats returns catalog totals.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSONError(w, "catalog disabled", http.StatusServiceUnavailable)
		return
	}

	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		logging.Error("failed to read catalog stats: %v", err)
		writeJSONError(w, "failed to read catalog", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, map[string]int64{
		"tempAssets":      stats.TempAssets,
		"permanentAssets": stats.PermanentAssets,
		"thumbnails":      stats.Thumbnails,
		"thumbnailBytes":  stats.ThumbnailBytes,
	})
}
