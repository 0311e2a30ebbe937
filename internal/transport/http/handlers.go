package http

import (
	"encoding/json"
	"net/http"
)

// QueueStats reports the state of the download worker pool.
type QueueStats interface {
	QueueSize() int
	WorkerCount() int
}

// Handlers holds dependencies for the ops endpoints.
type Handlers struct {
	stats QueueStats
}

// NewHandlers creates the ops handlers.
func NewHandlers(stats QueueStats) *Handlers {
	return &Handlers{stats: stats}
}

// HealthResponse is the healthz payload.
type HealthResponse struct {
	Status    string `json:"status"`
	QueueSize int    `json:"queue_size"`
	Workers   int    `json:"workers"`
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &HealthResponse{
		Status:    "ok",
		QueueSize: h.stats.QueueSize(),
		Workers:   h.stats.WorkerCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
