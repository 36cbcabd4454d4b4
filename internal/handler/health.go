package handler

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Transport  string            `json:"transport"`
	Configured bool              `json:"configured"`
	Services   map[string]string `json:"services,omitempty"`
}

// Version is reported by the health endpoint
const Version = "0.1.0"

// Health returns the health status of the service
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := HealthResponse{
		Status:     "healthy",
		Version:    Version,
		Transport:  h.relay.Transport(),
		Configured: h.relay.Check() == nil,
	}

	if h.rdb != nil {
		resp.Services = map[string]string{"redis": "healthy"}
		if err := h.rdb.HealthCheck(ctx); err != nil {
			resp.Services["redis"] = "unhealthy"
			resp.Status = "degraded"
		}
	}
	if !resp.Configured {
		resp.Status = "degraded"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// Ready returns whether the relay can deliver mail
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.relay.Check(); err != nil {
		http.Error(w, "transport not configured", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
