// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/veilmetrics/veil/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service identity reported by the health endpoint.
const (
	serviceName    = "veil"
	serviceVersion = "1.0.0"
)

// HealthHandler handles health check requests.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// HandleHealth handles GET /api/v1/health requests with a JSON status.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

// HandleMetrics handles GET /healthz requests by serving the custom
// Prometheus registry.
func (h *HealthHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
