package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	handler http.Handler
}

// NewMetricsHandler wraps the exporter's handler. A nil handler serves the
// default Prometheus registry.
func NewMetricsHandler(handler http.Handler) *MetricsHandler {
	if handler == nil {
		handler = promhttp.Handler()
	}
	return &MetricsHandler{handler: handler}
}

// Routes mounts GET /metrics
func (h *MetricsHandler) Routes(r chi.Router) {
	r.Method(http.MethodGet, "/metrics", h.handler)
}
