package api

import (
	"net/http"

	"github.com/dailymcp/daily/internal/log"
	"github.com/dailymcp/daily/internal/tools"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	logger     log.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(registry *tools.Registry, dispatcher *tools.Dispatcher, logger log.Logger) *HealthHandler {
	return &HealthHandler{registry: registry, dispatcher: dispatcher, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness is a liveness probe endpoint.
// Returns 200 OK if the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readinessResponse is the /ready payload. Circuit states let an operator
// tell an actively failing tool from a resting one without log spelunking.
type readinessResponse struct {
	Status   string            `json:"status"`
	Tools    int               `json:"tools"`
	Circuits map[string]string `json:"circuits"`
}

// readiness reports whether the registry is frozen and serving, plus each
// tool's circuit breaker state. An open circuit does not make the server
// unready; the tool reports its own failure per call.
func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil || !h.registry.Ready() {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "tool registry is not initialized")
		return
	}
	writeJSON(w, http.StatusOK, readinessResponse{
		Status:   "ready",
		Tools:    h.registry.Len(),
		Circuits: h.dispatcher.CircuitStates(),
	})
}
