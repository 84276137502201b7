package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/yuzutube/gateway/services/invidious"
	"github.com/yuzutube/gateway/utils"
	"go.uber.org/zap"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string                  `json:"status"`
	Timestamp string                  `json:"timestamp"`
	Instances []invidious.ProbeResult `json:"instances,omitempty"`
}

// Prober reports instance reachability
type Prober interface {
	Probe(ctx context.Context) ([]invidious.ProbeResult, bool)
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	prober  Prober
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. timeout bounds the readiness probe.
func NewHealthHandler(prober Prober, timeout time.Duration, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		prober:  prober,
		timeout: timeout,
		logger:  logger,
	}
}

// HandleHealth handles GET /healthz
// Liveness only; never touches an instance.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := utils.WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("failed to write health response", zap.Error(err))
	}
}

// HandleReadiness handles GET /readyz
// Ready while at least one instance answers the probe.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results, healthy := h.prober.Probe(ctx)

	status := "ready"
	httpStatus := http.StatusOK
	if !healthy {
		h.logger.Warn("no instance answered the readiness probe", zap.Int("instances", len(results)))
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Instances: results,
	}

	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
