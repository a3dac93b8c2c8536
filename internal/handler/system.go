package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// readyTimeout caps how long a readiness probe waits on the credential store.
const readyTimeout = 3 * time.Second

// SystemHandler serves liveness and readiness probes.
type SystemHandler struct {
	store  Pinger
	logger *slog.Logger
}

// NewSystemHandler creates a new SystemHandler. store may be nil, in which
// case readiness only reflects that the process is up.
func NewSystemHandler(store Pinger, logger *slog.Logger) *SystemHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SystemHandler{store: store, logger: logger}
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is a liveness probe. Returns 200 if the process is running.
// GET /healthz
func (h *SystemHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, probeResponse{Status: "ok"})
}

// Readyz is a readiness probe. Returns 200 when the credential store answers
// a ping, 503 otherwise. The first probe opens the store if no login has.
// GET /readyz
func (h *SystemHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, probeResponse{Status: "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(r.Context(), "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, probeResponse{
			Status: "degraded",
			Checks: map[string]string{"store": "unavailable"},
		})
		return
	}
	writeJSON(w, http.StatusOK, probeResponse{
		Status: "ok",
		Checks: map[string]string{"store": "ok"},
	})
}
