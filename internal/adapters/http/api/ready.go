package api

import (
	"context"
	"net/http"
)

// ReadyDependencies defines the interface for readiness checks.
type ReadyDependencies interface {
	Ready(ctx context.Context) error
}

// ReadyHandler reports whether the store is reachable.
type ReadyHandler struct {
	deps ReadyDependencies
}

// NewReadyHandler creates a new readiness handler.
func NewReadyHandler(deps ReadyDependencies) *ReadyHandler {
	return &ReadyHandler{deps: deps}
}

// HandleReady handles GET /readyz.
func (h *ReadyHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Ready(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready"})
}
