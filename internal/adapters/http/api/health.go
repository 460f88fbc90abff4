package api

import (
	"net/http"
	"time"
)

// Fixed health payload values.
const (
	healthStatus  = "OK"
	healthMessage = "Backend is running!"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	clock func() time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{clock: time.Now}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HandleHealth handles GET /api/health. It never touches the store.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    healthStatus,
		Message:   healthMessage,
		Timestamp: h.clock().UTC(),
	})
}
