package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SkiltonTrading/cmrv2/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	states port.StateStore
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(states port.StateStore) *HealthHandler {
	return &HealthHandler{states: states}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. Ready means the state backend is
// reachable, so a restart cannot silently lose the persisted slot.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.states.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "state store not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
