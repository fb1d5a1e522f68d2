package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SkiltonTrading/cmrv2/internal/service"
)

// RunHandler handles the processing-run endpoints.
type RunHandler struct {
	runService service.RunService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runService service.RunService) *RunHandler {
	return &RunHandler{runService: runService}
}

// Start handles POST /api/v1/runs. The run executes in the background; the
// response carries the initial progress snapshot with the total page count.
func (h *RunHandler) Start(c *gin.Context) {
	status, err := h.runService.Start(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, status)
}

// Status handles GET /api/v1/runs/status.
func (h *RunHandler) Status(c *gin.Context) {
	RespondOK(c, h.runService.Status(c.Request.Context()))
}
