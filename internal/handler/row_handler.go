package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SkiltonTrading/cmrv2/internal/results"
	"github.com/SkiltonTrading/cmrv2/internal/service"
)

// RowHandler handles the derived-row table endpoints.
type RowHandler struct {
	rowService service.RowService
}

// NewRowHandler creates a new RowHandler.
func NewRowHandler(rowService service.RowService) *RowHandler {
	return &RowHandler{rowService: rowService}
}

// List handles GET /api/v1/rows with optional sort, dir and filter query
// parameters. Without sort the rows come back in arrival order.
func (h *RowHandler) List(c *gin.Context) {
	dir := c.DefaultQuery("dir", "asc")
	if dir != "asc" && dir != "desc" {
		RespondError(c, http.StatusBadRequest, "INVALID_DIR", "dir must be asc or desc")
		return
	}

	opts := results.ListOptions{
		SortField:  c.Query("sort"),
		Descending: dir == "desc",
		Filter:     c.Query("filter"),
	}

	rows, err := h.rowService.List(c.Request.Context(), opts)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{
		"rows":  rows,
		"total": len(rows),
	})
}

// Clear handles DELETE /api/v1/rows. The row table and the dedupe store are
// emptied together; refused while a run is active.
func (h *RowHandler) Clear(c *gin.Context) {
	if err := h.rowService.Clear(c.Request.Context()); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "all rows cleared"})
}

// Stats handles GET /api/v1/rows/stats.
func (h *RowHandler) Stats(c *gin.Context) {
	RespondOK(c, h.rowService.Stats(c.Request.Context()))
}
