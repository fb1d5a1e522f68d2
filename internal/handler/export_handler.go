package handler

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/export"
	"github.com/SkiltonTrading/cmrv2/internal/results"
	"github.com/SkiltonTrading/cmrv2/internal/service"
)

// exportName is the base of every download filename; the date suffix and
// extension come from export.BuildFilename.
const exportName = "leveringen"

// ExportHandler serves the result table as CSV, TSV or XLSX. Every export
// is a snapshot of the table in arrival order at the moment of the request.
type ExportHandler struct {
	rowService service.RowService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(rowService service.RowService) *ExportHandler {
	return &ExportHandler{rowService: rowService}
}

// CSV handles GET /api/v1/export/csv. The body starts with a UTF-8 BOM so
// Excel on Windows picks the right encoding.
func (h *ExportHandler) CSV(c *gin.Context) {
	rows, err := h.rowService.List(c.Request.Context(), results.ListOptions{})
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(exportName, "csv")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Writer.WriteHeader(http.StatusOK)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		log.Printf("ExportHandler.CSV: write bom: %v", err)
		return
	}
	w := export.NewWriter(c.Writer)
	if err := writeTable(w, rows); err != nil {
		// Headers are already on the wire; all we can do is log.
		log.Printf("ExportHandler.CSV: write rows: %v", err)
	}
}

// TSV handles GET /api/v1/export/tsv. Tab-separated, same columns as the
// CSV, served inline so the UI can copy it to the clipboard. No BOM.
func (h *ExportHandler) TSV(c *gin.Context) {
	rows, err := h.rowService.List(c.Request.Context(), results.ListOptions{})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/tab-separated-values; charset=utf-8")
	c.Writer.WriteHeader(http.StatusOK)

	w := export.NewTSVWriter(c.Writer)
	if err := writeTable(w, rows); err != nil {
		log.Printf("ExportHandler.TSV: write rows: %v", err)
	}
}

// XLSX handles GET /api/v1/export/xlsx. The workbook is built in memory
// first so a build failure can still answer with a proper error status.
func (h *ExportHandler) XLSX(c *gin.Context) {
	rows, err := h.rowService.List(c.Request.Context(), results.ListOptions{})
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rows); err != nil {
		log.Printf("ExportHandler.XLSX: build workbook: %v", err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to build workbook")
		return
	}

	filename := export.BuildFilename(exportName, "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func writeTable(w *export.Writer, rows []domain.DeliveryRow) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRows(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
