package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SkiltonTrading/cmrv2/internal/service"
)

// FileHandler handles the document-queue endpoints.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// RejectedFile reports one upload that was refused, with the reason shown
// to the operator.
type RejectedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Queue handles POST /api/v1/files. The request is a multipart form with one
// or more "files" parts. Files are validated one by one: a rejected file is
// reported with its reason and does not abort acceptance of the rest.
func (h *FileHandler) Queue(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "expected a multipart form")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "at least one file is required in the files field")
		return
	}

	queued := make([]interface{}, 0, len(headers))
	rejected := make([]RejectedFile, 0)

	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			rejected = append(rejected, RejectedFile{Name: header.Filename, Reason: "could not read upload"})
			continue
		}

		meta, err := h.fileService.Queue(c.Request.Context(), service.FileQueueInput{
			File:   file,
			Header: header,
		})
		_ = file.Close()

		if err != nil {
			_, _, msg := MapDomainError(err)
			rejected = append(rejected, RejectedFile{Name: header.Filename, Reason: msg})
			continue
		}
		queued = append(queued, meta)
	}

	status := http.StatusCreated
	if len(queued) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, APIResponse{
		Success: len(queued) > 0,
		Data: gin.H{
			"queued":   queued,
			"rejected": rejected,
		},
	})
}

// List handles GET /api/v1/files.
func (h *FileHandler) List(c *gin.Context) {
	RespondOK(c, h.fileService.List(c.Request.Context()))
}

// Delete handles DELETE /api/v1/files/:id. Removing a file is refused while
// a run is active.
func (h *FileHandler) Delete(c *gin.Context) {
	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), fileID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "file removed from queue"})
}
