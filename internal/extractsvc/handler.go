// Package extractsvc is the note-extraction service: one multipart endpoint
// wrapping a vision model, with every model reply validated against a strict
// schema before it leaves the service.
package extractsvc

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/port"
)

// supportedImageTypes lists the sniffed content types the vision providers
// accept. The multipart image part arrives as octet-stream, so the part
// header cannot be trusted.
var supportedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

// Handler handles the extraction endpoint.
type Handler struct {
	parser port.NoteParser
	schema *jsonschema.Schema
}

// NewHandler creates a Handler around the given vision parser. The response
// schema is compiled once here.
func NewHandler(parser port.NoteParser) (*Handler, error) {
	schema, err := compileNotesSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling notes schema: %w", err)
	}
	return &Handler{parser: parser, schema: schema}, nil
}

// Extract handles POST /extract. The request is a multipart form with a
// binary "image" field and a JSON "meta" field; the response is
// {"notes": [...], "meta": {...}} on success and {"error": "..."} otherwise.
func (h *Handler) Extract(c *gin.Context) {
	imageFile, _, err := c.Request.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "image field is required")
		return
	}
	defer func() { _ = imageFile.Close() }()

	image, err := io.ReadAll(imageFile)
	if err != nil {
		respondError(c, http.StatusBadRequest, "reading image: "+err.Error())
		return
	}

	contentType := http.DetectContentType(image)
	if !supportedImageTypes[contentType] {
		respondError(c, http.StatusBadRequest, "unsupported image type: "+contentType)
		return
	}

	var meta domain.PageMeta
	metaField := c.Request.FormValue("meta")
	if metaField == "" {
		respondError(c, http.StatusBadRequest, "meta field is required")
		return
	}
	if err := json.Unmarshal([]byte(metaField), &meta); err != nil {
		respondError(c, http.StatusBadRequest, "meta field is not valid JSON: "+err.Error())
		return
	}

	log.Printf("extractHandler.Extract: %s page %d (%d image bytes)",
		meta.FileName, meta.PageIndex, len(image))

	output, err := h.parser.Parse(c.Request.Context(), port.ParseInput{
		ImageBytes:  image,
		ContentType: contentType,
	})
	if err != nil {
		log.Printf("extractHandler.Extract: %s page %d: parse failed: %v",
			meta.FileName, meta.PageIndex, err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := validatePayload(h.schema, output.StructuredData); err != nil {
		log.Printf("extractHandler.Extract: %s page %d: %v", meta.FileName, meta.PageIndex, err)
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	var result domain.ExtractResult
	if err := json.Unmarshal(output.StructuredData, &result); err != nil {
		respondError(c, http.StatusInternalServerError, "decoding model output: "+err.Error())
		return
	}
	if result.Notes == nil {
		result.Notes = []domain.RawNote{}
	}
	result.Meta = meta

	log.Printf("extractHandler.Extract: %s page %d: %d notes (model %s)",
		meta.FileName, meta.PageIndex, len(result.Notes), output.ModelUsed)

	c.JSON(http.StatusOK, result)
}

// MethodNotAllowed answers any non-POST request on a known route, advertising
// the one allowed method.
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.Header("Allow", http.MethodPost)
	respondError(c, http.StatusMethodNotAllowed, "method not allowed; use POST")
}

// respondError writes the service's one-field error body. The shape is part
// of the wire contract: clients surface the "error" string to the operator.
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
