package extractsvc_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/extractsvc"
	"github.com/SkiltonTrading/cmrv2/internal/port"
	"github.com/SkiltonTrading/cmrv2/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// pngSig is the PNG file signature, enough for content-type sniffing.
var pngSig = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func newExtractHandler(t *testing.T) (*extractsvc.Handler, *mocks.MockNoteParser) {
	t.Helper()
	parser := new(mocks.MockNoteParser)
	h, err := extractsvc.NewHandler(parser)
	require.NoError(t, err)
	return h, parser
}

// extractRequest builds a multipart POST with the given image bytes and raw
// meta string. An empty meta string omits the field entirely.
func extractRequest(t *testing.T, image []byte, meta string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if image != nil {
		part, err := w.CreateFormFile("image", "page-1.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	if meta != "" {
		require.NoError(t, w.WriteField("meta", meta))
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/extract", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestExtract_Success(t *testing.T) {
	h, parser := newExtractHandler(t)

	parser.On("Parse", mock.Anything, mock.AnythingOfType("port.ParseInput")).
		Return(&port.ParseOutput{
			StructuredData: json.RawMessage(`{"notes":[
				{"datum":"12-08-2026","aantal":"12,5","eenheid":"E15","confidence":0.9},
				{"datum":"13-08-2026","aantal":"4","eenheid":"","warnings":["unit illegible"]}
			]}`),
			ModelUsed: "claude-sonnet-4-20250514",
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, pngSig, `{"fileName":"a.pdf","fileIndex":0,"pageIndex":1}`)

	h.Extract(c)

	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.ExtractResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notes, 2)
	assert.Equal(t, "12,5", resp.Notes[0].QuantityValue())
	assert.Equal(t, "", resp.Notes[1].UnitValue())
	assert.Equal(t, []string{"unit illegible"}, resp.Notes[1].Warnings)
	assert.Equal(t, "a.pdf", resp.Meta.FileName)
	assert.Equal(t, 1, resp.Meta.PageIndex)

	// The sniffed content type reaches the parser, not the part header.
	input := parser.Calls[0].Arguments.Get(1).(port.ParseInput)
	assert.Equal(t, "image/png", input.ContentType)
}

func TestExtract_PageWithoutNotes(t *testing.T) {
	h, parser := newExtractHandler(t)

	parser.On("Parse", mock.Anything, mock.Anything).
		Return(&port.ParseOutput{StructuredData: json.RawMessage(`{"notes":[]}`)}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, pngSig, `{"fileName":"a.pdf","fileIndex":0,"pageIndex":2}`)

	h.Extract(c)

	require.Equal(t, http.StatusOK, w.Code)
	// Empty pages answer with an empty array, never null and never an error.
	assert.Contains(t, w.Body.String(), `"notes":[]`)
}

func TestExtract_MissingImage(t *testing.T) {
	h, parser := newExtractHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, nil, `{"fileName":"a.pdf","fileIndex":0,"pageIndex":1}`)

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "image field is required")
	parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestExtract_MissingMeta(t *testing.T) {
	h, _ := newExtractHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, pngSig, "")

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "meta field is required")
}

func TestExtract_MalformedMeta(t *testing.T) {
	h, _ := newExtractHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, pngSig, "{not json")

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not valid JSON")
}

func TestExtract_UnsupportedImageType(t *testing.T) {
	h, _ := newExtractHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, []byte("plain text, not an image"),
		`{"fileName":"a.pdf","fileIndex":0,"pageIndex":1}`)

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported image type")
}

func TestExtract_ParserFailure(t *testing.T) {
	h, parser := newExtractHandler(t)

	parser.On("Parse", mock.Anything, mock.Anything).
		Return(nil, errors.New("anthropic API key not configured"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, pngSig, `{"fileName":"a.pdf","fileIndex":0,"pageIndex":1}`)

	h.Extract(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "not configured")
}

func TestExtract_SchemaViolationIsInternalFailure(t *testing.T) {
	h, parser := newExtractHandler(t)

	// Lowercase unit code: the model guessed instead of returning empty.
	parser.On("Parse", mock.Anything, mock.Anything).
		Return(&port.ParseOutput{
			StructuredData: json.RawMessage(`{"notes":[{"datum":"12-08-2026","aantal":"4","eenheid":"e15"}]}`),
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, pngSig, `{"fileName":"a.pdf","fileIndex":0,"pageIndex":1}`)

	h.Extract(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "schema")
}

func TestExtract_MissingRequiredNoteFieldRejected(t *testing.T) {
	h, parser := newExtractHandler(t)

	parser.On("Parse", mock.Anything, mock.Anything).
		Return(&port.ParseOutput{
			StructuredData: json.RawMessage(`{"notes":[{"datum":"12-08-2026","eenheid":"E15"}]}`),
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = extractRequest(t, pngSig, `{"fileName":"a.pdf","fileIndex":0,"pageIndex":1}`)

	h.Extract(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newExtractHandler(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/extract", http.NoBody)

	h.MethodNotAllowed(c)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodPost, w.Header().Get("Allow"))
	assert.Contains(t, w.Body.String(), "method not allowed")
}
