package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SkiltonTrading/cmrv2/internal/domain"
	"github.com/SkiltonTrading/cmrv2/internal/handler"
	"github.com/SkiltonTrading/cmrv2/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// uploadRequest builds a multipart POST carrying one "files" part per name.
func uploadRequest(t *testing.T, names ...string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range names {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test content"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/v1/files", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestFileHandler_Queue_Success(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	queued := &domain.QueuedFile{
		ID:        uuid.New(),
		Name:      "waybills.pdf",
		PageCount: 3,
		Status:    domain.FileStatusQueued,
	}
	mockFileSvc.On("Queue", mock.Anything, mock.AnythingOfType("service.FileQueueInput")).
		Return(queued, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "waybills.pdf")

	h.Queue(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["queued"], 1)
	assert.Empty(t, data["rejected"])
	mockFileSvc.AssertExpectations(t)
}

func TestFileHandler_Queue_PartialRejection(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	queued := &domain.QueuedFile{ID: uuid.New(), Name: "good.pdf", Status: domain.FileStatusQueued}
	mockFileSvc.On("Queue", mock.Anything, mock.AnythingOfType("service.FileQueueInput")).
		Return(queued, nil).Once()
	mockFileSvc.On("Queue", mock.Anything, mock.AnythingOfType("service.FileQueueInput")).
		Return(nil, domain.ErrUnsupportedFileType).Once()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "good.pdf", "photo.jpg")

	h.Queue(c)

	// One file made it in, so the request as a whole succeeds.
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Len(t, data["queued"], 1)

	rejected := data["rejected"].([]interface{})
	require.Len(t, rejected, 1)
	entry := rejected[0].(map[string]interface{})
	assert.Equal(t, "photo.jpg", entry["name"])
	assert.Contains(t, entry["reason"], "only PDF")
	mockFileSvc.AssertExpectations(t)
}

func TestFileHandler_Queue_AllRejected(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	mockFileSvc.On("Queue", mock.Anything, mock.AnythingOfType("service.FileQueueInput")).
		Return(nil, domain.ErrFileTooLarge)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = uploadRequest(t, "huge.pdf")

	h.Queue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Empty(t, data["queued"])
	assert.Len(t, data["rejected"], 1)
}

func TestFileHandler_Queue_NoFiles(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("note", "no file parts here"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/files", body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())

	h.Queue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockFileSvc.AssertNotCalled(t, "Queue")
}

func TestFileHandler_Queue_NotMultipart(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/files", bytes.NewBufferString("{}"))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Queue(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFileHandler_List_Success(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	files := []domain.QueuedFile{
		{ID: uuid.New(), Name: "a.pdf", Status: domain.FileStatusQueued},
		{ID: uuid.New(), Name: "b.pdf", Status: domain.FileStatusProcessed},
	}
	mockFileSvc.On("List", mock.Anything).Return(files)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/files", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 2)
	mockFileSvc.AssertExpectations(t)
}

func TestFileHandler_Delete_Success(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	fileID := uuid.New()
	mockFileSvc.On("Delete", mock.Anything, fileID).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: fileID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockFileSvc.AssertExpectations(t)
}

func TestFileHandler_Delete_InvalidID(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/files/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Delete(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockFileSvc.AssertNotCalled(t, "Delete")
}

func TestFileHandler_Delete_NotFound(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	fileID := uuid.New()
	mockFileSvc.On("Delete", mock.Anything, fileID).Return(domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: fileID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFileHandler_Delete_RunActive(t *testing.T) {
	mockFileSvc := new(mocks.MockFileService)
	h := handler.NewFileHandler(mockFileSvc)

	fileID := uuid.New()
	mockFileSvc.On("Delete", mock.Anything, fileID).Return(domain.ErrRunActive)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: fileID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "RUN_ACTIVE", resp.Error.Code)
}
