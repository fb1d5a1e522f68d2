package handler_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SkiltonTrading/cmrv2/internal/handler"
	"github.com/SkiltonTrading/cmrv2/mocks"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(new(mocks.MockStateStore))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/healthz", nil)

	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestHealthHandler_Readiness_Ready(t *testing.T) {
	states := new(mocks.MockStateStore)
	states.On("Ping", mock.Anything).Return(nil)
	h := handler.NewHealthHandler(states)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", nil)

	h.Readiness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	states.AssertExpectations(t)
}

func TestHealthHandler_Readiness_StateStoreDown(t *testing.T) {
	states := new(mocks.MockStateStore)
	states.On("Ping", mock.Anything).Return(errors.New("connection refused"))
	h := handler.NewHealthHandler(states)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", nil)

	h.Readiness(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}
