package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSessionHandlerMarkAttendanceRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := bytes.NewReader([]byte(`[{"student_id":"st1","status":"PRESENT"}]`))
	req, _ := http.NewRequest(http.MethodPost, "/sessions/sess1/attendance", body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "sess1"}}

	handler.MarkAttendance(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionHandlerChangeStatusRequiresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(nil, nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/sessions/sess1/status", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "sess1"}}

	handler.ChangeStatus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
